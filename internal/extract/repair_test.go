package extract

import "testing"

func TestRepairIdempotentOnWellFormed(t *testing.T) {
	// Already-strict JSON must pass through the repair pipeline unchanged.
	for _, lit := range []string{layoutLit, quotationLit} {
		if got := Repair(lit); got != lit {
			t.Errorf("repair changed well-formed literal:\ngot:  %s\nwant: %s", got, lit)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	in := "```json\n{\"a\": 1}\n```"
	want := "{\"a\": 1}"
	if got := StripCodeFences(in); got != want {
		t.Errorf("StripCodeFences = %q, want %q", got, want)
	}
}

func TestStripLineComments(t *testing.T) {
	in := "{ \"a\": \"x // not a comment\", // real comment\n\"b\": 2 }"
	want := "{ \"a\": \"x // not a comment\", \n\"b\": 2 }"
	if got := stripLineComments(in); got != want {
		t.Errorf("stripLineComments = %q, want %q", got, want)
	}
}

func TestConvertSingleQuotes(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{'a': 'b'}`, `{"a": "b"}`},
		{`{'a': 'it's fine'}`, `{"a": "it's fine"}`},
		{`{'a': 'say "hi"'}`, `{"a": "say \"hi\""}`},
		{`{"a": "don't touch"}`, `{"a": "don't touch"}`},
		{`['x', 'y']`, `["x", "y"]`},
	}
	for _, c := range cases {
		if got := convertSingleQuotes(c.in); got != c.want {
			t.Errorf("convertSingleQuotes(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStripTrailingCommas(t *testing.T) {
	cases := []struct{ in, want string }{
		{`[1, 2, ]`, `[1, 2 ]`},
		{`{"a": 1,}`, `{"a": 1}`},
		{"{\"a\": 1,\n}", "{\"a\": 1\n}"},
		{`{"a": "v,"}`, `{"a": "v,"}`},
	}
	for _, c := range cases {
		if got := stripTrailingCommas(c.in); got != c.want {
			t.Errorf("stripTrailingCommas(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStripStrayTokens(t *testing.T) {
	in := "{\"a\": \"ke;ep\"};`"
	want := `{"a": "ke;ep"}`
	if got := stripStrayTokens(in); got != want {
		t.Errorf("stripStrayTokens = %q, want %q", got, want)
	}
}
