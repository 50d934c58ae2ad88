package extract

import "strings"

// The repair pass turns quasi-JavaScript literals the model tends to emit
// into strict JSON: line comments, single-quoted tokens, trailing commas and
// stray statement terminators are all tolerated here, while shape problems
// are left for the strict validation step.

// StripCodeFences removes fenced-code-block delimiter lines (language-tagged
// or bare) anywhere in the text.
func StripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, ln := range lines {
		if strings.HasPrefix(strings.TrimSpace(ln), "```") {
			continue
		}
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}

// Repair applies the full textual repair pipeline to one located literal.
func Repair(s string) string {
	s = stripLineComments(s)
	s = convertSingleQuotes(s)
	s = stripTrailingCommas(s)
	s = stripStrayTokens(s)
	return s
}

// stripLineComments removes // comments outside string literals. Both quote
// styles are still possible at this stage.
func stripLineComments(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(rs))
	var quote rune
	for i := 0; i < len(rs); i++ {
		ch := rs[i]
		if quote != 0 {
			b.WriteRune(ch)
			if ch == '\\' && i+1 < len(rs) {
				i++
				b.WriteRune(rs[i])
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch {
		case ch == '"' || ch == '\'':
			quote = ch
			b.WriteRune(ch)
		case ch == '/' && i+1 < len(rs) && rs[i+1] == '/':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
			if i < len(rs) {
				b.WriteRune('\n')
			}
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// convertSingleQuotes rewrites single-quoted tokens as double-quoted ones.
// A quote inside a single-quoted token only closes it when the next
// non-space character is a structural one, so apostrophes in free text
// (addresses, notes) survive as content.
func convertSingleQuotes(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(rs))
	inDouble := false
	for i := 0; i < len(rs); i++ {
		ch := rs[i]
		if inDouble {
			b.WriteRune(ch)
			if ch == '\\' && i+1 < len(rs) {
				i++
				b.WriteRune(rs[i])
			} else if ch == '"' {
				inDouble = false
			}
			continue
		}
		switch ch {
		case '"':
			inDouble = true
			b.WriteRune(ch)
		case '\'':
			b.WriteRune('"')
			i++
			for i < len(rs) {
				c := rs[i]
				if c == '\\' && i+1 < len(rs) {
					b.WriteRune(c)
					i++
					b.WriteRune(rs[i])
					i++
					continue
				}
				if c == '"' {
					b.WriteString(`\"`)
					i++
					continue
				}
				if c == '\'' {
					if closesSingleQuote(rs, i) {
						break
					}
					b.WriteRune(c)
					i++
					continue
				}
				b.WriteRune(c)
				i++
			}
			b.WriteRune('"')
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// closesSingleQuote reports whether the quote at rs[i] terminates the token,
// judged by the next non-blank character.
func closesSingleQuote(rs []rune, i int) bool {
	for j := i + 1; j < len(rs); j++ {
		switch rs[j] {
		case ' ', '\t':
			continue
		case ',', ':', ']', '}', '\n', '\r', ';':
			return true
		default:
			return false
		}
	}
	return true
}

// stripTrailingCommas removes commas directly preceding a closing bracket.
// Runs after quote conversion, so only double-quoted strings exist.
func stripTrailingCommas(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(rs))
	inString := false
	for i := 0; i < len(rs); i++ {
		ch := rs[i]
		if inString {
			b.WriteRune(ch)
			if ch == '\\' && i+1 < len(rs) {
				i++
				b.WriteRune(rs[i])
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteRune(ch)
			continue
		}
		if ch == ',' {
			j := i + 1
			for j < len(rs) && (rs[j] == ' ' || rs[j] == '\t' || rs[j] == '\n' || rs[j] == '\r') {
				j++
			}
			if j < len(rs) && (rs[j] == ']' || rs[j] == '}') {
				continue
			}
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// stripStrayTokens drops statement terminators and back-ticks left outside
// strings.
func stripStrayTokens(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(rs))
	inString := false
	for i := 0; i < len(rs); i++ {
		ch := rs[i]
		if inString {
			b.WriteRune(ch)
			if ch == '\\' && i+1 < len(rs) {
				i++
				b.WriteRune(rs[i])
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteRune(ch)
			continue
		}
		if ch == ';' || ch == '`' {
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
