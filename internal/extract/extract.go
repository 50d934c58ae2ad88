// Package extract locates the two named structure literals inside raw model
// output, repairs their syntax, and parses them into validated documents.
// This is the single highest-risk piece of the pipeline: it turns free-form
// generative text into load-bearing structured data.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/SpaceshipxDev/creationfromzeus/internal/estimate"
	"github.com/SpaceshipxDev/creationfromzeus/internal/llm"
)

// The two failure kinds are kept distinguishable: a literal that cannot be
// located is a different operator signal than one that cannot be parsed.
var (
	ErrStructureNotFound  = errors.New("structure not found in model response")
	ErrStructureMalformed = errors.New("structure malformed")
)

// Documents extracts, repairs, parses and validates both expected structures
// from raw model text. Fatal on either failure; never returns a wrong shape.
func Documents(raw string) (*estimate.LayoutDocument, *estimate.QuotationDocument, error) {
	text := StripCodeFences(raw)

	sheetLit, err := locateLiteral(text, llm.StructProductionSheet)
	if err != nil {
		return nil, nil, err
	}
	quoteLit, err := locateLiteral(text, llm.StructQuotation)
	if err != nil {
		return nil, nil, err
	}

	layout, err := parseLayout(sheetLit)
	if err != nil {
		return nil, nil, err
	}
	quotation, err := parseQuotation(quoteLit)
	if err != nil {
		return nil, nil, err
	}
	return layout, quotation, nil
}

func parseLayout(lit string) (*estimate.LayoutDocument, error) {
	repaired := []byte(Repair(lit))
	if err := llm.ValidateJSONAgainstSchema(llm.BuildProductionSheetSchema(), repaired); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStructureMalformed, llm.StructProductionSheet, err)
	}
	var rows []estimate.LayoutRow
	if err := json.Unmarshal(repaired, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStructureMalformed, llm.StructProductionSheet, err)
	}
	doc := &estimate.LayoutDocument{Rows: rows}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStructureMalformed, llm.StructProductionSheet, err)
	}
	return doc, nil
}

func parseQuotation(lit string) (*estimate.QuotationDocument, error) {
	repaired := []byte(Repair(lit))
	if err := llm.ValidateJSONAgainstSchema(llm.BuildQuotationSchema(), repaired); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStructureMalformed, llm.StructQuotation, err)
	}
	var doc estimate.QuotationDocument
	if err := json.Unmarshal(repaired, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStructureMalformed, llm.StructQuotation, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStructureMalformed, llm.StructQuotation, err)
	}
	return &doc, nil
}

// locateLiteral finds the first literal assigned to name: the name token,
// an '=', then a bracket-matched scan to the closing bracket. A trailing
// statement terminator is tolerated but not required.
func locateLiteral(text, name string) (string, error) {
	search := text
	base := 0
	for {
		p := strings.Index(search, name)
		if p < 0 {
			return "", fmt.Errorf("%w: %s", ErrStructureNotFound, name)
		}
		abs := base + p
		if lit, ok, err := literalAt(text, abs, name); err != nil {
			return "", err
		} else if ok {
			return lit, nil
		}
		base = abs + len(name)
		search = text[base:]
	}
}

// literalAt checks whether the name occurrence at offset is a real
// assignment and, if so, returns the bracketed literal.
func literalAt(text string, offset int, name string) (string, bool, error) {
	rs := []rune(text[offset+len(name):])

	// reject partial identifier matches like "myproductionSheet"
	if offset > 0 {
		prev := rune(text[offset-1])
		if unicode.IsLetter(prev) || unicode.IsDigit(prev) || prev == '_' {
			return "", false, nil
		}
	}

	i := 0
	for i < len(rs) && (rs[i] == ' ' || rs[i] == '\t') {
		i++
	}
	if i >= len(rs) || rs[i] != '=' {
		return "", false, nil
	}
	i++
	for i < len(rs) && (rs[i] == ' ' || rs[i] == '\t' || rs[i] == '\n' || rs[i] == '\r') {
		i++
	}
	if i >= len(rs) || (rs[i] != '[' && rs[i] != '{') {
		return "", false, nil
	}

	lit, err := matchBrackets(rs[i:], name)
	if err != nil {
		return "", false, err
	}
	return lit, true, nil
}

// matchBrackets scans a bracket-balanced literal starting at rs[0],
// respecting string literals of either quote style.
func matchBrackets(rs []rune, name string) (string, error) {
	open := rs[0]
	var close rune
	if open == '[' {
		close = ']'
	} else {
		close = '}'
	}

	depth := 0
	var quote rune
	for i := 0; i < len(rs); i++ {
		ch := rs[i]
		if quote != 0 {
			if ch == '\\' && i+1 < len(rs) {
				i++
			} else if ch == quote {
				// An apostrophe inside a single-quoted token is content,
				// judged by the same look-ahead the repair pass uses.
				if quote != '\'' || closesSingleQuote(rs, i) {
					quote = 0
				}
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return string(rs[:i+1]), nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s: unterminated literal", ErrStructureMalformed, name)
}
