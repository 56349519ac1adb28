package scoring

import "strings"

// ParseOptions splits a stored possible-answers field into option texts.
//
// Commas split only at brace depth 0 and outside single quotes, so LaTeX
// groups like {x,y} and quoted options like 'a, b' stay whole. A token wrapped
// in one pair of single quotes loses them. Unbalanced input never fails.
func ParseOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	var (
		parts   []string
		current strings.Builder
		inQuote bool
		depth   int
	)
	for _, ch := range raw {
		switch {
		case ch == '\'':
			inQuote = !inQuote
			current.WriteRune(ch)
		case ch == '{' && !inQuote:
			depth++
			current.WriteRune(ch)
		case ch == '}' && !inQuote:
			if depth > 0 {
				depth--
			}
			current.WriteRune(ch)
		case ch == ',' && !inQuote && depth == 0:
			parts = append(parts, cleanToken(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	parts = append(parts, cleanToken(current.String()))
	return parts
}

func cleanToken(tok string) string {
	tok = strings.TrimSpace(tok)
	if len(tok) >= 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		tok = strings.TrimSpace(tok[1 : len(tok)-1])
	}
	return tok
}

// ParseScoring splits a stored scoring field on plain commas
func ParseScoring(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	fields := strings.Split(raw, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}
