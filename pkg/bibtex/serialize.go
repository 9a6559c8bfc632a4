package bibtex

import "strings"

// Render concatenates the serialized text of blocks in sequence order.
func Render(blocks []*Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.Text())
	}
	return sb.String()
}

// renderEntry rebuilds a modified entry from its type, id, and ordered
// fields. Unmodified fields contribute their original raw spans, so only
// rewritten fields change the output.
func renderEntry(e *Entry) string {
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(e.Type)
	sb.WriteString("{")
	sb.WriteString(e.ID)
	sb.WriteString(",")
	if e.Fields != nil {
		for _, key := range e.Fields.Keys() {
			f, _ := e.Fields.Get(key)
			sb.WriteString(f.Raw)
		}
	}
	out := sb.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out + "}"
}

// BracesBalanced reports whether every unescaped opening brace in s has a
// matching closing brace and none closes below depth zero.
func BracesBalanced(s string) bool {
	depth := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
