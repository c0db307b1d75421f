package variables

import (
	"strconv"
	"strings"
)

// Format substitutes {name} placeholders.
// A name resolves as a string, then an int, then a bool, each checked
// local-then-global. Unresolved placeholders are left as written.
func (s *Scopes) Format(text string) string {
	if !strings.Contains(text, "{") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for {
		open := strings.IndexByte(text, '{')
		if open < 0 {
			b.WriteString(text)
			break
		}
		end := strings.IndexByte(text[open+1:], '}')
		if end < 0 {
			b.WriteString(text)
			break
		}
		end += open + 1

		name := text[open+1 : end]
		// "{a {b}": restart scanning at the inner brace.
		if inner := strings.LastIndexByte(name, '{'); inner >= 0 {
			b.WriteString(text[:open+1+inner])
			text = text[open+1+inner:]
			continue
		}

		b.WriteString(text[:open])
		if v, ok := s.lookup(strings.TrimSpace(name)); ok {
			b.WriteString(v)
		} else {
			b.WriteString(text[open : end+1])
		}
		text = text[end+1:]
	}
	return b.String()
}

func (s *Scopes) lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, st := range []*Store{s.Local, s.Global} {
		if st.HasString(name) {
			return st.GetString(name), true
		}
	}
	for _, st := range []*Store{s.Local, s.Global} {
		if st.HasInt(name) {
			return strconv.Itoa(st.GetInt(name)), true
		}
	}
	for _, st := range []*Store{s.Local, s.Global} {
		if st.HasBool(name) {
			return strconv.FormatBool(st.GetBool(name)), true
		}
	}
	return "", false
}
