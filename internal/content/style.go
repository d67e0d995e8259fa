package content

import "strings"

type declaration struct {
	prop  string
	value string
}

// Style is an inline style attribute kept in declaration order so that
// re-serialising an untouched element does not reshuffle it.
type Style struct {
	decls []declaration
}

func ParseStyle(s string) Style {
	var st Style
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}
		st.Set(prop, value)
	}
	return st
}

func (s *Style) Get(prop string) string {
	for _, d := range s.decls {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

func (s *Style) Set(prop, value string) {
	for i := range s.decls {
		if s.decls[i].prop == prop {
			s.decls[i].value = value
			return
		}
	}
	s.decls = append(s.decls, declaration{prop: prop, value: value})
}

func (s *Style) Del(prop string) {
	for i := range s.decls {
		if s.decls[i].prop == prop {
			s.decls = append(s.decls[:i], s.decls[i+1:]...)
			return
		}
	}
}

func (s *Style) Len() int { return len(s.decls) }

func (s Style) String() string {
	var b strings.Builder
	for i, d := range s.decls {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.prop)
		b.WriteString(": ")
		b.WriteString(d.value)
		b.WriteByte(';')
	}
	return b.String()
}
