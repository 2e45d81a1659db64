package asciidoc

import "strings"

// blockAttributes accumulates the attribute lines, anchors and titles that
// precede a block.
type blockAttributes struct {
	style   string
	id      string
	title   string
	roles   []string
	options []string
	named   map[string]string
}

// parseAttributeList parses the inside of a block attribute line such as
// `sdpi_requirement#r1001.core%collapsible,sdpi_req_level=shall,role="a b"`
// into a.
func (a *blockAttributes) parseAttributeList(list string) {
	for i, entry := range splitAttributeList(list) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		key, value, named := strings.Cut(entry, "=")
		if !named {
			if i == 0 {
				a.parseShorthand(entry)
			}
			continue
		}

		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		switch key {
		case "id":
			a.id = value
		case "role":
			a.roles = append(a.roles, strings.Fields(value)...)
		case "options", "opts":
			for _, opt := range strings.Split(value, ",") {
				if opt = strings.TrimSpace(opt); opt != "" {
					a.options = append(a.options, opt)
				}
			}
		default:
			if a.named == nil {
				a.named = make(map[string]string)
			}
			a.named[key] = value
		}
	}
}

// parseShorthand handles the first positional attribute: style#id.role%option.
func (a *blockAttributes) parseShorthand(s string) {
	end := strings.IndexAny(s, "#.%")
	if end < 0 {
		a.style = s
		return
	}
	if end > 0 {
		a.style = s[:end]
	}

	rest := s[end:]
	for rest != "" {
		marker := rest[0]
		rest = rest[1:]
		next := strings.IndexAny(rest, "#.%")
		value := rest
		if next >= 0 {
			value = rest[:next]
			rest = rest[next:]
		} else {
			rest = ""
		}
		if value == "" {
			continue
		}
		switch marker {
		case '#':
			a.id = value
		case '.':
			a.roles = append(a.roles, value)
		case '%':
			a.options = append(a.options, value)
		}
	}
}

// splitAttributeList splits on commas that are not inside quotes.
func splitAttributeList(s string) []string {
	var (
		parts []string
		cur   strings.Builder
		quote rune
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			cur.WriteRune(r)
		case r == ',':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(parts, cur.String())
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
