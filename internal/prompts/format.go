package prompts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	ErrUnbalancedBrace    = errors.New("unbalanced brace")
)

// Format substitutes {name} placeholders from vars. "{{" and "}}" produce
// literal braces. On failure the template is returned unchanged along with
// the error, so callers can still send something to the model.
func Format(template string, vars map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return template, fmt.Errorf("format prompt at offset %d: %w", i, ErrUnbalancedBrace)
			}
			name := template[i+1 : i+1+end]
			if strings.ContainsRune(name, '{') {
				return template, fmt.Errorf("format prompt at offset %d: %w", i, ErrUnbalancedBrace)
			}
			v, ok := vars[strings.TrimSpace(name)]
			if !ok {
				return template, fmt.Errorf("format prompt: %w %q", ErrUnknownPlaceholder, name)
			}
			b.WriteString(v)
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return template, fmt.Errorf("format prompt at offset %d: %w", i, ErrUnbalancedBrace)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// References reports whether template mentions {name}.
func References(template, name string) bool {
	return strings.Contains(template, "{"+name+"}")
}
