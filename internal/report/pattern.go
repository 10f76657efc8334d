package report

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Placeholder names understood in directory patterns.
const (
	VarModulo = "modulo"
	VarNumero = "numero"
	VarSlug   = "slug"
)

// placeholder matches {name} and {name:0Nd} / {name:d}.
var placeholder = regexp.MustCompile(`\{([a-z_]+)(?::(0?)(\d*)d)?\}`)

// ---------------------------------------------------------------------------
// Pattern type - a validated directory pattern
// ---------------------------------------------------------------------------

// Pattern is a validated directory name pattern such as
// "aula-{numero:02d}-{slug}". Zero value renders as "".
type Pattern struct {
	raw string
}

// ParsePattern validates s against the allowed placeholder names.
// Braces that do not form a placeholder are rejected.
func ParsePattern(s string, allowed ...string) (Pattern, error) {
	if strings.TrimSpace(s) == "" {
		return Pattern{}, fmt.Errorf("empty pattern: %w", ErrBadPattern)
	}
	for _, m := range placeholder.FindAllStringSubmatch(s, -1) {
		if !slices.Contains(allowed, m[1]) {
			return Pattern{}, fmt.Errorf("pattern %q: placeholder {%s} not in %v: %w", s, m[1], allowed, ErrBadPattern)
		}
	}
	if rest := placeholder.ReplaceAllString(s, ""); strings.ContainsAny(rest, "{}") {
		return Pattern{}, fmt.Errorf("pattern %q: unbalanced braces: %w", s, ErrBadPattern)
	}
	return Pattern{raw: s}, nil
}

// MustParsePattern is ParsePattern that panics. Use only for constants and tests.
func MustParsePattern(s string, allowed ...string) Pattern {
	p, err := ParsePattern(s, allowed...)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as written.
func (p Pattern) String() string { return p.raw }

// Render substitutes vars. Integer placeholders honour the zero-padded
// width; a width on a string value is an error.
func (p Pattern) Render(vars map[string]any) (string, error) {
	var firstErr error
	out := placeholder.ReplaceAllStringFunc(p.raw, func(tok string) string {
		m := placeholder.FindStringSubmatch(tok)
		name, zero, width := m[1], m[2], m[3]
		v, ok := vars[name]
		if !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("no value for {%s}: %w", name, ErrBadPattern)
			}
			return ""
		}
		switch x := v.(type) {
		case int:
			if width == "" {
				return strconv.Itoa(x)
			}
			n, _ := strconv.Atoi(width)
			if zero == "0" {
				return fmt.Sprintf("%0*d", n, x)
			}
			return fmt.Sprintf("%*d", n, x)
		case string:
			if strings.Contains(tok, ":") {
				if firstErr == nil {
					firstErr = fmt.Errorf("{%s} is text, not a number: %w", name, ErrBadPattern)
				}
				return ""
			}
			return x
		default:
			if firstErr == nil {
				firstErr = fmt.Errorf("{%s}: unsupported value %T: %w", name, v, ErrBadPattern)
			}
			return ""
		}
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
