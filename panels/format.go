package panels

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// DatapointLabel turns a gas identifier into a display label. Only the first
// underscore becomes a space, so "carbon_dioxide" is "Carbon Dioxide" while
// "a_b_c" is "A B_c".
func DatapointLabel(name string) string {
	parts := strings.Split(strings.Replace(name, "_", " ", 1), " ")
	for i, p := range parts {
		parts[i] = Capitalize(p)
	}
	return strings.Join(parts, " ")
}
