// Package naming realizes the deterministic mapping from a JSON field name
// to a SQL identifier, and from a published table name to its loading-time
// name. Both are external-collaborator contracts the core only consumes;
// this package implements them only to the extent needed to exercise the
// core end to end.
package naming

import (
	"strings"
	"unicode"
)

// loadingSuffix distinguishes a loading-time table from its published
// counterpart. Collision-free by construction: no published table name is
// expected to already end in this token.
const loadingSuffix = "__loading"

// LoadingName returns the transient name a table is created and loaded
// under before publish moves it into place as table.
func LoadingName(table string) string {
	return table + loadingSuffix
}

// ColumnName normalizes a JSON field name into a SQL identifier: lowercase,
// non-alphanumeric runs collapsed to a single underscore, leading digits
// prefixed with "_" so the result is never a bare number.
func ColumnName(field string) string {
	var b strings.Builder
	b.Grow(len(field))

	prevUnderscore := false
	for _, r := range field {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
		default:
			if !prevUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "field"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}
