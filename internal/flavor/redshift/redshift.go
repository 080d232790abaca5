// Package redshift implements flavor.Flavor for Amazon Redshift: Redshift
// forbids RENAME across the CTAS-friendly pattern used for large columnar
// tables, so publish goes through CREATE TABLE AS SELECT + DROP TABLE
// instead of a rename, and secondary indexes are skipped in favor of a
// DISTSTYLE/SORTKEY clause on the id column.
package redshift

import (
	"fmt"
	"strings"

	"ldp/internal/flavor"
)

func init() {
	flavor.Register(flavor.Redshift, func() flavor.Flavor {
		return New()
	})
}

// Flavor implements flavor.Flavor for Amazon Redshift.
type Flavor struct{}

// New returns a Redshift flavor instance.
func New() *Flavor {
	return &Flavor{}
}

func (f *Flavor) Name() flavor.Type {
	return flavor.Redshift
}

func (f *Flavor) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (f *Flavor) QuoteString(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('\'')
	for _, r := range value {
		if r == '\'' {
			b.WriteString("''")
			continue
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}

// JSONColumnType uses SUPER, Redshift's semi-structured type, rather than
// the VARCHAR fallback older Redshift versions required.
func (f *Flavor) JSONColumnType() string {
	return "super"
}

func (f *Flavor) ColumnTypeSQL(ct flavor.ColumnType) string {
	switch ct {
	case flavor.ColumnID:
		return "VARCHAR(36)"
	case flavor.ColumnBigInt:
		return "BIGINT"
	case flavor.ColumnNumeric:
		return "NUMERIC(38,10)"
	case flavor.ColumnBoolean:
		return "BOOLEAN"
	case flavor.ColumnTimestamp:
		return "TIMESTAMPTZ"
	case flavor.ColumnVarchar:
		return "VARCHAR(65535)"
	default:
		return "VARCHAR(65535)"
	}
}

func (f *Flavor) TableOptions() string {
	return " DISTSTYLE KEY DISTKEY (id) SORTKEY (id)"
}

func (f *Flavor) SupportsSecondaryIndex() bool {
	return false
}

func (f *Flavor) PublishStatements(loadingName, publishedName string) []string {
	published := f.QuoteIdentifier(publishedName)
	loading := f.QuoteIdentifier(loadingName)
	return []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s;", published),
		fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s;", published, loading),
		fmt.Sprintf("DROP TABLE %s;", loading),
	}
}
