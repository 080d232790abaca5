// Package postgres implements flavor.Flavor for plain PostgreSQL: double-
// quoted identifiers, jsonb for the verbatim document column, a full set
// of secondary indexes, and publish-by-rename.
package postgres

import (
	"fmt"
	"strings"

	"ldp/internal/flavor"
)

func init() {
	flavor.Register(flavor.Postgres, func() flavor.Flavor {
		return New()
	})
}

// Flavor implements flavor.Flavor for PostgreSQL.
type Flavor struct{}

// New returns a PostgreSQL flavor instance.
func New() *Flavor {
	return &Flavor{}
}

func (f *Flavor) Name() flavor.Type {
	return flavor.Postgres
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

func (f *Flavor) JSONColumnType() string {
	return "jsonb"
}

func (f *Flavor) ColumnTypeSQL(ct flavor.ColumnType) string {
	switch ct {
	case flavor.ColumnID:
		return "VARCHAR(36)"
	case flavor.ColumnBigInt:
		return "BIGINT"
	case flavor.ColumnNumeric:
		return "NUMERIC"
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
	return ""
}

func (f *Flavor) SupportsSecondaryIndex() bool {
	return true
}

func (f *Flavor) PublishStatements(loadingName, publishedName string) []string {
	return []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s;", f.QuoteIdentifier(publishedName)),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", f.QuoteIdentifier(loadingName), f.QuoteIdentifier(publishedName)),
	}
}
