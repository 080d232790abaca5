// Package flavor provides a unified interface over the warehouse dialects
// the coordinator publishes into. It mirrors the registry pattern used for
// SQL dialects elsewhere in this toolchain, narrowed to the handful of
// decisions that actually vary between PostgreSQL and Redshift: identifier
// and string quoting, the JSON column's type name, whether secondary
// indexes are worth creating, and how a loading table becomes the
// published one.
package flavor

import (
	"fmt"
	"sync"
)

// Type identifies a warehouse dialect.
type Type string

const (
	Postgres Type = "postgres"
	Redshift Type = "redshift"
)

// ColumnType is one of the column types TypeChooser can infer.
type ColumnType string

const (
	ColumnID        ColumnType = "id"
	ColumnBigInt    ColumnType = "bigint"
	ColumnNumeric   ColumnType = "numeric"
	ColumnBoolean   ColumnType = "boolean"
	ColumnTimestamp ColumnType = "timestamptz"
	ColumnVarchar   ColumnType = "varchar"
)

// Flavor is the narrow interface the coordinator drives publish decisions
// through. Each method answers one dialect-specific question; nothing here
// models a general SQL AST.
type Flavor interface {
	Name() Type

	// QuoteIdentifier quotes a table or column name for safe inclusion in DDL.
	QuoteIdentifier(name string) string

	// QuoteString renders a Go string as a SQL string literal.
	QuoteString(value string) string

	// JSONColumnType returns the flavor-appropriate type name for the
	// verbatim-document `data` column.
	JSONColumnType() string

	// ColumnTypeSQL returns the SQL type name for an inferred column type.
	ColumnTypeSQL(ct ColumnType) string

	// TableOptions returns a clause appended after the closing paren of a
	// CREATE TABLE statement (e.g. Redshift's DISTSTYLE/SORTKEY). Empty on
	// flavors with no such clause.
	TableOptions() string

	// SupportsSecondaryIndex reports whether per-column B-tree indexes
	// should be created beyond the primary key.
	SupportsSecondaryIndex() bool

	// PublishStatements returns the DDL sequence that turns loadingName
	// into publishedName, dropping any previously published table first.
	PublishStatements(loadingName, publishedName string) []string
}

var (
	registryMu sync.RWMutex
	registry   = map[Type]func() Flavor{}
)

// Register adds a flavor constructor to the registry. Called from each
// flavor package's init().
func Register(t Type, ctor func() Flavor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = ctor
}

// Get returns a fresh Flavor instance for the given type.
func Get(t Type) (Flavor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ctor, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("flavor %q is not registered", t)
	}
	return ctor(), nil
}
