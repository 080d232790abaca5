// Package stage implements the core of the staging pipeline: per-field
// type statistics, schema inference, batched tuple emission, and the
// stage-and-publish coordinator that ties them together one table at a
// time.
package stage

import (
	"ldp/internal/flavor"
	"ldp/internal/naming"
)

// TableSpec is the load unit the coordinator carries from pass 1 through
// publish. It enters with no columns; pass 1 populates Columns.
type TableSpec struct {
	TableName  string
	ModuleName string
	SourcePath string
	Skip       bool
	Columns    []ColumnSpec
}

// LoadingName returns the transient name this table is created and loaded
// under before publish.
func (t *TableSpec) LoadingName() string {
	return naming.LoadingName(t.TableName)
}

// ColumnSpec describes one inferred, loadable column.
type ColumnSpec struct {
	ColumnName      string
	SourceFieldName string
	ColumnType      flavor.ColumnType
}

// Counts is the per-field observation histogram pass 1 builds. Every
// member is a tally against one field name, incremented at most once per
// record per category (strings may additionally tally uuid and/or
// datetime alongside string itself).
type Counts struct {
	Null     int
	Boolean  int
	Number   int
	Integer  int
	Floating int
	String   int
	UUID     int
	Datetime int
}
