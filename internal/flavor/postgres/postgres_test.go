package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ldp/internal/flavor"
)

func TestQuoteIdentifierEscapesDoubleQuotes(t *testing.T) {
	f := New()
	assert.Equal(t, `"wid""gets"`, f.QuoteIdentifier(`wid"gets`))
}

func TestQuoteStringEscapesSingleQuotes(t *testing.T) {
	f := New()
	assert.Equal(t, `'o''brien'`, f.QuoteString(`o'brien`))
}

func TestColumnTypeSQL(t *testing.T) {
	f := New()
	cases := map[flavor.ColumnType]string{
		flavor.ColumnID:        "VARCHAR(36)",
		flavor.ColumnBigInt:    "BIGINT",
		flavor.ColumnNumeric:   "NUMERIC",
		flavor.ColumnBoolean:   "BOOLEAN",
		flavor.ColumnTimestamp: "TIMESTAMPTZ",
		flavor.ColumnVarchar:   "VARCHAR(65535)",
	}
	for ct, want := range cases {
		assert.Equal(t, want, f.ColumnTypeSQL(ct))
	}
}

func TestJSONColumnTypeIsJSONB(t *testing.T) {
	assert.Equal(t, "jsonb", New().JSONColumnType())
}

func TestNoTableOptions(t *testing.T) {
	assert.Equal(t, "", New().TableOptions())
}

func TestSupportsSecondaryIndex(t *testing.T) {
	assert.True(t, New().SupportsSecondaryIndex())
}

func TestPublishStatementsRenamesIntoPlace(t *testing.T) {
	f := New()
	stmts := f.PublishStatements("widgets__loading", "widgets")
	wantStmts := []string{
		`DROP TABLE IF EXISTS "widgets";`,
		`ALTER TABLE "widgets__loading" RENAME TO "widgets";`,
	}
	assert.Equal(t, wantStmts, stmts)
}
