package stage

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ldp/internal/anonymize"
	"ldp/internal/flavor"
	"ldp/internal/jsonstream"
	"ldp/internal/naming"
)

// maxLiteralLen is the encoded-literal length ceiling spec'd for
// id/timestamptz/varchar columns and the data column (65535, i.e. the
// largest value an unsigned 16-bit length can hold).
const maxLiteralLen = 65535

// maxNumericMagnitude is the numeric overflow ceiling: values beyond this
// are replaced by 0 with a warning rather than failing the table.
const maxNumericMagnitude = 1e10

var datetimePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)

// ObserveRecord is pass 1's per-record step: for each top-level member of
// rec, tally the field's JSON type (null, boolean, number or string);
// numbers additionally tally integer or floating, and strings may
// additionally tally uuid and/or datetime. Nested
// arrays/objects are not walked for column purposes; only top-level
// fields become columns.
func ObserveRecord(counts map[string]*Counts, rec jsonstream.Value) {
	for _, m := range rec.Obj {
		if anonymize.ShouldRedact(m.Key) {
			continue
		}
		c, ok := counts[m.Key]
		if !ok {
			c = &Counts{}
			counts[m.Key] = c
		}
		observeValue(c, m.Value)
	}
}

func observeValue(c *Counts, v jsonstream.Value) {
	switch v.Kind {
	case jsonstream.KindNull:
		c.Null++
	case jsonstream.KindBool:
		c.Boolean++
	case jsonstream.KindNumber:
		c.Number++
		if _, ok := v.IntegerValue(); ok {
			c.Integer++
		} else {
			c.Floating++
		}
	case jsonstream.KindString:
		c.String++
		if isUUID(v.Str) {
			c.UUID++
		}
		if datetimePrefix.MatchString(v.Str) {
			c.Datetime++
		}
	}
}

func isUUID(s string) bool {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	// Require the canonical 8-4-4-4-12 hyphenated form; uuid.Parse also
	// accepts urn: and brace forms, which the source field never is.
	return parsed.String() == s
}

// EmitTuple is pass 2's per-record step: build one parenthesized SQL
// tuple for rec according to table's columns and append it to the
// batcher. f supplies literal encoding, table's name and the record's id
// are used as warning context, log receives oversize/overflow warnings.
func EmitTuple(log *zap.Logger, f flavor.Flavor, table *TableSpec, rec jsonstream.Value, canonical, compact string, batcher *InsertBatcher) error {
	id := recordID(rec)

	var tuple []byte
	tuple = append(tuple, '(')

	for i, col := range table.Columns {
		if i > 0 {
			tuple = append(tuple, ',')
		}
		tuple = append(tuple, columnLiteral(log, f, table.TableName, col, id, rec)...)
	}

	if len(table.Columns) > 0 {
		tuple = append(tuple, ',')
	}
	tuple = append(tuple, dataLiteral(log, f, table.TableName, id, canonical, compact)...)
	tuple = append(tuple, ",1)"...)

	return batcher.Append(tuple)
}

func recordID(rec jsonstream.Value) string {
	if idVal, ok := rec.Get("id"); ok {
		return idVal.Str
	}
	return ""
}

func columnLiteral(log *zap.Logger, f flavor.Flavor, table string, col ColumnSpec, id string, rec jsonstream.Value) []byte {
	val, ok := rec.Get(col.SourceFieldName)
	if !ok || val.IsNull() {
		return []byte("NULL")
	}

	switch col.ColumnType {
	case flavor.ColumnBigInt:
		n, ok := val.IntegerValue()
		if !ok {
			return []byte("NULL")
		}
		return []byte(fmt.Sprintf("%d", n))

	case flavor.ColumnBoolean:
		if val.Bool {
			return []byte("TRUE")
		}
		return []byte("FALSE")

	case flavor.ColumnNumeric:
		n, ok := val.Float64Value()
		if !ok {
			return []byte("NULL")
		}
		if n > maxNumericMagnitude || n < -maxNumericMagnitude {
			log.Warn("numeric overflow, substituting 0",
				zap.String("table", table), zap.String("column", col.ColumnName), zap.String("id", id))
			return []byte("0")
		}
		return []byte(val.Num)

	case flavor.ColumnID, flavor.ColumnTimestamp, flavor.ColumnVarchar:
		literal := f.QuoteString(stringValue(val))
		if len(literal) >= maxLiteralLen {
			log.Warn("string literal too long, substituting NULL",
				zap.String("table", table), zap.String("column", col.ColumnName), zap.String("id", id))
			return []byte("NULL")
		}
		return []byte(literal)

	default:
		return []byte("NULL")
	}
}

func stringValue(v jsonstream.Value) string {
	if v.Kind == jsonstream.KindString {
		return v.Str
	}
	return jsonstream.Compact(v)
}

func dataLiteral(log *zap.Logger, f flavor.Flavor, table, id, canonical, compact string) []byte {
	literal := f.QuoteString(canonical)
	if len(literal) > maxLiteralLen {
		literal = f.QuoteString(compact)
		log.Warn("data column fell back to compact form",
			zap.String("table", table), zap.String("id", id))
	}
	if len(literal) > maxLiteralLen {
		log.Warn("data column too long even compact, substituting NULL",
			zap.String("table", table), zap.String("id", id))
		return []byte("NULL")
	}
	return []byte(literal)
}

// ColumnSpecsFromCounts turns pass 1's observed Counts into a
// deterministic, sorted ColumnSpec list: id first (implicit), remaining
// fields sorted by source field name, fields that ChooseType drops
// omitted entirely.
func ColumnSpecsFromCounts(counts map[string]*Counts) []ColumnSpec {
	names := make([]string, 0, len(counts))
	for name := range counts {
		if name == "id" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]ColumnSpec, 0, len(names)+1)
	specs = append(specs, ColumnSpec{ColumnName: "id", SourceFieldName: "id", ColumnType: flavor.ColumnID})

	for _, name := range names {
		ct, ok := ChooseType(*counts[name])
		if !ok {
			continue
		}
		specs = append(specs, ColumnSpec{
			ColumnName:      naming.ColumnName(name),
			SourceFieldName: name,
			ColumnType:      ct,
		})
	}
	return specs
}

