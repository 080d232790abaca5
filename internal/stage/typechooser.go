package stage

import "ldp/internal/flavor"

// ChooseType applies the eight-rule decision table to a field's observed
// Counts and returns the inferred column type, or ok=false if the field
// should be dropped (rule 7: only null was ever observed).
//
// Rules are evaluated in order; the first one whose condition holds wins.
func ChooseType(c Counts) (flavor.ColumnType, bool) {
	switch {
	case c.UUID == c.String && c.String > 0 && c.Number == 0 && c.Boolean == 0 && c.Datetime == 0:
		// Rule 1: every string observed is a canonical UUID, and no
		// numbers/booleans/datetimes ever showed up for this field.
		return flavor.ColumnID, true

	case c.Datetime == c.String && c.String > 0 && c.Number == 0 && c.Boolean == 0 && c.UUID == 0:
		// Rule 2: every string observed matches the datetime prefix.
		return flavor.ColumnTimestamp, true

	case c.Boolean > 0 && c.String == 0 && c.Number == 0:
		// Rule 3: only booleans (and possibly nulls) were observed.
		return flavor.ColumnBoolean, true

	case c.Number > 0 && c.String == 0 && c.Boolean == 0 && c.Floating == 0:
		// Rule 4: only integer-valued numbers were observed.
		return flavor.ColumnBigInt, true

	case c.Number > 0 && c.String == 0 && c.Boolean == 0:
		// Rule 5: numbers were observed, at least one with a fractional part.
		return flavor.ColumnNumeric, true

	case c.String > 0:
		// Rule 6: strings were observed that didn't qualify for rule 1 or 2.
		return flavor.ColumnVarchar, true

	case c.Null > 0 && c.Boolean == 0 && c.Number == 0 && c.String == 0:
		// Rule 7: the field was observed, but only ever as null. Drop it.
		return "", false

	default:
		// Rule 8: a mix that didn't match any of the above (e.g. booleans
		// alongside numbers) falls back to varchar.
		return flavor.ColumnVarchar, true
	}
}
