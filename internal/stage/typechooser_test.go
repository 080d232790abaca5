package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ldp/internal/flavor"
)

func TestChooseTypeRules(t *testing.T) {
	cases := []struct {
		name   string
		counts Counts
		want   flavor.ColumnType
		wantOK bool
	}{
		{
			name:   "rule1 all strings are canonical uuids",
			counts: Counts{String: 3, UUID: 3},
			want:   flavor.ColumnID,
			wantOK: true,
		},
		{
			name:   "rule2 all strings are datetimes",
			counts: Counts{String: 2, Datetime: 2},
			want:   flavor.ColumnTimestamp,
			wantOK: true,
		},
		{
			name:   "rule3 only booleans",
			counts: Counts{Boolean: 4},
			want:   flavor.ColumnBoolean,
			wantOK: true,
		},
		{
			name:   "rule4 only integers",
			counts: Counts{Number: 5, Integer: 5},
			want:   flavor.ColumnBigInt,
			wantOK: true,
		},
		{
			name:   "rule5 numbers with a floating value",
			counts: Counts{Number: 2, Integer: 1, Floating: 1},
			want:   flavor.ColumnNumeric,
			wantOK: true,
		},
		{
			name:   "rule6 plain strings",
			counts: Counts{String: 4},
			want:   flavor.ColumnVarchar,
			wantOK: true,
		},
		{
			name:   "rule7 only null observed",
			counts: Counts{Null: 3},
			wantOK: false,
		},
		{
			name:   "rule6 booleans alongside strings are varchar",
			counts: Counts{Boolean: 1, String: 1},
			want:   flavor.ColumnVarchar,
			wantOK: true,
		},
		{
			name:   "mixed uuid and non-uuid strings are not id",
			counts: Counts{String: 3, UUID: 2},
			want:   flavor.ColumnVarchar,
			wantOK: true,
		},
		{
			name:   "uuid strings alongside a number disqualify rule1",
			counts: Counts{String: 2, UUID: 2, Number: 1, Integer: 1},
			want:   flavor.ColumnVarchar,
			wantOK: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ChooseType(tc.counts)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
