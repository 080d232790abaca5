package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadingName(t *testing.T) {
	assert.Equal(t, "widgets__loading", LoadingName("widgets"))
}

func TestColumnName(t *testing.T) {
	cases := []struct {
		field string
		want  string
	}{
		{field: "Name", want: "name"},
		{field: "first-name", want: "first_name"},
		{field: "user.email", want: "user_email"},
		{field: "  leading and trailing  ", want: "leading_and_trailing"},
		{field: "___", want: "field"},
		{field: "", want: "field"},
		{field: "2fa_enabled", want: "_2fa_enabled"},
		{field: "already_snake", want: "already_snake"},
		{field: "CamelCaseID", want: "camelcaseid"},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			assert.Equal(t, tc.want, ColumnName(tc.field))
		})
	}
}
