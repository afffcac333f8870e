package cte_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rodologic/backend/internal/cte"
)

func TestSanitizePlate(t *testing.T) {
	require.Equal(t, "ABC1234", cte.SanitizePlate("abc1234"))
	require.Equal(t, "ABC1234", cte.SanitizePlate(" abc-12.34 "))
	require.Equal(t, "12AB", cte.SanitizePlate("12AB@@"))
	require.Equal(t, "", cte.SanitizePlate(""))
}

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  string
		valid bool
	}{
		{name: "legacy lowercase", raw: "abc1234", want: "ABC1234", valid: true},
		{name: "legacy with separator", raw: "ABC-1234", want: "ABC1234", valid: true},
		{name: "mercosul", raw: "ABC1D23", want: "ABC1D23", valid: true},
		{name: "garbage", raw: "12AB@@", valid: false},
		{name: "too short", raw: "AB1234", valid: false},
		{name: "too long", raw: "ABCD1234", valid: false},
		{name: "mercosul shape swapped", raw: "ABC12D3", valid: false},
		{name: "empty", raw: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plate, ok := cte.NormalizePlate(tt.raw)
			require.Equal(t, tt.valid, ok)
			require.Equal(t, tt.want, plate)
		})
	}
}
