package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"5000", 500_000, false},
		{"5000.50", 500_050, false},
		{"  36,000.00 ", 3_600_000, false},
		{"0.01", 1, false},
		{"0", 0, true},
		{"-10", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseAmountToCents(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "%q", tc.in)
			continue
		}
		require.NoError(t, err, "%q", tc.in)
		assert.Equal(t, tc.want, got, "%q", tc.in)
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "1833.33", FormatCents(183_333))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "-25.00", FormatCents(-2500))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "KSh 36,000.00", FormatCurrency(3_600_000))
	assert.Equal(t, "KSh 1,000,000.00", FormatCurrency(100_000_000))
	assert.Equal(t, "KSh 500.00", FormatCurrency(50_000))
	assert.Equal(t, "KSh 0.50", FormatCurrency(50))
	assert.Equal(t, "KSh -1,250.75", FormatCurrency(-125_075))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := ParseID(bad)
		assert.Error(t, err, "%q", bad)
	}
}
