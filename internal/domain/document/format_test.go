package document

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"1,234.50":  "1234.5",
		"$ 12,000":  "12000",
		"USD 99.99": "99.99",
		"0.125":     "0.125",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			d, err := ParseAmount(in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(want).Equal(d), "got %s", d)
		})
	}

	_, err := ParseAmount("")
	assert.Error(t, err)
	_, err = ParseAmount("twelve")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2026-03-09", "03/09/2026", "09-Mar-2026", "Mar 9, 2026", "2026/03/09"} {
		d, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2026-03-09", d.Format(DateLayout))
	}
	_, err := ParseDate("31/31/2026")
	assert.Error(t, err)
}

func TestNormalizeCurrency(t *testing.T) {
	c, err := NormalizeCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, "USD", c)

	_, err = NormalizeCurrency("XYZQ")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,234,567.89", FormatAmount(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
	assert.Equal(t, "-1,000.50", FormatAmount(decimal.RequireFromString("-1000.5")))
	assert.Equal(t, "12.346", FormatDecimal(decimal.RequireFromString("12.3456"), 3))
}

func TestMaskAmountInput(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"1234567.891": "1,234,567.89",
		"$1,2a3":      "123",
		"0005":        "5",
		".5":          "0.5",
		"12.":         "12.",
		"1.2.3":       "1.23",
		"000":         "0",
	}
	for in, want := range tests {
		assert.Equal(t, want, MaskAmountInput(in), "input %q", in)
	}
}

func TestMaskDateInput(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"01":         "01",
		"010":        "01/0",
		"0102":       "01/02",
		"01022026":   "01/02/2026",
		"01/02/2026": "01/02/2026",
		"0102202677": "01/02/2026",
	}
	for in, want := range tests {
		assert.Equal(t, want, MaskDateInput(in), "input %q", in)
	}
}
