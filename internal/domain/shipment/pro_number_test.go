package shipment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProNumber_String(t *testing.T) {
	pro, err := NewProNumber(2026, 7)
	require.NoError(t, err)
	assert.Equal(t, "2026007", pro.String())
}

func TestParseProNumber(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		pro, err := ParseProNumber("2026123")
		require.NoError(t, err)
		assert.Equal(t, 2026, pro.Year)
		assert.Equal(t, 123, pro.Sequence)
		assert.Equal(t, "2026123", pro.String())
	})

	invalid := []string{"", "202612", "20261234", "2026-01", "abcd001", "2026000", "1999001"}
	for _, s := range invalid {
		t.Run("invalid "+s, func(t *testing.T) {
			_, err := ParseProNumber(s)
			assert.ErrorIs(t, err, ErrInvalidProNumber)
		})
	}
}

func TestProNumber_Next(t *testing.T) {
	pro, err := FirstProNumber(2026)
	require.NoError(t, err)
	assert.Equal(t, "2026001", pro.String())

	next, err := pro.Next()
	require.NoError(t, err)
	assert.Equal(t, "2026002", next.String())

	last, err := NewProNumber(2026, MaxProSequence)
	require.NoError(t, err)
	_, err = last.Next()
	assert.ErrorIs(t, err, ErrProSequenceExhausted)
}
