package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRates() Rates {
	return Rates{
		"EUR": decimal.RequireFromString("117.5"),
		"USD": decimal.RequireFromString("107.8"),
		"HUF": decimal.RequireFromString("0.29"),
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		from, to string
		expected string
	}{
		{"identity", "42.42", "EUR", "EUR", "42.42"},
		{"to base", "10", "EUR", "RSD", "1175"},
		{"from base", "1175", "RSD", "EUR", "10"},
		{"cross", "10", "EUR", "USD", "10.8998144712430427"},
		{"huf to base", "1000", "HUF", "RSD", "290"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Convert(decimal.RequireFromString(tt.amount), tt.from, tt.to, testRates())
			require.NoError(t, err)
			assert.Equal(t, decimal.RequireFromString(tt.expected).String(), result.String())
		})
	}
}

func TestConvert_IdentityNeedsNoRates(t *testing.T) {
	result, err := Convert(decimal.NewFromInt(5), "GBP", "GBP", nil)
	require.NoError(t, err)
	assert.True(t, result.Equal(decimal.NewFromInt(5)))
}

func TestConvert_RoundTrip(t *testing.T) {
	amount := decimal.RequireFromString("1234.56")

	for _, code := range []string{"EUR", "USD", "HUF"} {
		there, err := Convert(amount, Base, code, testRates())
		require.NoError(t, err)
		back, err := Convert(there, code, Base, testRates())
		require.NoError(t, err)
		assert.True(t, back.Round(6).Equal(amount), "%s round trip gave %s", code, back.String())
	}
}

func TestConvert_MissingRate(t *testing.T) {
	rates := Rates{"EUR": decimal.RequireFromString("117.5"), "USD": decimal.Zero}

	_, err := Convert(decimal.NewFromInt(1), "GBP", "RSD", rates)
	assert.ErrorIs(t, err, ErrMissingRate)

	_, err = Convert(decimal.NewFromInt(1), "EUR", "GBP", rates)
	assert.ErrorIs(t, err, ErrMissingRate)

	_, err = Convert(decimal.NewFromInt(1), "RSD", "USD", rates)
	assert.ErrorIs(t, err, ErrMissingRate)
}
