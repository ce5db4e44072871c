package currency

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrMissingRate = errors.New("missing exchange rate")

// Rates maps a currency code to its value in the base currency (RSD per unit).
type Rates map[string]decimal.Decimal

func (r Rates) Clone() Rates {
	clone := make(Rates, len(r))
	for code, rate := range r {
		clone[code] = rate
	}
	return clone
}

// Convert moves amount from one currency to another through the base
// currency. A missing or zero rate on either leg is an error.
func Convert(amount decimal.Decimal, from, to string, rates Rates) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	inBase := amount
	if from != Base {
		rate, ok := rates[from]
		if !ok || rate.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingRate, from)
		}
		inBase = amount.Mul(rate)
	}

	if to == Base {
		return inBase, nil
	}

	rate, ok := rates[to]
	if !ok || rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingRate, to)
	}
	return inBase.DivRound(rate, 16), nil
}
