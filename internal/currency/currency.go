package currency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Base is the currency every rate is expressed in.
const Base = "RSD"

// Currency describes how a code is displayed and where it may be used.
// FallbackRate is RSD per unit and is only meaningful for non-base codes.
type Currency struct {
	Code           string `yaml:"code"`
	Symbol         string `yaml:"symbol"`
	Suffix         bool   `yaml:"suffix"`
	AccountAllowed bool   `yaml:"account"`
	FallbackRate   string `yaml:"fallback_rate"`
}

// Registry is an immutable set of known currencies.
type Registry struct {
	currencies map[string]Currency
	codes      []string
	fallback   Rates
}

var defaultCurrencies = []Currency{
	{Code: "RSD", Symbol: "дин", Suffix: true, AccountAllowed: true},
	{Code: "EUR", Symbol: "€", AccountAllowed: true, FallbackRate: "117.5"},
	{Code: "USD", Symbol: "$", AccountAllowed: true, FallbackRate: "107.8"},
	{Code: "HUF", Symbol: "Ft", Suffix: true, FallbackRate: "0.29"},
}

var defaultRegistry = mustRegistry(defaultCurrencies)

// Default returns the built-in registry: RSD, EUR and USD for accounts,
// HUF additionally for transactions.
func Default() *Registry {
	return defaultRegistry
}

func mustRegistry(currencies []Currency) *Registry {
	registry, err := NewRegistry(currencies)
	if err != nil {
		panic(err)
	}
	return registry
}

// NewRegistry validates the list and builds a registry from it. The base
// currency must be present.
func NewRegistry(currencies []Currency) (*Registry, error) {
	registry := &Registry{
		currencies: make(map[string]Currency, len(currencies)),
		fallback:   make(Rates),
	}

	for i, c := range currencies {
		if c.Code == "" {
			return nil, fmt.Errorf("currency at index %d missing code", i)
		}
		if c.Symbol == "" {
			return nil, fmt.Errorf("currency %s missing symbol", c.Code)
		}
		if _, exists := registry.currencies[c.Code]; exists {
			return nil, fmt.Errorf("currency %s declared twice", c.Code)
		}

		if c.Code != Base {
			if c.FallbackRate == "" {
				return nil, fmt.Errorf("currency %s missing fallback rate", c.Code)
			}
			rate, err := decimal.NewFromString(c.FallbackRate)
			if err != nil {
				return nil, fmt.Errorf("currency %s has invalid fallback rate %q: %w", c.Code, c.FallbackRate, err)
			}
			if !rate.IsPositive() {
				return nil, fmt.Errorf("currency %s fallback rate must be positive", c.Code)
			}
			registry.fallback[c.Code] = rate
		}

		registry.currencies[c.Code] = c
		registry.codes = append(registry.codes, c.Code)
	}

	if _, ok := registry.currencies[Base]; !ok {
		return nil, fmt.Errorf("base currency %s missing", Base)
	}

	return registry, nil
}

func (r *Registry) Lookup(code string) (Currency, bool) {
	c, ok := r.currencies[code]
	return c, ok
}

// IsSupported reports whether transactions may be recorded in code.
func (r *Registry) IsSupported(code string) bool {
	_, ok := r.currencies[code]
	return ok
}

// IsAccountCurrency reports whether accounts and user preferences may use code.
func (r *Registry) IsAccountCurrency(code string) bool {
	c, ok := r.currencies[code]
	return ok && c.AccountAllowed
}

// Codes returns the registered codes in declaration order.
func (r *Registry) Codes() []string {
	return append([]string(nil), r.codes...)
}

// AccountCodes returns the codes accounts may hold, sorted.
func (r *Registry) AccountCodes() []string {
	var codes []string
	for _, code := range r.codes {
		if r.currencies[code].AccountAllowed {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// FallbackRates returns a copy of the rates used when no upstream data exists.
func (r *Registry) FallbackRates() Rates {
	return r.fallback.Clone()
}

// Format renders amount with two decimals, comma thousands separators and
// the currency symbol as prefix or suffix. Unknown codes are suffixed with
// the code itself.
func (r *Registry) Format(amount decimal.Decimal, code string) string {
	number := groupThousands(amount.Abs().StringFixed(2))
	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}

	c, ok := r.currencies[code]
	if !ok {
		return sign + number + " " + code
	}
	if c.Suffix {
		return sign + number + " " + c.Symbol
	}
	return sign + c.Symbol + number
}

// Format renders amount using the built-in registry.
func Format(amount decimal.Decimal, code string) string {
	return defaultRegistry.Format(amount, code)
}

func groupThousands(fixed string) string {
	integer, fraction, _ := strings.Cut(fixed, ".")
	if len(integer) <= 3 {
		return fixed
	}

	var b strings.Builder
	lead := len(integer) % 3
	if lead > 0 {
		b.WriteString(integer[:lead])
	}
	for i := lead; i < len(integer); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(integer[i : i+3])
	}
	return b.String() + "." + fraction
}
