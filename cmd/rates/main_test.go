package main

import (
	"bytes"
	"testing"
	"time"

	"finance-tracker-go/internal/currency"
	"finance-tracker-go/internal/rates"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPrintSnapshot(t *testing.T) {
	var out bytes.Buffer
	snapshot := rates.Snapshot{
		Rates:     currency.Rates{"EUR": decimal.RequireFromString("117.25")},
		FetchedAt: time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC),
		Source:    rates.SourceUpstream,
	}

	printSnapshot(&out, currency.Default(), snapshot)

	assert.Contains(t, out.String(), "Source: upstream")
	assert.Contains(t, out.String(), "Last updated: 2024-05-15 10:00:00 UTC")
	assert.Contains(t, out.String(), "1 EUR  = 117.25 дин")
	assert.Contains(t, out.String(), "1 USD  = unavailable")
}

func TestPrintConversionTable(t *testing.T) {
	var out bytes.Buffer
	registry := currency.Default()

	printConversionTable(&out, registry, registry.FallbackRates(), decimal.RequireFromString("100"))

	assert.Contains(t, out.String(), "€100.00")
	assert.Contains(t, out.String(), "11,750.00 дин")
	assert.NotContains(t, out.String(), "n/a")

	out.Reset()
	printConversionTable(&out, registry, currency.Rates{}, decimal.RequireFromString("1"))
	assert.Contains(t, out.String(), "n/a")
}
