package api

import (
	"context"
	"testing"
	"time"

	"finance-tracker-go/internal/currency"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsWindow(t *testing.T) {
	now := time.Date(2024, 3, 5, 22, 45, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   store.StatsWindow
	}{
		{"today", store.StatsWindow{On: "2024-03-05"}},
		{"week", store.StatsWindow{From: "2024-02-27"}},
		{"month", store.StatsWindow{From: "2024-03-01"}},
		{"year", store.StatsWindow{From: "2024-01-01"}},
		{"decade", store.StatsWindow{}},
		{"", store.StatsWindow{}},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			assert.Equal(t, tt.want, StatsWindow(tt.period, now))
		})
	}
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userId, accountId := env.register(t, "alice")

	eurAccount, err := env.service.CreateAccount(ctx, userId, models.CreateAccountRequest{
		Name: "Euro", Type: models.AccountTypeBank, Currency: "EUR", Balance: decimalPtr("10"),
	})
	require.NoError(t, err)

	env.createTransaction(t, userId, accountId, models.TransactionTypeIncome, "1000", "RSD", "2024-05-10")
	env.createTransaction(t, userId, accountId, models.TransactionTypeExpense, "235", "RSD", "2024-05-11")
	env.createTransaction(t, userId, eurAccount.Id, models.TransactionTypeExpense, "2", "EUR", "2024-05-12")
	// Outside the month window
	env.createTransaction(t, userId, accountId, models.TransactionTypeIncome, "500", "RSD", "2024-04-30")

	stats, err := env.service.GetStats(ctx, userId, "", "")
	require.NoError(t, err)
	assert.Equal(t, "month", stats.Period)
	assert.Equal(t, "RSD", stats.Currency)
	assert.Len(t, stats.Transactions, 3)
	assert.Len(t, stats.AccountBalances, 2)

	require.NotNil(t, stats.Converted)
	assert.Equal(t, "1000", stats.Converted.Income.String())
	// 235 + 2 * 117.5
	assert.Equal(t, "470", stats.Converted.Expense.String())
	assert.Equal(t, "530", stats.Converted.Net.String())
	// RSD 1265 + EUR 8 * 117.5
	assert.Equal(t, "2205", stats.Converted.Balance.String())

	all, err := env.service.GetStats(ctx, userId, "forever", "EUR")
	require.NoError(t, err)
	require.NotNil(t, all.Converted)
	assert.Equal(t, "EUR", all.Converted.Currency)
	// 1500 / 117.5
	assert.Equal(t, "12.77", all.Converted.Income.String())

	unsupported, err := env.service.GetStats(ctx, userId, "month", "GBP")
	require.NoError(t, err)
	assert.Equal(t, "GBP", unsupported.Currency)
	assert.Nil(t, unsupported.Converted)
}

func TestConvertStats_SkipsRowsWithoutRate(t *testing.T) {
	totals := []models.TypeCurrencyTotal{
		{Type: models.TransactionTypeIncome, Currency: "RSD", Total: decimal.RequireFromString("100"), Count: 1},
		{Type: models.TransactionTypeIncome, Currency: "HUF", Total: decimal.RequireFromString("1000"), Count: 1},
	}
	balances := []models.CurrencyBalance{
		{Currency: "RSD", TotalBalance: decimal.RequireFromString("100")},
	}

	converted := convertStats(totals, balances, "RSD", currency.Rates{"EUR": decimal.RequireFromString("117.5")})
	assert.Equal(t, "100", converted.Income.String())
	assert.True(t, converted.Expense.IsZero())
	assert.Equal(t, "100", converted.Balance.String())
}
