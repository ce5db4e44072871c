package api

import (
	"context"
	"time"

	"finance-tracker-go/internal/currency"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/rates"
	"finance-tracker-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultStatsPeriod = "month"

// StatsWindow maps a period name to a date window relative to now, in now's
// location. Unknown periods cover all time.
func StatsWindow(period string, now time.Time) store.StatsWindow {
	year, month, day := now.Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	switch period {
	case "today":
		return store.StatsWindow{On: today.Format(models.DateLayout)}
	case "week":
		return store.StatsWindow{From: today.AddDate(0, 0, -7).Format(models.DateLayout)}
	case "month":
		return store.StatsWindow{From: time.Date(year, month, 1, 0, 0, 0, 0, now.Location()).Format(models.DateLayout)}
	case "year":
		return store.StatsWindow{From: time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location()).Format(models.DateLayout)}
	default:
		return store.StatsWindow{}
	}
}

// GetStats returns per (type, currency) totals inside the period window and
// per-currency balances, plus both expressed in the requested currency.
func (s *FinanceService) GetStats(ctx context.Context, userId, period, currencyHint string) (*models.TransactionStats, error) {
	if period == "" {
		period = DefaultStatsPeriod
	}
	if currencyHint == "" {
		currencyHint = currency.Base
	}
	window := StatsWindow(period, s.now())

	var (
		totals   []models.TypeCurrencyTotal
		balances []models.CurrencyBalance
		snapshot rates.Snapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.store.GetTransactionTotals(gctx, userId, window)
		return err
	})
	g.Go(func() error {
		var err error
		balances, err = s.store.GetBalancesByCurrency(gctx, userId)
		return err
	})
	if s.currencies.IsSupported(currencyHint) {
		g.Go(func() error {
			snapshot = s.rates.Rates(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeFailure(err, "retrieve transaction stats",
			zap.String("user_id", userId),
			zap.String("period", period))
	}

	stats := &models.TransactionStats{
		Period:          period,
		Currency:        currencyHint,
		Transactions:    totals,
		AccountBalances: balances,
	}
	if s.currencies.IsSupported(currencyHint) {
		stats.Converted = convertStats(totals, balances, currencyHint, snapshot.Rates)
	}
	return stats, nil
}

// convertStats totals the breakdowns in one currency. Rows whose rate is
// missing are skipped and logged.
func convertStats(totals []models.TypeCurrencyTotal, balances []models.CurrencyBalance, target string, rateSet currency.Rates) *models.ConvertedTotals {
	converted := &models.ConvertedTotals{Currency: target}

	convert := func(amount decimal.Decimal, from string) (decimal.Decimal, bool) {
		value, err := currency.Convert(amount, from, target, rateSet)
		if err != nil {
			zap.L().Warn("Skipping stats row without exchange rate",
				zap.String("from", from),
				zap.String("to", target),
				zap.Error(err))
			return decimal.Zero, false
		}
		return value, true
	}

	for _, row := range totals {
		value, ok := convert(row.Total, row.Currency)
		if !ok {
			continue
		}
		if row.Type == models.TransactionTypeIncome {
			converted.Income = converted.Income.Add(value)
		} else {
			converted.Expense = converted.Expense.Add(value)
		}
	}
	for _, row := range balances {
		if value, ok := convert(row.TotalBalance, row.Currency); ok {
			converted.Balance = converted.Balance.Add(value)
		}
	}

	converted.Income = converted.Income.Round(2)
	converted.Expense = converted.Expense.Round(2)
	converted.Net = converted.Income.Sub(converted.Expense)
	converted.Balance = converted.Balance.Round(2)
	return converted
}
