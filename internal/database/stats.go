package database

import (
	"context"
	"fmt"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"go.uber.org/zap"
)

// GetTransactionTotals sums amounts and counts transactions per (type,
// currency) inside the window. Sums are accumulated as decimals rather
// than with SQL SUM, which would coerce the TEXT amounts to floating point.
func (s *Service) GetTransactionTotals(ctx context.Context, userId string, window store.StatsWindow) ([]models.TypeCurrencyTotal, error) {
	rows, err := s.db.QueryContext(ctx, queryGetTransactionAmountsInWindow,
		userId, window.From, window.From, window.On, window.On)
	if err != nil {
		zap.L().Error("Failed to query transaction totals", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query transaction totals: %w", err)
	}
	defer closeRows(rows)

	totals := []models.TypeCurrencyTotal{}
	index := make(map[string]int)
	for rows.Next() {
		var transactionType, currency, amountStr string
		if err := rows.Scan(&transactionType, &currency, &amountStr); err != nil {
			return nil, fmt.Errorf("unable to scan transaction amount: %w", err)
		}
		amount, err := parseDecimal("amount", amountStr)
		if err != nil {
			return nil, err
		}

		key := transactionType + "|" + currency
		i, ok := index[key]
		if !ok {
			i = len(totals)
			index[key] = i
			totals = append(totals, models.TypeCurrencyTotal{Type: transactionType, Currency: currency})
		}
		totals[i].Total = totals[i].Total.Add(amount)
		totals[i].Count++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction amounts: %w", err)
	}

	return totals, nil
}

// GetBalancesByCurrency sums account balances per account currency.
func (s *Service) GetBalancesByCurrency(ctx context.Context, userId string) ([]models.CurrencyBalance, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAccountBalancesByCurrency, userId)
	if err != nil {
		zap.L().Error("Failed to query balances by currency", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query balances by currency: %w", err)
	}
	defer closeRows(rows)

	balances := []models.CurrencyBalance{}
	for rows.Next() {
		var currency, balanceStr string
		if err := rows.Scan(&currency, &balanceStr); err != nil {
			return nil, fmt.Errorf("unable to scan account balance: %w", err)
		}
		balance, err := parseDecimal("balance", balanceStr)
		if err != nil {
			return nil, err
		}

		last := len(balances) - 1
		if last >= 0 && balances[last].Currency == currency {
			balances[last].TotalBalance = balances[last].TotalBalance.Add(balance)
			continue
		}
		balances = append(balances, models.CurrencyBalance{Currency: currency, TotalBalance: balance})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account balances: %w", err)
	}

	return balances, nil
}
