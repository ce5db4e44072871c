package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// applyBalanceDelta adds delta to an account balance inside tx and returns
// the new balance.
func applyBalanceDelta(ctx context.Context, tx *sql.Tx, accountId string, delta decimal.Decimal) (decimal.Decimal, error) {
	var balanceStr string
	err := tx.QueryRowContext(ctx, queryGetAccountBalance, accountId).Scan(&balanceStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: account %s", store.ErrNotFound, accountId)
		}
		return decimal.Zero, fmt.Errorf("failed to get current balance: %w", err)
	}

	currentBalance, err := parseDecimal("balance", balanceStr)
	if err != nil {
		return decimal.Zero, err
	}
	newBalance := currentBalance.Add(delta)

	result, err := tx.ExecContext(ctx, queryUpdateAccountBalance, newBalance.String(), accountId)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return decimal.Zero, fmt.Errorf("%w: account %s", store.ErrNotFound, accountId)
	}

	zap.L().Debug("Account balance adjusted",
		zap.String("account_id", accountId),
		zap.String("delta", delta.String()),
		zap.String("old_balance", currentBalance.String()),
		zap.String("new_balance", newBalance.String()))

	return newBalance, nil
}

// ReconcileAccountBalance verifies that the stored balance equals the initial
// balance plus the signed sum of all live transactions.
func (s *Service) ReconcileAccountBalance(ctx context.Context, userId, accountId string) error {
	zap.L().Info("Reconciling balance", zap.String("user_id", userId), zap.String("account_id", accountId))

	account, err := getAccount(ctx, s.db, userId, accountId)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, queryGetAccountTransactionAmounts, accountId)
	if err != nil {
		return fmt.Errorf("failed to query transaction amounts: %w", err)
	}
	defer closeRows(rows)

	calculatedBalance := account.InitialBalance
	for rows.Next() {
		var transactionType, amountStr string
		if err := rows.Scan(&transactionType, &amountStr); err != nil {
			return fmt.Errorf("failed to scan transaction amount: %w", err)
		}
		amount, err := parseDecimal("amount", amountStr)
		if err != nil {
			return err
		}
		calculatedBalance = calculatedBalance.Add(models.SignedDelta(transactionType, amount))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating transaction rows: %w", err)
	}

	// Check if balances match (exact decimal comparison)
	if !account.Balance.Equal(calculatedBalance) {
		zap.L().Error("Balance reconciliation failed",
			zap.String("account_id", accountId),
			zap.String("current_balance", account.Balance.String()),
			zap.String("calculated_balance", calculatedBalance.String()),
			zap.String("difference", account.Balance.Sub(calculatedBalance).String()))
		return fmt.Errorf("balance mismatch: current=%s, calculated=%s", account.Balance.String(), calculatedBalance.String())
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("account_id", accountId),
		zap.String("balance", account.Balance.String()))
	return nil
}
