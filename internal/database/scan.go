package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finance-tracker-go/internal/models"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// queryer lets read helpers run inside or outside a unit of work
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func parseDecimal(column, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s '%s': %w", column, value, err)
	}
	return d, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	var balanceStr, initialStr string
	if err := row.Scan(&account.Id, &account.UserId, &account.Name, &account.Type, &account.Currency,
		&balanceStr, &initialStr, &account.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if account.Balance, err = parseDecimal("balance", balanceStr); err != nil {
		return nil, err
	}
	if account.InitialBalance, err = parseDecimal("initial_balance", initialStr); err != nil {
		return nil, err
	}
	return &account, nil
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var category models.Category
	if err := row.Scan(&category.Id, &category.UserId, &category.Name, &category.Description,
		&category.Type, &category.CreatedAt); err != nil {
		return nil, err
	}
	return &category, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var transaction models.Transaction
	var amountStr string
	if err := row.Scan(&transaction.Id, &transaction.UserId, &transaction.AccountId, &amountStr,
		&transaction.Description, &transaction.Category, &transaction.Type, &transaction.Currency,
		&transaction.Date, &transaction.CreatedAt, &transaction.AccountName, &transaction.AccountType); err != nil {
		return nil, err
	}

	amount, err := parseDecimal("amount", amountStr)
	if err != nil {
		return nil, err
	}
	transaction.Amount = amount
	return &transaction, nil
}

func scanArchivedTransaction(row rowScanner) (*models.ArchivedTransaction, error) {
	var archived models.ArchivedTransaction
	var amountStr string
	if err := row.Scan(&archived.Id, &archived.OriginalId, &archived.UserId, &archived.AccountId, &amountStr,
		&archived.Description, &archived.Category, &archived.Type, &archived.Currency, &archived.Date,
		&archived.ArchivedAt); err != nil {
		return nil, err
	}

	amount, err := parseDecimal("amount", amountStr)
	if err != nil {
		return nil, err
	}
	archived.Amount = amount
	return &archived, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zap.L().Warn("Failed to close rows", zap.Error(err))
	}
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		zap.L().Warn("Failed to roll back transaction", zap.Error(err))
	}
}
