package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateTransaction inserts a transaction and applies its signed amount to
// the owning account in one unit of work.
func (s *Service) CreateTransaction(ctx context.Context, params store.CreateTransactionParams) (*models.Transaction, error) {
	zap.L().Info("Creating transaction",
		zap.String("user_id", params.UserId),
		zap.String("account_id", params.AccountId),
		zap.String("type", params.Type),
		zap.String("amount", params.Amount.String()),
		zap.String("currency", params.Currency))

	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", store.ErrValidation)
	}

	// Start database transaction for atomicity
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	account, err := getAccount(ctx, tx, params.UserId, params.AccountId)
	if err != nil {
		return nil, err
	}

	transactionId := uuid.New().String()
	_, err = tx.ExecContext(ctx, queryInsertTransaction,
		transactionId, params.UserId, account.Id, params.Amount.String(),
		params.Description, params.Category, params.Type, params.Currency, params.Date, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	newBalance, err := applyBalanceDelta(ctx, tx, account.Id, models.SignedDelta(params.Type, params.Amount))
	if err != nil {
		return nil, err
	}

	transaction, err := getTransaction(ctx, tx, params.UserId, transactionId)
	if err != nil {
		return nil, err
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Transaction created successfully",
		zap.String("transaction_id", transactionId),
		zap.String("account_id", account.Id),
		zap.String("old_balance", account.Balance.String()),
		zap.String("new_balance", newBalance.String()))

	return transaction, nil
}

func (s *Service) GetTransaction(ctx context.Context, userId, transactionId string) (*models.Transaction, error) {
	return getTransaction(ctx, s.db, userId, transactionId)
}

func getTransaction(ctx context.Context, q queryer, userId, transactionId string) (*models.Transaction, error) {
	transaction, err := scanTransaction(q.QueryRowContext(ctx, queryGetTransaction, transactionId, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction not found", store.ErrNotFound)
		}
		return nil, fmt.Errorf("unable to query transaction: %w", err)
	}
	return transaction, nil
}

// UpdateTransaction applies a patch. The old signed amount is reversed on
// the old account, the row is rewritten, and the new signed amount is
// applied to the (possibly different) account, all in one unit of work.
func (s *Service) UpdateTransaction(ctx context.Context, userId, transactionId string, patch models.TransactionPatch) (*models.Transaction, error) {
	assignments, err := resolveTransactionPatch(patch)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	old, err := getTransaction(ctx, tx, userId, transactionId)
	if err != nil {
		return nil, err
	}

	if patch.AccountId != nil && *patch.AccountId != old.AccountId {
		if _, err := getAccount(ctx, tx, userId, *patch.AccountId); err != nil {
			return nil, err
		}
	}

	// Reverse the old effect
	if _, err := applyBalanceDelta(ctx, tx, old.AccountId, old.SignedAmount().Neg()); err != nil {
		return nil, fmt.Errorf("failed to reverse old balance effect: %w", err)
	}

	query, args := buildUpdate("transactions", assignments, "id = ? AND user_id = ?", transactionId, userId)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	if rowsAffected, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	} else if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: transaction not found", store.ErrNotFound)
	}

	updated, err := getTransaction(ctx, tx, userId, transactionId)
	if err != nil {
		return nil, err
	}

	// Apply the new effect
	if _, err := applyBalanceDelta(ctx, tx, updated.AccountId, updated.SignedAmount()); err != nil {
		return nil, fmt.Errorf("failed to apply new balance effect: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Transaction updated successfully",
		zap.String("transaction_id", transactionId),
		zap.String("old_account_id", old.AccountId),
		zap.String("new_account_id", updated.AccountId),
		zap.String("old_delta", old.SignedAmount().String()),
		zap.String("new_delta", updated.SignedAmount().String()))

	return updated, nil
}

// DeleteTransaction archives the row, reverses its balance effect and
// removes it, all in one unit of work.
func (s *Service) DeleteTransaction(ctx context.Context, userId, transactionId string) (*models.ArchivedTransaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	existing, err := getTransaction(ctx, tx, userId, transactionId)
	if err != nil {
		return nil, err
	}

	archived := &models.ArchivedTransaction{
		Id:          uuid.New().String(),
		OriginalId:  existing.Id,
		UserId:      existing.UserId,
		AccountId:   existing.AccountId,
		Amount:      existing.Amount,
		Description: existing.Description,
		Category:    existing.Category,
		Type:        existing.Type,
		Currency:    existing.Currency,
		Date:        existing.Date,
		ArchivedAt:  time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, queryInsertArchivedTransaction,
		archived.Id, archived.OriginalId, archived.UserId, archived.AccountId, archived.Amount.String(),
		archived.Description, archived.Category, archived.Type, archived.Currency, archived.Date, archived.ArchivedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to archive transaction: %w", err)
	}

	if _, err := applyBalanceDelta(ctx, tx, existing.AccountId, existing.SignedAmount().Neg()); err != nil {
		return nil, fmt.Errorf("failed to reverse balance effect: %w", err)
	}

	if _, err := tx.ExecContext(ctx, queryDeleteTransaction, transactionId, userId); err != nil {
		return nil, fmt.Errorf("failed to delete transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Transaction deleted and archived",
		zap.String("transaction_id", transactionId),
		zap.String("archive_id", archived.Id),
		zap.String("account_id", existing.AccountId))

	return archived, nil
}

var (
	sortColumns = map[string]string{
		"date":       "t.date",
		"amount":     "CAST(t.amount AS REAL)",
		"created_at": "t.created_at",
	}
	sortOrders = map[string]string{
		"asc":  "ASC",
		"desc": "DESC",
	}
)

// ListTransactions returns one page of a user's transactions and the total
// number of rows matching the filter. Unknown sort fields and orders fall
// back to date descending.
func (s *Service) ListTransactions(ctx context.Context, userId string, query models.ListTransactionsQuery) ([]models.Transaction, int, error) {
	where, args := transactionFilterClause(userId, query.Filter)

	var total int
	if err := s.db.QueryRowContext(ctx, queryCountTransactions+where, args...).Scan(&total); err != nil {
		zap.L().Error("Failed to count transactions", zap.String("user_id", userId), zap.Error(err))
		return nil, 0, fmt.Errorf("unable to count transactions: %w", err)
	}

	sortColumn, ok := sortColumns[query.Sort]
	if !ok {
		sortColumn = sortColumns["date"]
	}
	sortOrder, ok := sortOrders[query.Order]
	if !ok {
		sortOrder = sortOrders["desc"]
	}
	orderBy := fmt.Sprintf(" ORDER BY %s %s, t.created_at DESC, t.id DESC LIMIT ? OFFSET ?", sortColumn, sortOrder)

	rows, err := s.db.QueryContext(ctx, querySelectTransactionColumns+where+orderBy, append(args, query.Limit, query.Offset)...)
	if err != nil {
		zap.L().Error("Failed to query transactions", zap.String("user_id", userId), zap.Error(err))
		return nil, 0, fmt.Errorf("unable to query transactions: %w", err)
	}
	defer closeRows(rows)

	transactions := []models.Transaction{}
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("unable to scan transaction row: %w", err)
		}
		transactions = append(transactions, *transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	zap.L().Debug("Listed transactions",
		zap.String("user_id", userId),
		zap.Int("returned", len(transactions)),
		zap.Int("total", total))

	return transactions, total, nil
}

func transactionFilterClause(userId string, filter models.TransactionFilter) (string, []any) {
	conditions := []string{"t.user_id = ?"}
	args := []any{userId}

	if filter.Type == models.TransactionTypeIncome || filter.Type == models.TransactionTypeExpense {
		conditions = append(conditions, "t.type = ?")
		args = append(args, filter.Type)
	}
	if filter.AccountId != "" {
		conditions = append(conditions, "t.account_id = ?")
		args = append(args, filter.AccountId)
	}
	if filter.Category != "" {
		conditions = append(conditions, "t.category = ?")
		args = append(args, filter.Category)
	}
	if filter.StartDate != "" {
		conditions = append(conditions, "t.date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		conditions = append(conditions, "t.date <= ?")
		args = append(args, filter.EndDate)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (s *Service) GetArchivedTransactions(ctx context.Context, userId string, limit, offset int) ([]models.ArchivedTransaction, error) {
	rows, err := s.db.QueryContext(ctx, queryGetArchivedTransactions, userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("unable to query archived transactions: %w", err)
	}
	defer closeRows(rows)

	archived := []models.ArchivedTransaction{}
	for rows.Next() {
		entry, err := scanArchivedTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan archived transaction row: %w", err)
		}
		archived = append(archived, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archived transaction rows: %w", err)
	}

	return archived, nil
}

func (s *Service) GetMostRecentTransactionTime(ctx context.Context, userId string) (time.Time, error) {
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, queryGetMostRecentTransaction, userId).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query most recent transaction: %w", err)
	}
	return createdAt, nil
}
