/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) CreateAccount(ctx context.Context, params store.CreateAccountParams) (*models.Account, error) {
	account := &models.Account{
		Id:             uuid.New().String(),
		UserId:         params.UserId,
		Name:           params.Name,
		Type:           params.Type,
		Currency:       params.Currency,
		Balance:        params.InitialBalance,
		InitialBalance: params.InitialBalance,
		CreatedAt:      time.Now().UTC(),
	}

	if err := insertAccount(ctx, s.db, account); err != nil {
		return nil, err
	}

	zap.L().Info("Account created",
		zap.String("user_id", account.UserId),
		zap.String("account_id", account.Id),
		zap.String("type", account.Type),
		zap.String("currency", account.Currency),
		zap.String("initial_balance", account.InitialBalance.String()))

	return account, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAccount(ctx context.Context, db execer, account *models.Account) error {
	_, err := db.ExecContext(ctx, queryInsertAccount,
		account.Id, account.UserId, account.Name, account.Type, account.Currency,
		account.Balance.String(), account.InitialBalance.String(), account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s *Service) GetAccounts(ctx context.Context, userId string) ([]models.Account, error) {
	zap.L().Debug("Querying accounts", zap.String("user_id", userId))

	rows, err := s.db.QueryContext(ctx, queryGetAccounts, userId)
	if err != nil {
		zap.L().Error("Failed to query accounts", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer closeRows(rows)

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan account row: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

func (s *Service) GetAccount(ctx context.Context, userId, accountId string) (*models.Account, error) {
	return getAccount(ctx, s.db, userId, accountId)
}

func getAccount(ctx context.Context, q queryer, userId, accountId string) (*models.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx, queryGetAccount, accountId, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: account not found", store.ErrNotFound)
		}
		return nil, fmt.Errorf("unable to query account: %w", err)
	}
	return account, nil
}

// UpdateAccount renames or retypes an account. The currency is fixed at
// creation; a patch carrying a different currency is rejected.
func (s *Service) UpdateAccount(ctx context.Context, userId, accountId string, patch models.AccountPatch) (*models.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	current, err := getAccount(ctx, tx, userId, accountId)
	if err != nil {
		return nil, err
	}

	assignments, err := resolveAccountPatch(patch, current)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return current, nil
	}

	query, args := buildUpdate("accounts", assignments, "id = ? AND user_id = ?", accountId, userId)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	updated, err := getAccount(ctx, tx, userId, accountId)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Account updated", zap.String("account_id", accountId), zap.Int("fields", len(assignments)))
	return updated, nil
}

// DeleteAccount removes an account that has no transactions.
func (s *Service) DeleteAccount(ctx context.Context, userId, accountId string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if _, err := getAccount(ctx, tx, userId, accountId); err != nil {
		return err
	}

	var count int
	if err := tx.QueryRowContext(ctx, queryCountAccountTransactions, accountId).Scan(&count); err != nil {
		return fmt.Errorf("failed to count account transactions: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: cannot delete account that has transactions, delete all transactions first", store.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx, queryDeleteAccount, accountId, userId); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Account deleted", zap.String("user_id", userId), zap.String("account_id", accountId))
	return nil
}
