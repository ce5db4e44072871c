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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultAccountName = "Main Account"
	defaultCurrency    = "RSD"
)

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	zap.L().Debug("Querying users")

	rows, err := s.db.QueryContext(ctx, queryGetUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer closeRows(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		users = append(users, *user)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during user row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	zap.L().Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	zap.L().Debug("Querying user by ID", zap.String("user_id", userId))

	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserById, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}

	return user, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	zap.L().Debug("Querying user by username", zap.String("username", username))

	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserByUsername, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, username)
		}
		zap.L().Error("Failed to query user by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by username: %w", err)
	}

	return user, nil
}

// CreateUser registers a user together with a zero-balance "Main Account"
// in a single unit of work.
func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, *models.Account, error) {
	currency := params.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	now := time.Now().UTC()
	user := &models.User{
		Id:           uuid.New().String(),
		Username:     params.Username,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		Currency:     currency,
		CreatedAt:    now,
	}

	_, err = tx.ExecContext(ctx, queryInsertUser, user.Id, user.Username, user.Name, user.PasswordHash, user.Currency, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, fmt.Errorf("%w: user with this username already exists", store.ErrConflict)
		}
		return nil, nil, fmt.Errorf("failed to insert user: %w", err)
	}

	account := &models.Account{
		Id:             uuid.New().String(),
		UserId:         user.Id,
		Name:           defaultAccountName,
		Type:           models.AccountTypeCash,
		Currency:       currency,
		Balance:        decimal.Zero,
		InitialBalance: decimal.Zero,
		CreatedAt:      now,
	}
	if err := insertAccount(ctx, tx, account); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("User created",
		zap.String("user_id", user.Id),
		zap.String("username", user.Username),
		zap.String("default_account_id", account.Id))

	return user, account, nil
}

func (s *Service) UpdateUserCurrency(ctx context.Context, userId, currency string) error {
	result, err := s.db.ExecContext(ctx, queryUpdateUserCurrency, currency, userId)
	if err != nil {
		return fmt.Errorf("failed to update currency: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
	}

	zap.L().Info("User currency updated", zap.String("user_id", userId), zap.String("currency", currency))
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	if err := row.Scan(&user.Id, &user.Username, &user.Name, &user.PasswordHash, &user.Currency, &user.CreatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}
