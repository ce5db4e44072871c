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

var errDuplicateCategory = fmt.Errorf("%w: category name already exists for this type", store.ErrConflict)

func (s *Service) CreateCategory(ctx context.Context, params store.CreateCategoryParams) (*models.Category, error) {
	category := &models.Category{
		Id:          uuid.New().String(),
		UserId:      params.UserId,
		Name:        params.Name,
		Description: params.Description,
		Type:        params.Type,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, queryInsertCategory,
		category.Id, category.UserId, category.Name, category.Description, category.Type, category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errDuplicateCategory
		}
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	zap.L().Info("Category created",
		zap.String("user_id", category.UserId),
		zap.String("category_id", category.Id),
		zap.String("name", category.Name),
		zap.String("type", category.Type))

	return category, nil
}

// GetCategories lists a user's categories, optionally narrowed to one type.
func (s *Service) GetCategories(ctx context.Context, userId, categoryType string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, queryGetCategories, userId, categoryType, categoryType)
	if err != nil {
		zap.L().Error("Failed to query categories", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query categories: %w", err)
	}
	defer closeRows(rows)

	categories := []models.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan category row: %w", err)
		}
		categories = append(categories, *category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

func (s *Service) GetCategory(ctx context.Context, userId, categoryId string) (*models.Category, error) {
	return getCategory(ctx, s.db, userId, categoryId)
}

func getCategory(ctx context.Context, q queryer, userId, categoryId string) (*models.Category, error) {
	category, err := scanCategory(q.QueryRowContext(ctx, queryGetCategory, categoryId, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: category not found", store.ErrNotFound)
		}
		return nil, fmt.Errorf("unable to query category: %w", err)
	}
	return category, nil
}

// UpdateCategory changes name and/or description. The type is fixed and a
// rename may not collide with another category of the same type.
func (s *Service) UpdateCategory(ctx context.Context, userId, categoryId string, patch models.CategoryPatch) (*models.Category, error) {
	assignments, err := resolveCategoryPatch(patch)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	current, err := getCategory(ctx, tx, userId, categoryId)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		var duplicateId string
		err := tx.QueryRowContext(ctx, queryFindDuplicateCategory, userId, *patch.Name, current.Type, categoryId).Scan(&duplicateId)
		if err == nil {
			return nil, errDuplicateCategory
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to check for duplicate category: %w", err)
		}
	}

	query, args := buildUpdate("categories", assignments, "id = ? AND user_id = ?", categoryId, userId)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, errDuplicateCategory
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	updated, err := getCategory(ctx, tx, userId, categoryId)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Category updated", zap.String("category_id", categoryId), zap.Int("fields", len(assignments)))
	return updated, nil
}

// DeleteCategory removes a category whose name no transaction of the user
// carries.
func (s *Service) DeleteCategory(ctx context.Context, userId, categoryId string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	category, err := getCategory(ctx, tx, userId, categoryId)
	if err != nil {
		return err
	}

	var count int
	if err := tx.QueryRowContext(ctx, queryCountCategoryTransactions, userId, category.Name).Scan(&count); err != nil {
		return fmt.Errorf("failed to count category transactions: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: cannot delete category that is used by %d transactions", store.ErrConflict, count)
	}

	if _, err := tx.ExecContext(ctx, queryDeleteCategory, categoryId, userId); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Category deleted", zap.String("user_id", userId), zap.String("category_id", categoryId))
	return nil
}
