package api

import (
	"context"
	"strings"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"go.uber.org/zap"
)

func (s *FinanceService) CreateCategory(ctx context.Context, userId string, req models.CreateCategoryRequest) (*models.Category, error) {
	if !required(req.Name) || req.Type == "" {
		return nil, validationError("name and type are required")
	}
	if !isTransactionType(req.Type) {
		return nil, validationError(`type must be either "expense" or "income"`)
	}

	category, err := s.store.CreateCategory(ctx, store.CreateCategoryParams{
		UserId:      userId,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Type:        req.Type,
	})
	if err != nil {
		return nil, storeFailure(err, "create category", zap.String("user_id", userId))
	}
	return category, nil
}

// ListCategories returns the user's categories, narrowed to one type when
// categoryType is set. A type no category has yields an empty list.
func (s *FinanceService) ListCategories(ctx context.Context, userId, categoryType string) ([]models.Category, error) {
	categories, err := s.store.GetCategories(ctx, userId, categoryType)
	if err != nil {
		return nil, storeFailure(err, "retrieve categories", zap.String("user_id", userId))
	}
	return categories, nil
}

func (s *FinanceService) GetCategory(ctx context.Context, userId, categoryId string) (*models.Category, error) {
	category, err := s.store.GetCategory(ctx, userId, categoryId)
	if err != nil {
		return nil, storeFailure(err, "retrieve category", zap.String("category_id", categoryId))
	}
	return category, nil
}

func (s *FinanceService) UpdateCategory(ctx context.Context, userId, categoryId string, patch models.CategoryPatch) (*models.Category, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}

	category, err := s.store.UpdateCategory(ctx, userId, categoryId, patch)
	if err != nil {
		return nil, storeFailure(err, "update category", zap.String("category_id", categoryId))
	}
	return category, nil
}

func (s *FinanceService) DeleteCategory(ctx context.Context, userId, categoryId string) error {
	if err := s.store.DeleteCategory(ctx, userId, categoryId); err != nil {
		return storeFailure(err, "delete category", zap.String("category_id", categoryId))
	}
	return nil
}
