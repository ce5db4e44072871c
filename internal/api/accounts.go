package api

import (
	"context"
	"strings"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *FinanceService) CreateAccount(ctx context.Context, userId string, req models.CreateAccountRequest) (*models.Account, error) {
	if !required(req.Name) || req.Type == "" || req.Currency == "" {
		return nil, validationError("name, type, and currency are required")
	}
	if err := validateAccountType(req.Type); err != nil {
		return nil, err
	}
	if err := s.validateAccountCurrency(req.Currency); err != nil {
		return nil, err
	}

	initial := decimal.Zero
	if req.Balance != nil {
		initial = *req.Balance
	}

	account, err := s.store.CreateAccount(ctx, store.CreateAccountParams{
		UserId:         userId,
		Name:           strings.TrimSpace(req.Name),
		Type:           req.Type,
		Currency:       req.Currency,
		InitialBalance: initial,
	})
	if err != nil {
		return nil, storeFailure(err, "create account", zap.String("user_id", userId))
	}
	return account, nil
}

func (s *FinanceService) ListAccounts(ctx context.Context, userId string) ([]models.Account, error) {
	accounts, err := s.store.GetAccounts(ctx, userId)
	if err != nil {
		return nil, storeFailure(err, "retrieve accounts", zap.String("user_id", userId))
	}
	return accounts, nil
}

func (s *FinanceService) GetAccount(ctx context.Context, userId, accountId string) (*models.Account, error) {
	account, err := s.store.GetAccount(ctx, userId, accountId)
	if err != nil {
		return nil, storeFailure(err, "retrieve account", zap.String("account_id", accountId))
	}
	return account, nil
}

// UpdateAccount renames or retypes an account. The currency may be repeated
// but not changed.
func (s *FinanceService) UpdateAccount(ctx context.Context, userId, accountId string, patch models.AccountPatch) (*models.Account, error) {
	if patch.Name == nil && patch.Type == nil && patch.Currency == nil {
		return nil, validationError("no fields to update")
	}
	if patch.Name != nil {
		if !required(*patch.Name) {
			return nil, validationError("name cannot be empty")
		}
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if patch.Type != nil {
		if err := validateAccountType(*patch.Type); err != nil {
			return nil, err
		}
	}
	if patch.Currency != nil {
		if err := s.validateAccountCurrency(*patch.Currency); err != nil {
			return nil, err
		}
	}

	account, err := s.store.UpdateAccount(ctx, userId, accountId, patch)
	if err != nil {
		return nil, storeFailure(err, "update account", zap.String("account_id", accountId))
	}
	return account, nil
}

func (s *FinanceService) DeleteAccount(ctx context.Context, userId, accountId string) error {
	if err := s.store.DeleteAccount(ctx, userId, accountId); err != nil {
		return storeFailure(err, "delete account", zap.String("account_id", accountId))
	}
	return nil
}
