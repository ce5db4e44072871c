package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finance-tracker-go/internal/auth"
	"finance-tracker-go/internal/currency"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"go.uber.org/zap"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", store.ErrUnauthorized)

func toProfile(user *models.User) models.UserProfile {
	return models.UserProfile{
		Id:       user.Id,
		Username: user.Username,
		Name:     user.Name,
		Currency: user.Currency,
	}
}

// Register creates a user with a default account and returns a signed token.
func (s *FinanceService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if !required(username) || !required(req.Name) || req.Password == "" {
		return nil, validationError("username, name, and password are required")
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, storeFailure(err, "hash password", zap.String("username", username))
	}

	user, account, err := s.store.CreateUser(ctx, store.CreateUserParams{
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Currency:     currency.Base,
	})
	if err != nil {
		return nil, storeFailure(err, "create user", zap.String("username", username))
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, storeFailure(err, "issue token", zap.String("user_id", user.Id))
	}

	zap.L().Info("User registered",
		zap.String("user_id", user.Id),
		zap.String("username", user.Username),
		zap.String("default_account_id", account.Id))

	return &models.AuthResponse{
		Message: "User created successfully",
		User:    toProfile(user),
		Token:   token,
	}, nil
}

// Login exchanges credentials for a signed token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *FinanceService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if !required(req.Username) || req.Password == "" {
		return nil, validationError("username and password are required")
	}

	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, storeFailure(err, "look up user", zap.String("username", req.Username))
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, storeFailure(err, "verify password", zap.String("user_id", user.Id))
	}
	if !ok {
		zap.L().Info("Rejected login", zap.String("user_id", user.Id))
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, storeFailure(err, "issue token", zap.String("user_id", user.Id))
	}

	return &models.AuthResponse{
		Message: "Login successful",
		User:    toProfile(user),
		Token:   token,
	}, nil
}

func (s *FinanceService) GetProfile(ctx context.Context, userId string) (*models.UserProfile, error) {
	user, err := s.store.GetUserById(ctx, userId)
	if err != nil {
		return nil, storeFailure(err, "retrieve user", zap.String("user_id", userId))
	}
	profile := toProfile(user)
	return &profile, nil
}

func (s *FinanceService) GetCurrency(ctx context.Context, userId string) (*models.CurrencyPreference, error) {
	user, err := s.store.GetUserById(ctx, userId)
	if err != nil {
		return nil, storeFailure(err, "retrieve user", zap.String("user_id", userId))
	}
	return &models.CurrencyPreference{Currency: user.Currency}, nil
}

// UpdateCurrency changes the preferred display currency. Existing accounts
// keep their own currency.
func (s *FinanceService) UpdateCurrency(ctx context.Context, userId, code string) (*models.CurrencyPreference, error) {
	if err := s.validateAccountCurrency(code); err != nil {
		return nil, err
	}
	if err := s.store.UpdateUserCurrency(ctx, userId, code); err != nil {
		return nil, storeFailure(err, "update currency", zap.String("user_id", userId))
	}
	return &models.CurrencyPreference{Currency: code}, nil
}

// GetExchangeRates exposes the cached rate snapshot. It never fails.
func (s *FinanceService) GetExchangeRates(ctx context.Context) *models.ExchangeRatesResponse {
	snapshot := s.rates.Rates(ctx)

	response := &models.ExchangeRatesResponse{
		Base:   currency.Base,
		Rates:  snapshot.Rates,
		Source: snapshot.Source,
	}
	if !snapshot.FetchedAt.IsZero() {
		fetchedAt := snapshot.FetchedAt
		response.LastUpdated = &fetchedAt
	}
	return response
}
