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

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker-go/internal/currency"
	"finance-tracker-go/internal/events"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/rates"
	"finance-tracker-go/internal/store"

	"go.uber.org/zap"
)

// RatesProvider returns the current exchange rate snapshot. It never fails.
type RatesProvider interface {
	Rates(ctx context.Context) rates.Snapshot
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// FinanceServiceConfig contains the dependencies of FinanceService
type FinanceServiceConfig struct {
	Store      store.FinanceStore
	Rates      RatesProvider
	Publisher  events.Publisher
	Tokens     TokenIssuer
	Currencies *currency.Registry
	BcryptCost int
	Now        func() time.Time
}

// FinanceService validates requests, drives the store and publishes events
// for committed changes.
type FinanceService struct {
	store      store.FinanceStore
	rates      RatesProvider
	publisher  events.Publisher
	tokens     TokenIssuer
	currencies *currency.Registry
	bcryptCost int
	now        func() time.Time
}

func NewFinanceService(cfg FinanceServiceConfig) *FinanceService {
	s := &FinanceService{
		store:      cfg.Store,
		rates:      cfg.Rates,
		publisher:  cfg.Publisher,
		tokens:     cfg.Tokens,
		currencies: cfg.Currencies,
		bcryptCost: cfg.BcryptCost,
		now:        cfg.Now,
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.currencies == nil {
		s.currencies = currency.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *FinanceService) HealthCheck(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (s *FinanceService) Currencies() *currency.Registry {
	return s.currencies
}

// publish delivers an event after commit. Failures are logged and never
// reach the caller.
func (s *FinanceService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		zap.L().Warn("Failed to publish event",
			zap.String("type", event.Type),
			zap.String("transaction_id", event.TransactionId),
			zap.Error(err))
	}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", store.ErrValidation, fmt.Sprintf(format, args...))
}

func isClassified(err error) bool {
	return errors.Is(err, store.ErrValidation) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrConflict) ||
		errors.Is(err, store.ErrUnauthorized)
}

// storeFailure passes classified errors through and replaces anything else
// with a generic message after logging the cause.
func storeFailure(err error, action string, fields ...zap.Field) error {
	if isClassified(err) {
		return err
	}
	zap.L().Error("Failed to "+action, append(fields, zap.Error(err))...)
	return fmt.Errorf("failed to %s", action)
}
