package api

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"finance-tracker-go/internal/auth"
	"finance-tracker-go/internal/currency"
	"finance-tracker-go/internal/database"
	"finance-tracker-go/internal/events"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/rates"
	"finance-tracker-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)

type staticRates struct {
	snapshot rates.Snapshot
}

func (r staticRates) Rates(context.Context) rates.Snapshot {
	return r.snapshot
}

type recordingPublisher struct {
	mutex  sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	var types []string
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type testEnv struct {
	service   *FinanceService
	db        *database.Service
	tokens    *auth.TokenIssuer
	publisher *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:          filepath.Join(t.TempDir(), "api_test.db"),
		MaxOpenConns:  4,
		MaxIdleConns:  2,
		PingTimeout:   5 * time.Second,
		BusyTimeoutMs: 5000,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	service := NewFinanceService(FinanceServiceConfig{
		Store: db,
		Rates: staticRates{snapshot: rates.Snapshot{
			Rates: currency.Rates{
				"EUR": decimal.RequireFromString("117.5"),
				"USD": decimal.RequireFromString("108"),
			},
			FetchedAt: testNow.Add(-time.Minute),
			Source:    rates.SourceUpstream,
		}},
		Publisher:  publisher,
		Tokens:     tokens,
		BcryptCost: bcrypt.MinCost,
		Now:        func() time.Time { return testNow },
	})

	return &testEnv{service: service, db: db, tokens: tokens, publisher: publisher}
}

// register creates a user and returns its id and default account id
func (e *testEnv) register(t *testing.T, username string) (string, string) {
	t.Helper()

	resp, err := e.service.Register(context.Background(), models.RegisterRequest{
		Username: username,
		Name:     "Test " + username,
		Password: "secret",
	})
	require.NoError(t, err)

	accounts, err := e.service.ListAccounts(context.Background(), resp.User.Id)
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	return resp.User.Id, accounts[0].Id
}

func (e *testEnv) createTransaction(t *testing.T, userId, accountId, transactionType, amount, code, date string) *models.Transaction {
	t.Helper()

	value := decimal.RequireFromString(amount)
	transaction, err := e.service.CreateTransaction(context.Background(), userId, models.CreateTransactionRequest{
		AccountId: accountId,
		Amount:    &value,
		Type:      transactionType,
		Currency:  code,
		Date:      &date,
	})
	require.NoError(t, err)
	return transaction
}

func strPtr(s string) *string {
	return &s
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.service.HealthCheck(context.Background()))

	env.db.Close()
	require.Error(t, env.service.HealthCheck(context.Background()))
}

func TestStoreFailure_HidesUnclassifiedErrors(t *testing.T) {
	err := storeFailure(errors.New("disk I/O error"), "retrieve accounts")
	require.EqualError(t, err, "failed to retrieve accounts")
	require.False(t, isClassified(err))

	classified := validationError("bad input %d", 7)
	err = storeFailure(classified, "anything")
	require.ErrorIs(t, err, store.ErrValidation)
	require.EqualError(t, err, "validation failed: bad input 7")
}
