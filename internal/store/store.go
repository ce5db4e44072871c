package store

import (
	"context"
	"errors"
	"time"

	"finance-tracker-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared by every layer. Callers classify with errors.Is;
// anything that matches none of them is an internal store failure.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// CreateUserParams contains the parameters for registering a user.
type CreateUserParams struct {
	Username     string
	Name         string
	PasswordHash string
	Currency     string
}

// CreateAccountParams contains the parameters for opening an account.
type CreateAccountParams struct {
	UserId         string
	Name           string
	Type           string
	Currency       string
	InitialBalance decimal.Decimal
}

// CreateCategoryParams contains the parameters for a new category.
type CreateCategoryParams struct {
	UserId      string
	Name        string
	Description *string
	Type        string
}

// CreateTransactionParams contains a validated transaction. Amount is positive.
type CreateTransactionParams struct {
	UserId      string
	AccountId   string
	Amount      decimal.Decimal
	Description *string
	Category    *string
	Type        string
	Currency    string
	Date        string
}

// StatsWindow bounds the stats aggregation. Zero From means no lower bound;
// a non-empty On restricts to one calendar day.
type StatsWindow struct {
	From string
	On   string
}

// FinanceStore defines the persistence contract of the tracker.
type FinanceStore interface {
	// --- Users ---
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, *models.Account, error)
	UpdateUserCurrency(ctx context.Context, userId, currency string) error

	// --- Accounts ---
	CreateAccount(ctx context.Context, params CreateAccountParams) (*models.Account, error)
	GetAccounts(ctx context.Context, userId string) ([]models.Account, error)
	GetAccount(ctx context.Context, userId, accountId string) (*models.Account, error)
	UpdateAccount(ctx context.Context, userId, accountId string, patch models.AccountPatch) (*models.Account, error)
	DeleteAccount(ctx context.Context, userId, accountId string) error
	ReconcileAccountBalance(ctx context.Context, userId, accountId string) error

	// --- Categories ---
	CreateCategory(ctx context.Context, params CreateCategoryParams) (*models.Category, error)
	GetCategories(ctx context.Context, userId, categoryType string) ([]models.Category, error)
	GetCategory(ctx context.Context, userId, categoryId string) (*models.Category, error)
	UpdateCategory(ctx context.Context, userId, categoryId string, patch models.CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, userId, categoryId string) error

	// --- Transactions ---
	CreateTransaction(ctx context.Context, params CreateTransactionParams) (*models.Transaction, error)
	GetTransaction(ctx context.Context, userId, transactionId string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userId, transactionId string, patch models.TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userId, transactionId string) (*models.ArchivedTransaction, error)
	ListTransactions(ctx context.Context, userId string, query models.ListTransactionsQuery) ([]models.Transaction, int, error)
	GetArchivedTransactions(ctx context.Context, userId string, limit, offset int) ([]models.ArchivedTransaction, error)

	// --- Stats ---
	GetTransactionTotals(ctx context.Context, userId string, window StatsWindow) ([]models.TypeCurrencyTotal, error)
	GetBalancesByCurrency(ctx context.Context, userId string) ([]models.CurrencyBalance, error)
	GetMostRecentTransactionTime(ctx context.Context, userId string) (time.Time, error)

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}
