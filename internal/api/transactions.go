package api

import (
	"context"
	"strings"

	"finance-tracker-go/internal/events"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"go.uber.org/zap"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

var (
	listSortFields = map[string]bool{"date": true, "amount": true, "created_at": true}
	listOrders     = map[string]bool{"asc": true, "desc": true}
)

// optionalText drops blank optional text fields
func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *FinanceService) today() string {
	return s.now().Format(models.DateLayout)
}

// CreateTransaction records an income or expense and adjusts the account
// balance in the same unit of work.
func (s *FinanceService) CreateTransaction(ctx context.Context, userId string, req models.CreateTransactionRequest) (*models.Transaction, error) {
	if req.AccountId == "" || req.Amount == nil || req.Type == "" || req.Currency == "" {
		return nil, validationError("missing required fields: account_id, amount, type, currency")
	}
	if !req.Amount.IsPositive() {
		return nil, validationError("amount must be positive")
	}
	if err := validateTransactionType(req.Type); err != nil {
		return nil, err
	}
	if err := s.validateTransactionCurrency(req.Currency); err != nil {
		return nil, err
	}

	date := s.today()
	if req.Date != nil && required(*req.Date) {
		normalized, err := normalizeDate(*req.Date)
		if err != nil {
			return nil, err
		}
		date = normalized
	}

	transaction, err := s.store.CreateTransaction(ctx, store.CreateTransactionParams{
		UserId:      userId,
		AccountId:   req.AccountId,
		Amount:      *req.Amount,
		Description: optionalText(req.Description),
		Category:    optionalText(req.Category),
		Type:        req.Type,
		Currency:    req.Currency,
		Date:        date,
	})
	if err != nil {
		return nil, storeFailure(err, "create transaction",
			zap.String("user_id", userId),
			zap.String("account_id", req.AccountId))
	}

	s.publish(ctx, events.NewTransactionEvent(events.TypeTransactionCreated, transaction, transaction.CreatedAt))
	return transaction, nil
}

func (s *FinanceService) GetTransaction(ctx context.Context, userId, transactionId string) (*models.Transaction, error) {
	transaction, err := s.store.GetTransaction(ctx, userId, transactionId)
	if err != nil {
		return nil, storeFailure(err, "retrieve transaction", zap.String("transaction_id", transactionId))
	}
	return transaction, nil
}

// UpdateTransaction validates every present field before the store reverses
// the old balance effect and applies the new one.
func (s *FinanceService) UpdateTransaction(ctx context.Context, userId, transactionId string, patch models.TransactionPatch) (*models.Transaction, error) {
	if patch.IsEmpty() {
		return nil, validationError("no fields to update")
	}
	if patch.AccountId != nil && *patch.AccountId == "" {
		return nil, validationError("account_id cannot be empty")
	}
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return nil, validationError("amount must be positive")
	}
	if patch.Type != nil {
		if err := validateTransactionType(*patch.Type); err != nil {
			return nil, err
		}
	}
	if patch.Currency != nil {
		if err := s.validateTransactionCurrency(*patch.Currency); err != nil {
			return nil, err
		}
	}
	if patch.Date != nil {
		normalized, err := normalizeDate(*patch.Date)
		if err != nil {
			return nil, err
		}
		patch.Date = &normalized
	}

	transaction, err := s.store.UpdateTransaction(ctx, userId, transactionId, patch)
	if err != nil {
		return nil, storeFailure(err, "update transaction", zap.String("transaction_id", transactionId))
	}

	s.publish(ctx, events.NewTransactionEvent(events.TypeTransactionUpdated, transaction, s.now()))
	return transaction, nil
}

// DeleteTransaction archives the transaction and reverses its balance effect.
func (s *FinanceService) DeleteTransaction(ctx context.Context, userId, transactionId string) error {
	archived, err := s.store.DeleteTransaction(ctx, userId, transactionId)
	if err != nil {
		return storeFailure(err, "delete transaction", zap.String("transaction_id", transactionId))
	}

	s.publish(ctx, events.NewArchivedEvent(archived))
	return nil
}

// NormalizeListQuery applies listing defaults: limit 50 capped at 500,
// non-negative offset, date descending order. Unknown sort fields, orders
// and type filters fall back silently.
func NormalizeListQuery(query models.ListTransactionsQuery) models.ListTransactionsQuery {
	if query.Limit <= 0 {
		query.Limit = DefaultListLimit
	}
	if query.Limit > MaxListLimit {
		query.Limit = MaxListLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	query.Sort = strings.ToLower(query.Sort)
	if !listSortFields[query.Sort] {
		query.Sort = "date"
	}
	query.Order = strings.ToLower(query.Order)
	if !listOrders[query.Order] {
		query.Order = "desc"
	}
	if !isTransactionType(query.Filter.Type) {
		query.Filter.Type = ""
	}
	return query
}

func (s *FinanceService) ListTransactions(ctx context.Context, userId string, query models.ListTransactionsQuery) (*models.TransactionPage, error) {
	query = NormalizeListQuery(query)

	for _, bound := range []*string{&query.Filter.StartDate, &query.Filter.EndDate} {
		if *bound == "" {
			continue
		}
		normalized, err := normalizeDate(*bound)
		if err != nil {
			return nil, err
		}
		*bound = normalized
	}

	transactions, total, err := s.store.ListTransactions(ctx, userId, query)
	if err != nil {
		return nil, storeFailure(err, "retrieve transactions", zap.String("user_id", userId))
	}

	return &models.TransactionPage{
		Transactions: transactions,
		Pagination: models.Pagination{
			Total:   total,
			Limit:   query.Limit,
			Offset:  query.Offset,
			HasMore: query.Offset+query.Limit < total,
		},
	}, nil
}
