package events

import (
	"context"
	"encoding/json"
	"time"

	"finance-tracker-go/internal/models"

	"github.com/shopspring/decimal"
)

const (
	TypeTransactionCreated = "transaction.created"
	TypeTransactionUpdated = "transaction.updated"
	TypeTransactionDeleted = "transaction.deleted"
)

// Event describes one committed change to a transaction
type Event struct {
	Type          string          `json:"type"`
	UserId        string          `json:"user_id"`
	TransactionId string          `json:"transaction_id"`
	AccountId     string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func NewTransactionEvent(eventType string, transaction *models.Transaction, occurredAt time.Time) Event {
	return Event{
		Type:          eventType,
		UserId:        transaction.UserId,
		TransactionId: transaction.Id,
		AccountId:     transaction.AccountId,
		Amount:        transaction.Amount,
		Currency:      transaction.Currency,
		OccurredAt:    occurredAt.UTC(),
	}
}

// NewArchivedEvent describes the deletion of a transaction from its archive row
func NewArchivedEvent(archived *models.ArchivedTransaction) Event {
	return Event{
		Type:          TypeTransactionDeleted,
		UserId:        archived.UserId,
		TransactionId: archived.OriginalId,
		AccountId:     archived.AccountId,
		Amount:        archived.Amount,
		Currency:      archived.Currency,
		OccurredAt:    archived.ArchivedAt.UTC(),
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events after the change they describe has committed
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
