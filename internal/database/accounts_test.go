package database

import (
	"context"
	"errors"
	"testing"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestCreateAccount_InitialBalance(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, _ := createTestUser(t, service, "alice")
	account := createTestAccount(t, service, user.Id, "USD", decimal.RequireFromString("250.75"))

	stored, err := service.GetAccount(context.Background(), user.Id, account.Id)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !stored.Balance.Equal(stored.InitialBalance) || !stored.Balance.Equal(decimal.RequireFromString("250.75")) {
		t.Errorf("Expected balance and initial balance 250.75, got %s / %s",
			stored.Balance.String(), stored.InitialBalance.String())
	}
	if stored.Currency != "USD" {
		t.Errorf("Expected USD, got %s", stored.Currency)
	}
}

func TestGetAccounts_ScopedToUser(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	alice, _ := createTestUser(t, service, "alice")
	bob, _ := createTestUser(t, service, "bob")
	createTestAccount(t, service, alice.Id, "EUR", decimal.Zero)

	accounts, err := service.GetAccounts(context.Background(), alice.Id)
	if err != nil {
		t.Fatalf("GetAccounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Errorf("Expected 2 accounts for alice, got %d", len(accounts))
	}

	accounts, err = service.GetAccounts(context.Background(), bob.Id)
	if err != nil {
		t.Fatalf("GetAccounts failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected 1 account for bob, got %d", len(accounts))
	}
}

func TestUpdateAccount_RenameAndRetype(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")

	updated, err := service.UpdateAccount(context.Background(), user.Id, account.Id, models.AccountPatch{
		Name: strPtr("Wallet"),
		Type: strPtr(models.AccountTypeCrypto),
	})
	if err != nil {
		t.Fatalf("UpdateAccount failed: %v", err)
	}
	if updated.Name != "Wallet" || updated.Type != models.AccountTypeCrypto {
		t.Errorf("Unexpected account after update: %+v", updated)
	}
}

func TestUpdateAccount_CurrencyIsImmutable(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")

	_, err := service.UpdateAccount(context.Background(), user.Id, account.Id, models.AccountPatch{
		Name:     strPtr("Renamed"),
		Currency: strPtr("EUR"),
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}

	stored, err := service.GetAccount(context.Background(), user.Id, account.Id)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if stored.Name != account.Name || stored.Currency != account.Currency {
		t.Errorf("Expected account unchanged, got %+v", stored)
	}

	// Repeating the current currency is accepted and changes nothing
	same, err := service.UpdateAccount(context.Background(), user.Id, account.Id, models.AccountPatch{
		Currency: strPtr(account.Currency),
	})
	if err != nil {
		t.Fatalf("UpdateAccount with same currency failed: %v", err)
	}
	if same.Name != account.Name {
		t.Errorf("Expected name %s, got %s", account.Name, same.Name)
	}
}

func TestUpdateAccount_EmptyPatch(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")

	_, err := service.UpdateAccount(context.Background(), user.Id, account.Id, models.AccountPatch{})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
}

func TestDeleteAccount_RefusedWithTransactions(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")
	transaction := createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "5", "2024-05-01")

	err := service.DeleteAccount(context.Background(), user.Id, account.Id)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	if _, err := service.GetAccount(context.Background(), user.Id, account.Id); err != nil {
		t.Errorf("Expected account to survive, got %v", err)
	}

	if _, err := service.DeleteTransaction(context.Background(), user.Id, transaction.Id); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	if err := service.DeleteAccount(context.Background(), user.Id, account.Id); err != nil {
		t.Fatalf("Expected delete to succeed once empty, got %v", err)
	}
	if _, err := service.GetAccount(context.Background(), user.Id, account.Id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteAccount_OtherUser(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	alice, aliceAccount := createTestUser(t, service, "alice")
	bob, _ := createTestUser(t, service, "bob")

	if err := service.DeleteAccount(context.Background(), bob.Id, aliceAccount.Id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := service.GetAccount(context.Background(), alice.Id, aliceAccount.Id); err != nil {
		t.Errorf("Expected account to survive, got %v", err)
	}
}

func TestReconcileAccountBalance_DetectsDrift(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")
	createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "10", "2024-05-01")

	if err := service.ReconcileAccountBalance(context.Background(), user.Id, account.Id); err != nil {
		t.Fatalf("Expected consistent balance, got %v", err)
	}

	if _, err := service.db.Exec(`UPDATE accounts SET balance = '11' WHERE id = ?`, account.Id); err != nil {
		t.Fatalf("Failed to corrupt balance: %v", err)
	}

	if err := service.ReconcileAccountBalance(context.Background(), user.Id, account.Id); err == nil {
		t.Error("Expected reconciliation to detect mismatch")
	}
}
