package database

import (
	"context"
	"errors"
	"testing"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"
)

func TestCreateUser_CreatesMainAccount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")

	if user.Currency != "RSD" {
		t.Errorf("Expected default currency RSD, got %s", user.Currency)
	}
	if account.Name != "Main Account" || account.Type != models.AccountTypeCash {
		t.Errorf("Unexpected default account: %+v", account)
	}
	if !account.Balance.IsZero() {
		t.Errorf("Expected zero balance, got %s", account.Balance.String())
	}

	accounts, err := service.GetAccounts(context.Background(), user.Id)
	if err != nil {
		t.Fatalf("GetAccounts failed: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Id != account.Id {
		t.Errorf("Expected only the default account, got %+v", accounts)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	createTestUser(t, service, "alice")

	_, _, err := service.CreateUser(context.Background(), store.CreateUserParams{
		Username: "alice", Name: "Other", PasswordHash: "hash",
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	users, err := service.GetUsers(context.Background())
	if err != nil {
		t.Fatalf("GetUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(users))
	}
}

func TestGetUser_Lookups(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, _ := createTestUser(t, service, "alice")

	byId, err := service.GetUserById(context.Background(), user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if byId.Username != "alice" || byId.PasswordHash != "hash" {
		t.Errorf("Unexpected user: %+v", byId)
	}

	if _, err := service.GetUserById(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := service.GetUserByUsername(context.Background(), "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserCurrency(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")

	if err := service.UpdateUserCurrency(context.Background(), user.Id, "EUR"); err != nil {
		t.Fatalf("UpdateUserCurrency failed: %v", err)
	}

	stored, err := service.GetUserById(context.Background(), user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if stored.Currency != "EUR" {
		t.Errorf("Expected EUR, got %s", stored.Currency)
	}

	// Existing accounts keep their own currency
	existing, err := service.GetAccount(context.Background(), user.Id, account.Id)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if existing.Currency != "RSD" {
		t.Errorf("Expected account currency RSD, got %s", existing.Currency)
	}

	if err := service.UpdateUserCurrency(context.Background(), "missing", "EUR"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
