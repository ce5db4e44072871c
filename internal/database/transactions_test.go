package database

import (
	"context"
	"errors"
	"testing"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"github.com/shopspring/decimal"
)

func countArchived(t *testing.T, service *Service, userId string) int {
	t.Helper()

	archived, err := service.GetArchivedTransactions(context.Background(), userId, 100, 0)
	if err != nil {
		t.Fatalf("GetArchivedTransactions failed: %v", err)
	}
	return len(archived)
}

func TestCreateTransaction_Expense(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, _ := createTestUser(t, service, "alice")
	account := createTestAccount(t, service, user.Id, "RSD", decimal.NewFromInt(100))

	transaction := createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeExpense, "30", "2024-05-01")

	if transaction.AccountName != account.Name {
		t.Errorf("Expected account name %s, got %s", account.Name, transaction.AccountName)
	}
	if transaction.AccountType != models.AccountTypeBank {
		t.Errorf("Expected account type %s, got %s", models.AccountTypeBank, transaction.AccountType)
	}
	expectBalance(t, service, user.Id, account.Id, "70")
}

func TestCreateTransaction_IncomeKeepsPrecision(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")

	createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "0.1", "2024-05-01")
	createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "0.2", "2024-05-01")

	expectBalance(t, service, user.Id, account.Id, "0.3")
}

func TestCreateTransaction_NegativeBalanceAllowed(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")

	createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeExpense, "25.50", "2024-05-01")

	expectBalance(t, service, user.Id, account.Id, "-25.5")
}

func TestCreateTransaction_ForeignAccountRejected(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	alice, _ := createTestUser(t, service, "alice")
	bob, bobAccount := createTestUser(t, service, "bob")

	_, err := service.CreateTransaction(context.Background(), store.CreateTransactionParams{
		UserId:    alice.Id,
		AccountId: bobAccount.Id,
		Amount:    decimal.NewFromInt(10),
		Type:      models.TransactionTypeIncome,
		Currency:  "RSD",
		Date:      "2024-05-01",
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	expectBalance(t, service, bob.Id, bobAccount.Id, "0")
	_, total, err := service.ListTransactions(context.Background(), alice.Id, models.ListTransactionsQuery{Limit: 10})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected no transactions, got %d", total)
	}
}

func TestCreateTransaction_NonPositiveAmount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")

	for _, amount := range []string{"0", "-5"} {
		_, err := service.CreateTransaction(context.Background(), store.CreateTransactionParams{
			UserId:    user.Id,
			AccountId: account.Id,
			Amount:    decimal.RequireFromString(amount),
			Type:      models.TransactionTypeIncome,
			Currency:  "RSD",
			Date:      "2024-05-01",
		})
		if !errors.Is(err, store.ErrValidation) {
			t.Errorf("Amount %s: expected ErrValidation, got %v", amount, err)
		}
	}
	expectBalance(t, service, user.Id, account.Id, "0")
}

func TestDeleteTransaction_ArchivesAndRestoresBalance(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, _ := createTestUser(t, service, "alice")
	account := createTestAccount(t, service, user.Id, "EUR", decimal.NewFromInt(100))

	transaction := createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeExpense, "30", "2024-05-01")
	expectBalance(t, service, user.Id, account.Id, "70")

	archived, err := service.DeleteTransaction(context.Background(), user.Id, transaction.Id)
	if err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}

	expectBalance(t, service, user.Id, account.Id, "100")

	if archived.OriginalId != transaction.Id {
		t.Errorf("Expected original id %s, got %s", transaction.Id, archived.OriginalId)
	}
	if !archived.Amount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected archived amount 30, got %s", archived.Amount.String())
	}

	history, err := service.GetArchivedTransactions(context.Background(), user.Id, 10, 0)
	if err != nil {
		t.Fatalf("GetArchivedTransactions failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 archived row, got %d", len(history))
	}
	if history[0].Type != models.TransactionTypeExpense || history[0].Date != "2024-05-01" {
		t.Errorf("Archived row does not match original: %+v", history[0])
	}

	if _, err := service.GetTransaction(context.Background(), user.Id, transaction.Id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected deleted transaction to be gone, got %v", err)
	}
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	alice, aliceAccount := createTestUser(t, service, "alice")
	bob, _ := createTestUser(t, service, "bob")

	transaction := createTestTransaction(t, service, alice.Id, aliceAccount.Id, models.TransactionTypeIncome, "10", "2024-05-01")

	if _, err := service.DeleteTransaction(context.Background(), bob.Id, transaction.Id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	expectBalance(t, service, alice.Id, aliceAccount.Id, "10")
	if n := countArchived(t, service, alice.Id); n != 0 {
		t.Errorf("Expected no archived rows, got %d", n)
	}
}

func TestDeleteTransaction_RollsBackOnFailure(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")
	transaction := createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "40", "2024-05-01")

	_, err := service.db.Exec(`CREATE TRIGGER fail_delete BEFORE DELETE ON transactions
		BEGIN SELECT RAISE(ABORT, 'delete blocked'); END`)
	if err != nil {
		t.Fatalf("Failed to create trigger: %v", err)
	}

	if _, err := service.DeleteTransaction(context.Background(), user.Id, transaction.Id); err == nil {
		t.Fatal("Expected delete to fail")
	}

	expectBalance(t, service, user.Id, account.Id, "40")
	if n := countArchived(t, service, user.Id); n != 0 {
		t.Errorf("Expected archive insert to be rolled back, got %d rows", n)
	}
	if _, err := service.GetTransaction(context.Background(), user.Id, transaction.Id); err != nil {
		t.Errorf("Expected transaction to survive, got %v", err)
	}
}

func TestUpdateTransaction_TypeAndAmount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")
	transaction := createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "100", "2024-05-01")
	expectBalance(t, service, user.Id, account.Id, "100")

	updated, err := service.UpdateTransaction(context.Background(), user.Id, transaction.Id, models.TransactionPatch{
		Type:   strPtr(models.TransactionTypeExpense),
		Amount: decimalPtr("40"),
	})
	if err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}

	if updated.Type != models.TransactionTypeExpense {
		t.Errorf("Expected type expense, got %s", updated.Type)
	}
	expectBalance(t, service, user.Id, account.Id, "-40")
}

func TestUpdateTransaction_MovesBetweenAccounts(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, source := createTestUser(t, service, "alice")
	target := createTestAccount(t, service, user.Id, "RSD", decimal.NewFromInt(10))

	transaction := createTestTransaction(t, service, user.Id, source.Id, models.TransactionTypeExpense, "25", "2024-05-01")
	expectBalance(t, service, user.Id, source.Id, "-25")

	updated, err := service.UpdateTransaction(context.Background(), user.Id, transaction.Id, models.TransactionPatch{
		AccountId: &target.Id,
	})
	if err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}

	if updated.AccountId != target.Id {
		t.Errorf("Expected account %s, got %s", target.Id, updated.AccountId)
	}
	expectBalance(t, service, user.Id, source.Id, "0")
	expectBalance(t, service, user.Id, target.Id, "-15")
}

func TestUpdateTransaction_MetadataOnlyKeepsBalance(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")
	transaction := createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "12.34", "2024-05-01")

	updated, err := service.UpdateTransaction(context.Background(), user.Id, transaction.Id, models.TransactionPatch{
		Description: strPtr("salary"),
		Category:    strPtr("Work"),
		Date:        strPtr("2024-05-02"),
	})
	if err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}

	if updated.Description == nil || *updated.Description != "salary" {
		t.Errorf("Expected description salary, got %v", updated.Description)
	}
	if updated.Date != "2024-05-02" {
		t.Errorf("Expected date 2024-05-02, got %s", updated.Date)
	}
	expectBalance(t, service, user.Id, account.Id, "12.34")
}

func TestUpdateTransaction_Rejected(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	alice, aliceAccount := createTestUser(t, service, "alice")
	_, bobAccount := createTestUser(t, service, "bob")
	transaction := createTestTransaction(t, service, alice.Id, aliceAccount.Id, models.TransactionTypeIncome, "50", "2024-05-01")

	tests := []struct {
		name    string
		patch   models.TransactionPatch
		wantErr error
	}{
		{"empty patch", models.TransactionPatch{}, store.ErrValidation},
		{"zero amount", models.TransactionPatch{Amount: decimalPtr("0")}, store.ErrValidation},
		{"bad type", models.TransactionPatch{Type: strPtr("transfer")}, store.ErrValidation},
		{"foreign account", models.TransactionPatch{AccountId: &bobAccount.Id}, store.ErrNotFound},
		{"unknown account", models.TransactionPatch{AccountId: strPtr("missing")}, store.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.UpdateTransaction(context.Background(), alice.Id, transaction.Id, tt.patch)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			expectBalance(t, service, alice.Id, aliceAccount.Id, "50")
		})
	}
}

func TestUpdateTransaction_RollsBackOnFailure(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")
	transaction := createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "100", "2024-05-01")

	_, err := service.db.Exec(`CREATE TRIGGER fail_update BEFORE UPDATE ON transactions
		BEGIN SELECT RAISE(ABORT, 'update blocked'); END`)
	if err != nil {
		t.Fatalf("Failed to create trigger: %v", err)
	}

	_, err = service.UpdateTransaction(context.Background(), user.Id, transaction.Id, models.TransactionPatch{
		Amount: decimalPtr("10"),
	})
	if err == nil {
		t.Fatal("Expected update to fail")
	}

	// The reversal of the old amount must not survive the failed update
	expectBalance(t, service, user.Id, account.Id, "100")
}

func TestBalanceConservation(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	user, _ := createTestUser(t, service, "alice")
	first := createTestAccount(t, service, user.Id, "RSD", decimal.RequireFromString("1000.50"))
	second := createTestAccount(t, service, user.Id, "RSD", decimal.Zero)

	a := createTestTransaction(t, service, user.Id, first.Id, models.TransactionTypeIncome, "200", "2024-05-01")
	b := createTestTransaction(t, service, user.Id, first.Id, models.TransactionTypeExpense, "75.25", "2024-05-02")
	c := createTestTransaction(t, service, user.Id, second.Id, models.TransactionTypeExpense, "10", "2024-05-03")
	createTestTransaction(t, service, user.Id, second.Id, models.TransactionTypeIncome, "3.33", "2024-05-04")

	if _, err := service.UpdateTransaction(ctx, user.Id, a.Id, models.TransactionPatch{Amount: decimalPtr("150")}); err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}
	if _, err := service.UpdateTransaction(ctx, user.Id, b.Id, models.TransactionPatch{AccountId: &second.Id}); err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}
	if _, err := service.DeleteTransaction(ctx, user.Id, c.Id); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}

	// first: 1000.50 + 150 ; second: 0 - 75.25 + 3.33
	expectBalance(t, service, user.Id, first.Id, "1150.5")
	expectBalance(t, service, user.Id, second.Id, "-71.92")

	for _, account := range []*models.Account{first, second} {
		if err := service.ReconcileAccountBalance(ctx, user.Id, account.Id); err != nil {
			t.Errorf("Reconciliation failed for %s: %v", account.Id, err)
		}
	}
}

func TestListTransactions_FiltersAndPagination(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	user, account := createTestUser(t, service, "alice")
	other := createTestAccount(t, service, user.Id, "EUR", decimal.Zero)

	createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "500", "2024-01-10")
	createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeExpense, "20", "2024-02-10")
	createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeExpense, "5", "2024-03-10")
	createTestTransaction(t, service, user.Id, other.Id, models.TransactionTypeExpense, "300", "2024-04-10")

	page, total, err := service.ListTransactions(ctx, user.Id, models.ListTransactionsQuery{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 4 || len(page) != 2 {
		t.Fatalf("Expected 2 of 4 rows, got %d of %d", len(page), total)
	}
	if page[0].Date != "2024-04-10" || page[1].Date != "2024-03-10" {
		t.Errorf("Expected date descending by default, got %s, %s", page[0].Date, page[1].Date)
	}

	page, total, err = service.ListTransactions(ctx, user.Id, models.ListTransactionsQuery{
		Filter: models.TransactionFilter{Type: models.TransactionTypeExpense, AccountId: account.Id},
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 2 || len(page) != 2 {
		t.Errorf("Expected 2 filtered rows, got %d (total %d)", len(page), total)
	}

	page, _, err = service.ListTransactions(ctx, user.Id, models.ListTransactionsQuery{
		Filter: models.TransactionFilter{StartDate: "2024-02-01", EndDate: "2024-03-31"},
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("Expected 2 rows in date range, got %d", len(page))
	}

	page, _, err = service.ListTransactions(ctx, user.Id, models.ListTransactionsQuery{Limit: 10, Sort: "amount", Order: "asc"})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	// Numeric, not lexicographic ordering
	expected := []string{"5", "20", "300", "500"}
	for i, transaction := range page {
		if !transaction.Amount.Equal(decimal.RequireFromString(expected[i])) {
			t.Errorf("Position %d: expected %s, got %s", i, expected[i], transaction.Amount.String())
		}
	}
}

func TestListTransactions_UnknownSortFallsBack(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")
	createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "1", "2024-01-01")
	createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "2", "2024-06-01")

	page, _, err := service.ListTransactions(context.Background(), user.Id, models.ListTransactionsQuery{
		Limit: 10,
		Sort:  "amount; DROP TABLE transactions",
		Order: "sideways",
	})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(page) != 2 || page[0].Date != "2024-06-01" {
		t.Errorf("Expected date descending fallback, got %+v", page)
	}
}

func TestGetMostRecentTransactionTime(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user, account := createTestUser(t, service, "alice")

	latest, err := service.GetMostRecentTransactionTime(context.Background(), user.Id)
	if err != nil {
		t.Fatalf("GetMostRecentTransactionTime failed: %v", err)
	}
	if !latest.IsZero() {
		t.Errorf("Expected zero time without transactions, got %v", latest)
	}

	transaction := createTestTransaction(t, service, user.Id, account.Id, models.TransactionTypeIncome, "1", "2024-01-01")

	latest, err = service.GetMostRecentTransactionTime(context.Background(), user.Id)
	if err != nil {
		t.Fatalf("GetMostRecentTransactionTime failed: %v", err)
	}
	if !latest.Equal(transaction.CreatedAt) {
		t.Errorf("Expected %v, got %v", transaction.CreatedAt, latest)
	}
}
