package api

import (
	"strings"
	"time"

	"finance-tracker-go/internal/models"
)

var accountTypes = map[string]bool{
	models.AccountTypeCash:   true,
	models.AccountTypeBank:   true,
	models.AccountTypeCrypto: true,
}

func isTransactionType(value string) bool {
	return value == models.TransactionTypeIncome || value == models.TransactionTypeExpense
}

func validateTransactionType(value string) error {
	if !isTransactionType(value) {
		return validationError(`invalid transaction type, must be "income" or "expense"`)
	}
	return nil
}

func validateAccountType(value string) error {
	if !accountTypes[value] {
		return validationError(`account type must be either "Cash", "Crypto Wallet", or "Bank Account"`)
	}
	return nil
}

func (s *FinanceService) validateTransactionCurrency(code string) error {
	if !s.currencies.IsSupported(code) {
		return validationError("invalid currency, must be one of: %s", strings.Join(s.currencies.Codes(), ", "))
	}
	return nil
}

func (s *FinanceService) validateAccountCurrency(code string) error {
	if !s.currencies.IsAccountCurrency(code) {
		return validationError("currency must be one of: %s", strings.Join(s.currencies.AccountCodes(), ", "))
	}
	return nil
}

// normalizeDate accepts a calendar date or an RFC 3339 timestamp and returns
// the calendar date part.
func normalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if d, err := time.Parse(models.DateLayout, value); err == nil {
		return d.Format(models.DateLayout), nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.Format(models.DateLayout), nil
	}
	return "", validationError("invalid date %q, expected YYYY-MM-DD", value)
}

func required(value string) bool {
	return strings.TrimSpace(value) != ""
}
