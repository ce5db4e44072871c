package database

import (
	"fmt"
	"strings"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"
)

// assignment is one resolved (column, value) pair of an update. Columns
// always come from the constants below, never from caller input.
type assignment struct {
	column string
	value  any
}

const (
	columnName        = "name"
	columnType        = "type"
	columnDescription = "description"
	columnAccountId   = "account_id"
	columnAmount      = "amount"
	columnCategory    = "category"
	columnCurrency    = "currency"
	columnDate        = "date"
)

// buildUpdate renders "UPDATE table SET a = ?, b = ? WHERE <where>" and the
// matching argument list.
func buildUpdate(table string, assignments []assignment, where string, whereArgs ...any) (string, []any) {
	sets := make([]string, len(assignments))
	args := make([]any, 0, len(assignments)+len(whereArgs))
	for i, a := range assignments {
		sets[i] = a.column + " = ?"
		args = append(args, a.value)
	}
	args = append(args, whereArgs...)
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), where), args
}

func resolveAccountPatch(patch models.AccountPatch, current *models.Account) ([]assignment, error) {
	var assignments []assignment
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", store.ErrValidation)
		}
		assignments = append(assignments, assignment{columnName, *patch.Name})
	}
	if patch.Type != nil {
		assignments = append(assignments, assignment{columnType, *patch.Type})
	}
	if patch.Currency != nil && *patch.Currency != current.Currency {
		return nil, fmt.Errorf("%w: account currency cannot be changed", store.ErrValidation)
	}
	if len(assignments) == 0 && patch.Currency == nil {
		return nil, fmt.Errorf("%w: no fields to update", store.ErrValidation)
	}
	return assignments, nil
}

func resolveCategoryPatch(patch models.CategoryPatch) ([]assignment, error) {
	var assignments []assignment
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", store.ErrValidation)
		}
		assignments = append(assignments, assignment{columnName, *patch.Name})
	}
	if patch.Description != nil {
		assignments = append(assignments, assignment{columnDescription, *patch.Description})
	}
	if len(assignments) == 0 {
		return nil, fmt.Errorf("%w: no valid fields to update", store.ErrValidation)
	}
	return assignments, nil
}

func resolveTransactionPatch(patch models.TransactionPatch) ([]assignment, error) {
	var assignments []assignment
	if patch.AccountId != nil {
		assignments = append(assignments, assignment{columnAccountId, *patch.AccountId})
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount must be positive", store.ErrValidation)
		}
		assignments = append(assignments, assignment{columnAmount, patch.Amount.String()})
	}
	if patch.Description != nil {
		assignments = append(assignments, assignment{columnDescription, *patch.Description})
	}
	if patch.Category != nil {
		assignments = append(assignments, assignment{columnCategory, *patch.Category})
	}
	if patch.Type != nil {
		if *patch.Type != models.TransactionTypeIncome && *patch.Type != models.TransactionTypeExpense {
			return nil, fmt.Errorf("%w: invalid transaction type %q", store.ErrValidation, *patch.Type)
		}
		assignments = append(assignments, assignment{columnType, *patch.Type})
	}
	if patch.Currency != nil {
		assignments = append(assignments, assignment{columnCurrency, *patch.Currency})
	}
	if patch.Date != nil {
		assignments = append(assignments, assignment{columnDate, *patch.Date})
	}
	if len(assignments) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", store.ErrValidation)
	}
	return assignments, nil
}
