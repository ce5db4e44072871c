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


package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the payload for creating a user
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the payload for exchanging credentials for a token
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserProfile is the public view of a user
type UserProfile struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Message string      `json:"message"`
	User    UserProfile `json:"user"`
	Token   string      `json:"token"`
}

// CurrencyPreference is the payload of the currency get/set endpoints
type CurrencyPreference struct {
	Currency string `json:"currency"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// CreateAccountRequest opens an account, optionally with an initial balance
type CreateAccountRequest struct {
	Name     string           `json:"name"`
	Type     string           `json:"type"`
	Currency string           `json:"currency"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
}

// AccountPatch holds the optional fields of an account update
type AccountPatch struct {
	Name     *string `json:"name,omitempty"`
	Type     *string `json:"type,omitempty"`
	Currency *string `json:"currency,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Type        string  `json:"type"`
}

// CategoryPatch holds the optional fields of a category update
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateTransactionRequest records a new income or expense
type CreateTransactionRequest struct {
	AccountId   string           `json:"account_id"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Type        string           `json:"type"`
	Currency    string           `json:"currency"`
	Date        *string          `json:"date,omitempty"`
}

// TransactionPatch holds the optional fields of a transaction update.
// A nil field is left unchanged.
type TransactionPatch struct {
	AccountId   *string          `json:"account_id,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Type        *string          `json:"type,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
	Date        *string          `json:"date,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p TransactionPatch) IsEmpty() bool {
	return p.AccountId == nil && p.Amount == nil && p.Description == nil && p.Category == nil &&
		p.Type == nil && p.Currency == nil && p.Date == nil
}

// TransactionFilter narrows a transaction listing. Empty fields are ignored.
type TransactionFilter struct {
	Type      string
	AccountId string
	Category  string
	StartDate string
	EndDate   string
}

// ListTransactionsQuery is a filtered, sorted and paginated listing request
type ListTransactionsQuery struct {
	Filter TransactionFilter
	Limit  int
	Offset int
	Sort   string
	Order  string
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// TransactionPage is one page of a transaction listing
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

// ConvertedTotals expresses the stats breakdowns in a single currency
type ConvertedTotals struct {
	Currency string          `json:"currency"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Net      decimal.Decimal `json:"net"`
	Balance  decimal.Decimal `json:"balance"`
}

// TransactionStats is the response of the stats summary
type TransactionStats struct {
	Period          string              `json:"period"`
	Currency        string              `json:"currency"`
	Transactions    []TypeCurrencyTotal `json:"transactions"`
	AccountBalances []CurrencyBalance   `json:"account_balances"`
	Converted       *ConvertedTotals    `json:"converted,omitempty"`
}

// ExchangeRatesResponse exposes the current rate snapshot
type ExchangeRatesResponse struct {
	Base        string                     `json:"base"`
	Rates       map[string]decimal.Decimal `json:"rates"`
	LastUpdated *time.Time                 `json:"lastUpdated"`
	Source      string                     `json:"source"`
}
