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

const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"

	AccountTypeCash   = "Cash"
	AccountTypeBank   = "Bank Account"
	AccountTypeCrypto = "Crypto Wallet"

	// DateLayout is the calendar-day format used for transaction dates
	DateLayout = "2006-01-02"
)

// User represents a registered user
type User struct {
	Id           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Currency     string    `db:"currency" json:"currency"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Account holds a running balance in a single currency
type Account struct {
	Id             string          `db:"id" json:"id"`
	UserId         string          `db:"user_id" json:"user_id"`
	Name           string          `db:"name" json:"name"`
	Type           string          `db:"type" json:"type"`
	Currency       string          `db:"currency" json:"currency"`
	Balance        decimal.Decimal `db:"balance" json:"balance"`
	InitialBalance decimal.Decimal `db:"initial_balance" json:"initial_balance"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// Category is a user-defined label scoped to a transaction type
type Category struct {
	Id          string    `db:"id" json:"id"`
	UserId      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	Type        string    `db:"type" json:"type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Transaction is a live income or expense entry. Amount is always positive.
type Transaction struct {
	Id          string          `db:"id" json:"id"`
	UserId      string          `db:"user_id" json:"user_id"`
	AccountId   string          `db:"account_id" json:"account_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description *string         `db:"description" json:"description"`
	Category    *string         `db:"category" json:"category"`
	Type        string          `db:"type" json:"type"`
	Currency    string          `db:"currency" json:"currency"`
	Date        string          `db:"date" json:"date"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`

	// Joined from accounts
	AccountName string `db:"account_name" json:"account_name,omitempty"`
	AccountType string `db:"account_type" json:"account_type,omitempty"`
}

// SignedAmount returns the balance effect of the transaction
func (t Transaction) SignedAmount() decimal.Decimal {
	return SignedDelta(t.Type, t.Amount)
}

// SignedDelta is +amount for income and -amount for expense
func SignedDelta(transactionType string, amount decimal.Decimal) decimal.Decimal {
	if transactionType == TransactionTypeIncome {
		return amount
	}
	return amount.Neg()
}

// ArchivedTransaction is the append-only copy written when a transaction is deleted
type ArchivedTransaction struct {
	Id          string          `db:"id" json:"id"`
	OriginalId  string          `db:"original_id" json:"original_id"`
	UserId      string          `db:"user_id" json:"user_id"`
	AccountId   string          `db:"account_id" json:"account_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description *string         `db:"description" json:"description"`
	Category    *string         `db:"category" json:"category"`
	Type        string          `db:"type" json:"type"`
	Currency    string          `db:"currency" json:"currency"`
	Date        string          `db:"date" json:"date"`
	ArchivedAt  time.Time       `db:"archived_at" json:"archived_at"`
}

// TypeCurrencyTotal is one row of the per (type, currency) stats breakdown
type TypeCurrencyTotal struct {
	Type     string          `json:"type"`
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// CurrencyBalance is the sum of account balances held in one currency
type CurrencyBalance struct {
	Currency     string          `json:"currency"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}
