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


package database

const (
	// User queries
	queryGetUsers = `
		SELECT id, username, name, password_hash, currency, created_at
		FROM users
		ORDER BY created_at`

	queryInsertUser = `
		INSERT INTO users (id, username, name, password_hash, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetUserById = `
		SELECT id, username, name, password_hash, currency, created_at
		FROM users
		WHERE id = ?`

	queryGetUserByUsername = `
		SELECT id, username, name, password_hash, currency, created_at
		FROM users
		WHERE username = ?`

	queryUpdateUserCurrency = `
		UPDATE users SET currency = ? WHERE id = ?`

	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (id, user_id, name, type, currency, balance, initial_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetAccounts = `
		SELECT id, user_id, name, type, currency, balance, initial_balance, created_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`

	queryGetAccount = `
		SELECT id, user_id, name, type, currency, balance, initial_balance, created_at
		FROM accounts
		WHERE id = ? AND user_id = ?`

	queryGetAccountBalance = `
		SELECT balance FROM accounts WHERE id = ?`

	queryUpdateAccountBalance = `
		UPDATE accounts SET balance = ? WHERE id = ?`

	queryCountAccountTransactions = `
		SELECT COUNT(*) FROM transactions WHERE account_id = ?`

	queryDeleteAccount = `
		DELETE FROM accounts WHERE id = ? AND user_id = ?`

	queryGetAccountTransactionAmounts = `
		SELECT type, amount FROM transactions WHERE account_id = ?`

	// Category queries
	queryInsertCategory = `
		INSERT INTO categories (id, user_id, name, description, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetCategories = `
		SELECT id, user_id, name, description, type, created_at
		FROM categories
		WHERE user_id = ? AND (? = '' OR type = ?)
		ORDER BY type, name`

	queryGetCategory = `
		SELECT id, user_id, name, description, type, created_at
		FROM categories
		WHERE id = ? AND user_id = ?`

	queryFindDuplicateCategory = `
		SELECT id FROM categories
		WHERE user_id = ? AND name = ? AND type = ? AND id != ?`

	queryCountCategoryTransactions = `
		SELECT COUNT(*) FROM transactions WHERE user_id = ? AND category = ?`

	queryDeleteCategory = `
		DELETE FROM categories WHERE id = ? AND user_id = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, user_id, account_id, amount, description, category, type, currency, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	querySelectTransactionColumns = `
		SELECT t.id, t.user_id, t.account_id, t.amount, t.description, t.category, t.type, t.currency, t.date, t.created_at,
		       COALESCE(a.name, ''), COALESCE(a.type, '')
		FROM transactions t
		LEFT JOIN accounts a ON t.account_id = a.id`

	queryGetTransaction = querySelectTransactionColumns + `
		WHERE t.id = ? AND t.user_id = ?`

	queryDeleteTransaction = `
		DELETE FROM transactions WHERE id = ? AND user_id = ?`

	queryCountTransactions = `
		SELECT COUNT(*) FROM transactions t`

	queryGetMostRecentTransaction = `
		SELECT created_at FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT 1`

	// Archive queries
	queryInsertArchivedTransaction = `
		INSERT INTO archived_transactions
			(id, original_id, user_id, account_id, amount, description, category, type, currency, date, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetArchivedTransactions = `
		SELECT id, original_id, user_id, account_id, amount, description, category, type, currency, date, archived_at
		FROM archived_transactions
		WHERE user_id = ?
		ORDER BY archived_at DESC, id DESC
		LIMIT ? OFFSET ?`

	// Stats queries
	queryGetTransactionAmountsInWindow = `
		SELECT type, currency, amount
		FROM transactions
		WHERE user_id = ?
		  AND (? = '' OR date >= ?)
		  AND (? = '' OR date = ?)
		ORDER BY type, currency`

	queryGetAccountBalancesByCurrency = `
		SELECT currency, balance
		FROM accounts
		WHERE user_id = ?
		ORDER BY currency`
)
