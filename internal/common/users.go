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

package common

import (
	"context"
	"fmt"

	"finance-tracker-go/internal/store"

	"go.uber.org/zap"
)

// UserInfo represents simplified user information for command-line utilities
type UserInfo struct {
	Id       string
	Name     string
	Username string
	Currency string
}

// InitializeUsers retrieves users based on an optional username filter.
// If usernameFilter is provided, returns a single user with that username.
// If usernameFilter is empty, returns all users.
func InitializeUsers(ctx context.Context, dbService store.FinanceStore, usernameFilter string, logger *zap.Logger) ([]UserInfo, error) {
	var users []UserInfo

	if usernameFilter != "" {
		logger.Info("Looking up user by username", zap.String("username", usernameFilter))
		user, err := dbService.GetUserByUsername(ctx, usernameFilter)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		users = append(users, UserInfo{
			Id:       user.Id,
			Name:     user.Name,
			Username: user.Username,
			Currency: user.Currency,
		})
	} else {
		allUsers, err := dbService.GetUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get users: %w", err)
		}
		for _, u := range allUsers {
			users = append(users, UserInfo{
				Id:       u.Id,
				Name:     u.Name,
				Username: u.Username,
				Currency: u.Currency,
			})
		}
	}

	logger.Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}
