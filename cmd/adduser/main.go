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

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"finance-tracker-go/internal/auth"
	"finance-tracker-go/internal/common"
	"finance-tracker-go/internal/config"
	"finance-tracker-go/internal/currency"
	"finance-tracker-go/internal/store"

	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		loggerCleanup()
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if strings.ContainsAny(username, " \t") {
		return fmt.Errorf("username cannot contain whitespace: %q", username)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("username", "", "Username (required)")
	name := fs.String("name", "", "Display name (required)")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dbPath := fs.String("db", "", "Path to database file (default: DATABASE_PATH)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" || *name == "" {
		fmt.Fprintln(stdout, "Usage: adduser -username <username> -name <name> [-password <password>] [-db <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: username, name")
	}

	trimmedUsername := strings.TrimSpace(*username)
	trimmedName := strings.TrimSpace(*name)
	if err := validateUsername(trimmedUsername); err != nil {
		return err
	}
	if err := validateName(trimmedName); err != nil {
		return err
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dbService.Close()

	hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, account, err := dbService.CreateUser(ctx, store.CreateUserParams{
		Username:     trimmedUsername,
		Name:         trimmedName,
		PasswordHash: hash,
		Currency:     currency.Base,
	})
	if errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("user %s already exists", trimmedUsername)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	zap.L().Info("User created",
		zap.String("user_id", user.Id),
		zap.String("username", user.Username),
		zap.String("account_id", account.Id))

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Username, user.Id)
	fmt.Fprintf(stdout, "Default account: %s (%s, %s)\n", account.Name, account.Type, account.Currency)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
