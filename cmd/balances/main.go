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
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"finance-tracker-go/internal/common"
	"finance-tracker-go/internal/config"
	"finance-tracker-go/internal/currency"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers        int
	totalAccounts     int
	usersWithAccounts int
	driftedAccounts   int
}

type balanceReport struct {
	store     store.FinanceStore
	registry  *currency.Registry
	rates     currency.Rates
	reconcile bool
	archived  int
	out       io.Writer
}

func (b *balanceReport) printAccount(account models.Account, isLast bool) {
	fmt.Fprintf(b.out, "%s %-24s %-14s: %20s (initial %s)\n",
		common.BoxPrefix(isLast),
		account.Name,
		account.Type,
		b.registry.Format(account.Balance, account.Currency),
		b.registry.Format(account.InitialBalance, account.Currency))
}

// total converts every account balance into the target currency. Accounts
// without a usable rate are reported and left out.
func (b *balanceReport) total(accounts []models.Account, target string) (decimal.Decimal, int) {
	total := decimal.Zero
	skipped := 0
	for _, account := range accounts {
		value, err := currency.Convert(account.Balance, account.Currency, target, b.rates)
		if err != nil {
			zap.L().Warn("Skipping account without exchange rate",
				zap.String("account_id", account.Id),
				zap.String("currency", account.Currency),
				zap.Error(err))
			skipped++
			continue
		}
		total = total.Add(value)
	}
	return total, skipped
}

func (b *balanceReport) printArchived(ctx context.Context, userId string) error {
	archived, err := b.store.GetArchivedTransactions(ctx, userId, b.archived, 0)
	if err != nil {
		return fmt.Errorf("failed to get archived transactions: %w", err)
	}
	if len(archived) == 0 {
		return nil
	}

	fmt.Fprintf(b.out, "   Recently deleted (%d):\n", len(archived))
	for _, tx := range archived {
		fmt.Fprintf(b.out, "     %s %-8s %16s  deleted %s\n",
			tx.Date,
			tx.Type,
			b.registry.Format(tx.Amount, tx.Currency),
			tx.ArchivedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (b *balanceReport) processUser(ctx context.Context, user common.UserInfo) (int, int, error) {
	accounts, err := b.store.GetAccounts(ctx, user.Id)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get accounts: %w", err)
	}
	if len(accounts) == 0 {
		return 0, 0, nil
	}

	lastActivity := "none"
	last, err := b.store.GetMostRecentTransactionTime(ctx, user.Id)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get last activity: %w", err)
	}
	if !last.IsZero() {
		lastActivity = last.Format("2006-01-02 15:04:05")
	}

	common.PrintBoxTitle(b.out, fmt.Sprintf("User: %s (%s)", user.Name, user.Username),
		fmt.Sprintf("ID: %s", user.Id),
		fmt.Sprintf("Accounts: %d", len(accounts)),
		fmt.Sprintf("Last activity: %s", lastActivity))
	common.PrintBoxSeparator(b.out, 78)

	drifted := 0
	for i, account := range accounts {
		b.printAccount(account, i == len(accounts)-1)
		if !b.reconcile {
			continue
		}
		if err := b.store.ReconcileAccountBalance(ctx, user.Id, account.Id); err != nil {
			drifted++
			fmt.Fprintf(b.out, "   ! %v\n", err)
		}
	}

	total, skipped := b.total(accounts, user.Currency)
	line := fmt.Sprintf("   Total in %s: %s", user.Currency, b.registry.Format(total, user.Currency))
	if skipped > 0 {
		line += fmt.Sprintf(" (%d accounts without rate)", skipped)
	}
	fmt.Fprintln(b.out, line)

	if b.archived > 0 {
		if err := b.printArchived(ctx, user.Id); err != nil {
			return 0, 0, err
		}
	}

	return len(accounts), drifted, nil
}

func (b *balanceReport) processUsersAndGenerateReport(ctx context.Context, users []common.UserInfo, logger *zap.Logger) balanceStats {
	stats := balanceStats{}

	for _, user := range users {
		stats.totalUsers++

		accountCount, drifted, err := b.processUser(ctx, user)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("username", user.Username),
				zap.Error(err))
			continue
		}

		if accountCount > 0 {
			stats.usersWithAccounts++
			stats.totalAccounts += accountCount
		}
		stats.driftedAccounts += drifted
	}

	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	usernameFlag := flag.String("username", "", "Filter by specific username (optional)")
	reconcileFlag := flag.Bool("reconcile", false, "Check every balance against initial balance plus transactions")
	offlineFlag := flag.Bool("offline", false, "Use fallback exchange rates instead of calling the rate service")
	archivedFlag := flag.Int("archived", 0, "Also list up to N recently deleted transactions per user")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	registry, err := common.LoadCurrencyConfig(cfg.Rates.CurrenciesFile)
	if err != nil {
		logger.Fatal("Failed to load currencies", zap.Error(err))
	}

	rateSet := registry.FallbackRates()
	if !*offlineFlag {
		cache, err := common.NewRatesCache(cfg.Rates, registry)
		if err != nil {
			logger.Fatal("Failed to initialize exchange rates", zap.Error(err))
		}
		snapshot := cache.Rates(ctx)
		logger.Info("Using exchange rates", zap.String("source", snapshot.Source))
		rateSet = snapshot.Rates
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	users, err := common.InitializeUsers(ctx, dbService, *usernameFlag, logger)
	if err != nil {
		logger.Fatal("Failed to initialize users", zap.Error(err))
	}

	report := &balanceReport{
		store:     dbService,
		registry:  registry,
		rates:     rateSet,
		reconcile: *reconcileFlag,
		archived:  *archivedFlag,
		out:       os.Stdout,
	}

	common.PrintHeader(os.Stdout, "ACCOUNT BALANCE REPORT", common.DefaultWidth)

	stats := report.processUsersAndGenerateReport(ctx, users, logger)

	summary := fmt.Sprintf("SUMMARY: %d users with accounts (%d accounts across %d users queried)",
		stats.usersWithAccounts, stats.totalAccounts, stats.totalUsers)
	if *reconcileFlag {
		summary += fmt.Sprintf(", %d accounts out of balance", stats.driftedAccounts)
	}
	common.PrintFooter(os.Stdout, summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_accounts", stats.usersWithAccounts),
		zap.Int("total_accounts", stats.totalAccounts))
}
