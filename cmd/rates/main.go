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
	"strings"

	"finance-tracker-go/internal/common"
	"finance-tracker-go/internal/config"
	"finance-tracker-go/internal/currency"
	"finance-tracker-go/internal/rates"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func printSnapshot(w io.Writer, registry *currency.Registry, snapshot rates.Snapshot) {
	updated := "never"
	if !snapshot.FetchedAt.IsZero() {
		updated = snapshot.FetchedAt.Format("2006-01-02 15:04:05 MST")
	}
	common.PrintBoxTitle(w, fmt.Sprintf("Base: %s", currency.Base),
		fmt.Sprintf("Source: %s", snapshot.Source),
		fmt.Sprintf("Last updated: %s", updated))
	common.PrintBoxSeparator(w, 40)

	codes := nonBaseCodes(registry)
	for i, code := range codes {
		rate, ok := snapshot.Rates[code]
		value := "unavailable"
		if ok {
			value = registry.Format(rate, currency.Base)
		}
		fmt.Fprintf(w, "%s 1 %-4s = %s\n", common.BoxPrefix(i == len(codes)-1), code, value)
	}
}

// printConversionTable converts amount from every known currency into every
// other one.
func printConversionTable(w io.Writer, registry *currency.Registry, rateSet currency.Rates, amount decimal.Decimal) {
	codes := registry.Codes()
	fmt.Fprintf(w, "\n%-14s", "")
	for _, to := range codes {
		fmt.Fprintf(w, "%18s", to)
	}
	fmt.Fprintln(w)
	common.PrintSeparator(w, "-", 14+18*len(codes))

	for _, from := range codes {
		fmt.Fprintf(w, "%-14s", registry.Format(amount, from))
		for _, to := range codes {
			cell := "n/a"
			if value, err := currency.Convert(amount, from, to, rateSet); err == nil {
				cell = registry.Format(value, to)
			}
			fmt.Fprintf(w, "%18s", cell)
		}
		fmt.Fprintln(w)
	}
}

func nonBaseCodes(registry *currency.Registry) []string {
	var codes []string
	for _, code := range registry.Codes() {
		if code != currency.Base {
			codes = append(codes, code)
		}
	}
	return codes
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	amountFlag := flag.String("amount", "100", "Amount to convert between every pair of currencies")
	offlineFlag := flag.Bool("offline", false, "Show the fallback rates without calling the rate service")
	flag.Parse()

	amount, err := decimal.NewFromString(strings.TrimSpace(*amountFlag))
	if err != nil {
		logger.Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	registry, err := common.LoadCurrencyConfig(cfg.Rates.CurrenciesFile)
	if err != nil {
		logger.Fatal("Failed to load currencies", zap.Error(err))
	}

	snapshot := rates.Snapshot{Rates: registry.FallbackRates(), Source: rates.SourceFallback}
	if !*offlineFlag {
		cache, err := common.NewRatesCache(cfg.Rates, registry)
		if err != nil {
			logger.Fatal("Failed to initialize exchange rates", zap.Error(err))
		}
		snapshot = cache.Rates(ctx)
	}

	common.PrintHeader(os.Stdout, "EXCHANGE RATES", common.WideWidth)
	printSnapshot(os.Stdout, registry, snapshot)
	printConversionTable(os.Stdout, registry, snapshot.Rates, amount)
	common.PrintFooter(os.Stdout, fmt.Sprintf("Rates source: %s", snapshot.Source), common.WideWidth)
}
