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
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"finance-tracker-go/internal/api"
	"finance-tracker-go/internal/auth"
	"finance-tracker-go/internal/common"
	"finance-tracker-go/internal/config"
	"finance-tracker-go/internal/rates"
	"finance-tracker-go/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting Finance Tracker API")

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JwtSecret, cfg.Auth.TokenTTL)
	if err != nil {
		zap.L().Fatal("Invalid auth configuration", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	var refresher *rates.Refresher
	if cfg.Rates.RefreshInterval > 0 {
		refresher = rates.NewRefresher(services.Rates, cfg.Rates.RefreshInterval)
		refresher.Start(ctx)
	}

	financeService := api.NewFinanceService(api.FinanceServiceConfig{
		Store:      services.DbService,
		Rates:      services.Rates,
		Publisher:  services.Publisher,
		Tokens:     tokens,
		Currencies: services.Currencies,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	httpServer := server.NewHTTPServer(cfg.Server, server.NewServer(financeService, tokens, cfg.Server).Handler())

	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		zap.L().Info("Shutdown signal received, stopping server...")
	case err := <-serveErr:
		if err != nil {
			zap.L().Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("Forced shutdown after timeout", zap.Error(err))
	} else {
		zap.L().Info("HTTP server stopped gracefully")
	}

	if refresher != nil {
		refresher.Stop()
	}
}
