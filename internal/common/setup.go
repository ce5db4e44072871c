package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"finance-tracker-go/internal/currency"
	"finance-tracker-go/internal/database"
	"finance-tracker-go/internal/events"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/rates"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService  *database.Service
	Currencies *currency.Registry
	Rates      *rates.Cache
	Publisher  events.Publisher
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the database and builds the currency registry,
// the rate cache and the event publisher.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	registry, err := LoadCurrencyConfig(cfg.Rates.CurrenciesFile)
	if err != nil {
		return nil, err
	}

	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	cache, err := NewRatesCache(cfg.Rates, registry)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	publisher, err := NewPublisher(cfg.Events)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	return &Services{
		DbService:  dbService,
		Currencies: registry,
		Rates:      cache,
		Publisher:  publisher,
	}, nil
}

// InitializeDatabaseOnly initializes just the database service
// Useful for read-only operations like querying balances
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

// NewRatesCache builds the exchange rate cache over the configured upstream,
// falling back to the registry's rates.
func NewRatesCache(cfg models.RatesConfig, registry *currency.Registry) (*rates.Cache, error) {
	fetcher, err := rates.NewHTTPFetcher(cfg.URL, registry.Codes(), cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create rates fetcher: %w", err)
	}

	zap.L().Info("Exchange rate cache configured",
		zap.String("url", cfg.URL),
		zap.Duration("ttl", cfg.CacheTTL),
		zap.Duration("retry_interval", cfg.RetryInterval))

	return rates.NewCache(rates.CacheConfig{
		Fetcher:       fetcher,
		Fallback:      registry.FallbackRates(),
		TTL:           cfg.CacheTTL,
		RetryInterval: cfg.RetryInterval,
		Timeout:       cfg.Timeout,
	}), nil
}

// NewPublisher connects to AMQP when a URL is configured and otherwise
// returns a publisher that drops events.
func NewPublisher(cfg models.EventsConfig) (events.Publisher, error) {
	if cfg.AmqpURL == "" {
		zap.L().Info("AMQP_URL not set, transaction events are disabled")
		return events.NopPublisher{}, nil
	}

	publisher, err := events.NewAMQPPublisher(cfg.AmqpURL, cfg.Exchange, cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}
	zap.L().Info("Publishing transaction events",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue))
	return publisher, nil
}

func (cs *Services) Close() {
	if cs.Publisher != nil {
		if err := cs.Publisher.Close(); err != nil {
			zap.L().Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
