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


package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"finance-tracker-go/internal/models"
)

const defaultRatesURL = "https://api.exchangerate-api.io/v4/latest/RSD"

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	readTimeout, err := getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	writeTimeout, err := getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	tokenTTL, err := getEnvDuration("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := getEnvDuration("RATES_CACHE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}

	retryInterval, err := getEnvDuration("RATES_RETRY_INTERVAL", cacheTTL)
	if err != nil {
		return nil, err
	}

	ratesTimeout, err := getEnvDuration("RATES_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	refreshInterval, err := getEnvDuration("RATES_REFRESH_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "finance.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			BusyTimeoutMs:   getEnvInt("DB_BUSY_TIMEOUT_MS", 5000),
		},
		Server: models.ServerConfig{
			Addr:            getEnvString("SERVER_ADDR", ":3001"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			CorsOrigin:      getEnvString("CORS_ORIGIN", "*"),
		},
		Auth: models.AuthConfig{
			JwtSecret:  os.Getenv("JWT_SECRET"),
			TokenTTL:   tokenTTL,
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},
		Rates: models.RatesConfig{
			URL:             getEnvString("RATES_URL", defaultRatesURL),
			CacheTTL:        cacheTTL,
			RetryInterval:   retryInterval,
			Timeout:         ratesTimeout,
			RefreshInterval: refreshInterval,
			CurrenciesFile:  getEnvString("CURRENCIES_FILE", "currencies.yaml"),
		},
		Events: models.EventsConfig{
			AmqpURL:  os.Getenv("AMQP_URL"),
			Exchange: getEnvString("AMQP_EXCHANGE", "finance.events"),
			Queue:    getEnvString("AMQP_QUEUE", "finance.transactions"),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
