package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"finance-tracker-go/internal/currency"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type CurrenciesConfig struct {
	Currencies []currency.Currency `yaml:"currencies"`
}

// LoadCurrencyConfig reads the currency table from a YAML file. A missing
// file or an empty path selects the built-in RSD, EUR, USD and HUF table.
func LoadCurrencyConfig(currenciesFile string) (*currency.Registry, error) {
	if currenciesFile == "" {
		return currency.Default(), nil
	}

	var currenciesPath string
	if filepath.IsAbs(currenciesFile) {
		currenciesPath = currenciesFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		currenciesPath = filepath.Join(wd, currenciesFile)
	}

	data, err := os.ReadFile(currenciesPath)
	if errors.Is(err, os.ErrNotExist) {
		zap.L().Info("Currency file not found, using built-in currencies", zap.String("path", currenciesPath))
		return currency.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", currenciesFile, err)
	}

	var config CurrenciesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", currenciesFile, err)
	}

	registry, err := currency.NewRegistry(config.Currencies)
	if err != nil {
		return nil, fmt.Errorf("invalid currencies in %s: %w", currenciesFile, err)
	}
	return registry, nil
}
