package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"time"

	"finance-tracker-go/internal/currency"

	"github.com/shopspring/decimal"
	"golang.org/x/net/http2"
)

const inversePrecision = 10

// requiredCodes must be present and numeric in every upstream response
var requiredCodes = []string{"EUR", "USD"}

// HTTPFetcher reads rates from an endpoint answering {"rates": {...}} where
// each value is units of the currency per one RSD.
type HTTPFetcher struct {
	url    string
	codes  []string
	client http.Client
}

// NewHTTPFetcher creates a fetcher for url that keeps the given codes in
// addition to EUR and USD. The base currency is ignored.
func NewHTTPFetcher(url string, codes []string, timeout time.Duration) (*HTTPFetcher, error) {
	if url == "" {
		return nil, fmt.Errorf("rates url is required")
	}

	httpClient, err := createCustomHttpClient(timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	tracked := append([]string(nil), requiredCodes...)
	for _, code := range codes {
		if code != currency.Base && !slices.Contains(tracked, code) {
			tracked = append(tracked, code)
		}
	}

	return &HTTPFetcher{url: url, codes: tracked, client: httpClient}, nil
}

func createCustomHttpClient(timeout time.Duration) (http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tr := &http.Transport{
		ResponseHeaderTimeout: timeout,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   timeout,
		}).DialContext,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		MaxIdleConnsPerHost:   2,
		ExpectContinueTimeout: time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	return http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

type latestRatesResponse struct {
	Rates map[string]any `json:"rates"`
}

// Fetch requests the latest rates and inverts them into RSD per unit.
func (f *HTTPFetcher) Fetch(ctx context.Context) (currency.Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("rates request returned status %d", resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var body latestRatesResponse
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("unable to decode rates response: %w", err)
	}

	return invertRates(body.Rates, f.codes)
}

func invertRates(raw map[string]any, codes []string) (currency.Rates, error) {
	if raw == nil {
		return nil, fmt.Errorf("rates response has no rates object")
	}

	for _, code := range requiredCodes {
		if _, ok := raw[code].(json.Number); !ok {
			return nil, fmt.Errorf("rates response missing numeric %s rate", code)
		}
	}

	one := decimal.NewFromInt(1)
	rates := make(currency.Rates, len(codes))
	for _, code := range codes {
		number, ok := raw[code].(json.Number)
		if !ok {
			continue
		}
		perBase, err := decimal.NewFromString(number.String())
		if err != nil || !perBase.IsPositive() {
			continue
		}
		rates[code] = one.DivRound(perBase, inversePrecision)
	}

	for _, code := range requiredCodes {
		if _, ok := rates[code]; !ok {
			return nil, fmt.Errorf("rates response has non-positive %s rate", code)
		}
	}

	return rates, nil
}
