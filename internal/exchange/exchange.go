// Package exchange fetches USD conversion rates from an HTTP rate API.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dundie-rewards/internal/config"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	BaseCurrency = "USD"
	APIErrorName = "API Error"

	currencyPlaceholder = "{currency}"
)

// Rate is one quote of the rate API. Ask is the price of one USD in CodeIn.
type Rate struct {
	Code   string          `json:"code"`
	CodeIn string          `json:"codein"`
	Name   string          `json:"name"`
	Ask    decimal.Decimal `json:"ask"`
}

// Failed reports whether r is the sentinel returned for an unreachable quote.
func (r Rate) Failed() bool {
	return r.Name == APIErrorName
}

// Converter resolves rates for a set of currency codes. It never fails: a
// currency that cannot be quoted maps to the sentinel rate.
type Converter interface {
	Rates(ctx context.Context, currencies []string) map[string]Rate
}

// Total is the display value of balance in the rate's currency.
func Total(rate Rate, balance decimal.Decimal) decimal.Decimal {
	return rate.Ask.Mul(balance)
}

func identityRate() Rate {
	return Rate{Code: BaseCurrency, CodeIn: BaseCurrency, Name: "Dollar/Dollar", Ask: decimal.NewFromInt(1)}
}

func sentinelRate(currency string) Rate {
	return Rate{Code: BaseCurrency, CodeIn: currency, Name: APIErrorName, Ask: decimal.Zero}
}

// errTransient marks failures that are worth another attempt.
var errTransient = errors.New("transient rate API failure")

// Client is the HTTP implementation of Converter.
type Client struct {
	baseURL    string
	http       *http.Client
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	retryBase  time.Duration
	log        *zap.Logger
}

// NewClient builds a client from the exchange configuration. A nil logger
// disables logging.
func NewClient(cfg config.ExchangeConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	log = log.Named("exchange")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "rate-api",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// an unknown currency says nothing about the health of the API
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, errTransient)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL:    cfg.BaseURL,
		http:       &http.Client{Timeout: timeout},
		breaker:    breaker,
		maxRetries: cfg.MaxRetries,
		retryBase:  cfg.RetryBase,
		log:        log,
	}
}

// Rates returns one entry per distinct currency. USD is always 1 and never
// hits the network.
func (c *Client) Rates(ctx context.Context, currencies []string) map[string]Rate {
	rates := make(map[string]Rate, len(currencies))
	for _, cur := range currencies {
		cur = strings.ToUpper(strings.TrimSpace(cur))
		if _, done := rates[cur]; done {
			continue
		}
		if cur == BaseCurrency {
			rates[cur] = identityRate()
			continue
		}

		rate, err := c.quote(ctx, cur)
		if err != nil {
			c.log.Warn("rate lookup failed", zap.String("currency", cur), zap.Error(err))
			rate = sentinelRate(cur)
		}
		rates[cur] = rate
	}
	return rates
}

func (c *Client) quote(ctx context.Context, currency string) (Rate, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchWithRetry(ctx, currency)
	})
	if err != nil {
		return Rate{}, err
	}
	return res.(Rate), nil
}

func (c *Client) fetchWithRetry(ctx context.Context, currency string) (Rate, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, backoffDelay(c.retryBase, attempt-1)); err != nil {
				return Rate{}, fmt.Errorf("retry %s: %w", currency, err)
			}
		}

		rate, err := c.fetch(ctx, currency)
		if err == nil {
			return rate, nil
		}
		lastErr = err
		if !errors.Is(err, errTransient) {
			break
		}
		c.log.Debug("retrying rate lookup", zap.String("currency", currency), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return Rate{}, lastErr
}

func (c *Client) fetch(ctx context.Context, currency string) (Rate, error) {
	url := strings.ReplaceAll(c.baseURL, currencyPlaceholder, currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Rate{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Rate{}, err
		}
		return Rate{}, fmt.Errorf("%w: %v", errTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Rate{}, fmt.Errorf("%w: status %d", errTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Rate{}, fmt.Errorf("rate API status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Rate{}, fmt.Errorf("%w: read body: %v", errTransient, err)
	}

	var payload map[string]Rate
	if err := json.Unmarshal(body, &payload); err != nil {
		return Rate{}, fmt.Errorf("decode rate: %w", err)
	}
	rate, ok := payload[BaseCurrency+currency]
	if !ok {
		return Rate{}, fmt.Errorf("rate %s%s missing from response", BaseCurrency, currency)
	}
	return rate, nil
}
