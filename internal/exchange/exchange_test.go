package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"dundie-rewards/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) config.ExchangeConfig {
	return config.ExchangeConfig{
		BaseURL:         url + "/json/last/USD-{currency}",
		Timeout:         time.Second,
		MaxRetries:      2,
		RetryBase:       time.Millisecond,
		BreakerFailures: 3,
		BreakerTimeout:  time.Minute,
	}
}

func rateServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestRatesUSDNeverCallsAPI(t *testing.T) {
	srv, calls := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	rates := NewClient(testConfig(srv.URL), nil).Rates(context.Background(), []string{"USD", "usd"})

	require.Len(t, rates, 1)
	assert.True(t, decimal.NewFromInt(1).Equal(rates["USD"].Ask))
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestRatesParsesAsk(t *testing.T) {
	srv, _ := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/last/USD-BRL", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"USDBRL":{"code":"USD","codein":"BRL","name":"Dollar/Real","ask":"5.1234"}}`))
	})

	rates := NewClient(testConfig(srv.URL), nil).Rates(context.Background(), []string{"BRL", "USD"})

	require.Len(t, rates, 2)
	brl := rates["BRL"]
	assert.Equal(t, "Dollar/Real", brl.Name)
	assert.Equal(t, "BRL", brl.CodeIn)
	assert.True(t, decimal.RequireFromString("5.1234").Equal(brl.Ask))
	assert.False(t, brl.Failed())
	assert.Equal(t, "512.34", Total(brl, decimal.NewFromInt(100)).StringFixed(2))
}

func TestRatesFailureYieldsSentinel(t *testing.T) {
	srv, calls := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rates := NewClient(testConfig(srv.URL), nil).Rates(context.Background(), []string{"EUR"})

	eur := rates["EUR"]
	assert.True(t, eur.Failed())
	assert.Equal(t, APIErrorName, eur.Name)
	assert.True(t, eur.Ask.IsZero())
	assert.True(t, Total(eur, decimal.NewFromInt(500)).IsZero())
	// one attempt plus two retries
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestRatesClientErrorIsNotRetried(t *testing.T) {
	srv, calls := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rates := NewClient(testConfig(srv.URL), nil).Rates(context.Background(), []string{"XYZ"})

	assert.True(t, rates["XYZ"].Failed())
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestRatesMissingKeyYieldsSentinel(t *testing.T) {
	srv, _ := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"USDEUR":{"code":"USD","codein":"EUR","name":"Dollar/Euro","ask":"0.9"}}`))
	})

	rates := NewClient(testConfig(srv.URL), nil).Rates(context.Background(), []string{"GBP"})
	assert.True(t, rates["GBP"].Failed())
}

func TestRatesRetriesTransientFailure(t *testing.T) {
	var n int32
	srv, _ := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"USDEUR":{"code":"USD","codein":"EUR","name":"Dollar/Euro","ask":"0.9"}}`))
	})

	rates := NewClient(testConfig(srv.URL), nil).Rates(context.Background(), []string{"EUR"})

	assert.False(t, rates["EUR"].Failed())
	assert.True(t, decimal.RequireFromString("0.9").Equal(rates["EUR"].Ask))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv, calls := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 0
	client := NewClient(cfg, nil)

	for _, cur := range []string{"AAA", "BBB", "CCC", "DDD", "EEE"} {
		assert.True(t, client.Rates(context.Background(), []string{cur})[cur].Failed())
	}
	// the breaker trips after three failures and short-circuits the rest
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestBreakerIgnoresUnknownCurrencies(t *testing.T) {
	srv, calls := rateServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json/last/USD-EUR" {
			_, _ = w.Write([]byte(`{"USDEUR":{"code":"USD","codein":"EUR","name":"Dollar/Euro","ask":"0.9"}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 0
	client := NewClient(cfg, nil)

	for _, cur := range []string{"AAA", "BBB", "CCC", "DDD", "EEE"} {
		assert.True(t, client.Rates(context.Background(), []string{cur})[cur].Failed())
	}
	assert.Equal(t, int32(5), atomic.LoadInt32(calls))

	eur := client.Rates(context.Background(), []string{"EUR"})["EUR"]
	assert.False(t, eur.Failed())
	assert.True(t, decimal.RequireFromString("0.9").Equal(eur.Ask))
}

func TestRatesUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := testConfig(url)
	cfg.MaxRetries = 0
	rates := NewClient(cfg, nil).Rates(context.Background(), []string{"JPY"})
	assert.True(t, rates["JPY"].Failed())
}

func TestBackoffDelayBounds(t *testing.T) {
	assert.Zero(t, backoffDelay(0, 3))
	for attempt := 0; attempt < 5; attempt++ {
		d := backoffDelay(10*time.Millisecond, attempt)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, (10*time.Millisecond)<<attempt)
	}
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sleepContext(ctx, time.Hour)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "canceled"))
}
