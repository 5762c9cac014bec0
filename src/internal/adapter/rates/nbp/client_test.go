package nbp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
)

const usdTable = `{"table":"C","currency":"dolar amerykański","code":"USD","rates":[{"no":"200/C/NBP/2026","effectiveDate":"2026-10-15","bid":3.92145,"ask":4.00055}]}`

func TestClientReturnsAskAndBid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/exchangerates/rates/c/usd/", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(usdTable))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api/exchangerates/rates/c/", time.Second)

	ask, err := client.BuyingRate(context.Background(), domain.USD)
	require.NoError(t, err)
	assert.Equal(t, "4.0006", ask.String())

	bid, err := client.SellingRate(context.Background(), domain.USD)
	require.NoError(t, err)
	assert.Equal(t, "3.9215", bid.String())
}

func TestClientFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"not found": func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":`))
		},
		"empty rates": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":"USD","rates":[]}`))
		},
		"zero quote": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":"USD","rates":[{"bid":0,"ask":4.1}]}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			_, err := NewClient(server.URL, time.Second).BuyingRate(context.Background(), domain.EUR)
			assert.ErrorIs(t, err, domain.ErrRateUnavailable)
		})
	}
}

func TestClientRejectsBaseCurrency(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:0", time.Second).SellingRate(context.Background(), domain.PLN)
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestClientCoalescesConcurrentLookups(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(usdTable))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.BuyingRate(context.Background(), domain.USD)
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestClientSharedLookupSurvivesFirstCallerCancelling(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(usdTable))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var (
		wg       sync.WaitGroup
		shortErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, shortErr = client.BuyingRate(shortCtx, domain.USD)
	}()

	time.Sleep(10 * time.Millisecond)
	ask, err := client.BuyingRate(context.Background(), domain.USD)
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, "4.0006", ask.String())

	assert.ErrorIs(t, shortErr, domain.ErrRateUnavailable)
	assert.ErrorIs(t, shortErr, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load())
}
