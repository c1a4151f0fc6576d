package papertrade

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const quotesPayload = `[
	{"symbol": "TCS", "price": 3500.5, "change": 12.5, "changePercent": 0.36, "volume": 120000},
	{"symbol": "INFY", "price": "1,400.25", "change": -3.5, "change_percent": -0.25, "volume": 98000}
]`

func fastQuoteClient(baseURL string) *QuoteClient {
	return &QuoteClient{BaseURL: baseURL, MinInterval: 5 * time.Millisecond}
}

func TestQuotesBatchedRequest(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if got := r.URL.Query().Get("tickers"); got != "TCS,INFY" {
			t.Errorf("tickers = %q, want TCS,INFY", got)
		}
		fmt.Fprint(w, quotesPayload)
	}))
	defer srv.Close()

	quotes, err := fastQuoteClient(srv.URL).Quotes(context.Background(), []string{"tcs", "infy"})
	if err != nil {
		t.Fatalf("Quotes: %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("request count = %d, want a single batched request", got)
	}
	if len(quotes) != 2 {
		t.Fatalf("quotes = %+v, want 2 entries", quotes)
	}
	if q := quotes["TCS"]; !q.Price.Equal(M(3500.5)) || q.Volume != 120000 {
		t.Errorf("TCS quote = %+v", q)
	}
	// the upstream sometimes sends numbers as strings and snake_case fields
	if q := quotes["INFY"]; !q.Price.Equal(M(1400.25)) || !q.Change.Equal(M(-3.5)) {
		t.Errorf("INFY quote = %+v", q)
	}
}

func TestQuotesEmptyTickerList(t *testing.T) {
	quotes, err := fastQuoteClient("http://unused.invalid").Quotes(context.Background(), nil)
	if err != nil {
		t.Fatalf("Quotes: %v", err)
	}
	if len(quotes) != 0 {
		t.Errorf("quotes = %+v, want none", quotes)
	}
}

func TestQuotesRetriesOnceAfterRateLimit(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, quotesPayload)
	}))
	defer srv.Close()

	quotes, err := fastQuoteClient(srv.URL).Quotes(context.Background(), []string{"TCS"})
	if err != nil {
		t.Fatalf("Quotes after one rate limit: %v", err)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("request count = %d, want 2 (one retry)", got)
	}
	if len(quotes) != 2 {
		t.Errorf("quotes = %+v", quotes)
	}
}

func TestQuotesSecondRateLimitSurfaces(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := fastQuoteClient(srv.URL).Quotes(context.Background(), []string{"TCS"})
	if !IsKind(err, KindRateLimited) {
		t.Errorf("got %v, want kind %s", err, KindRateLimited)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("request count = %d, want exactly 2 (a single retry)", got)
	}
}

func TestQuotesSpacedApart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, quotesPayload)
	}))
	defer srv.Close()

	client := &QuoteClient{BaseURL: srv.URL, MinInterval: 50 * time.Millisecond}
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.Quotes(context.Background(), []string{"TCS"}); err != nil {
			t.Fatalf("Quotes %d: %v", i, err)
		}
	}
	// the first request is free, the next two wait a full interval each
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("3 requests completed in %s, want at least 100ms of spacing", elapsed)
	}
}

func TestTrending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/trending" {
			t.Errorf("path = %q, want /api/trending", r.URL.Path)
		}
		fmt.Fprintf(w, `{"trending": %s}`, quotesPayload)
	}))
	defer srv.Close()

	quotes, err := fastQuoteClient(srv.URL).Trending()
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(quotes) != 2 || quotes[0].Ticker != "TCS" {
		t.Errorf("trending = %+v", quotes)
	}
}
