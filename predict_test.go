package papertrade

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const forecastPayload = `{
	"success": true,
	"ticker": "TCS",
	"current_price": 3500,
	"prediction_dates": ["2025-03-03", "2025-03-04"],
	"predicted_prices": [3510, 3523],
	"confidence": 0.9
}`

// fastClient returns a client with timings shrunk to keep tests quick.
func fastClient(baseURL string) *Client {
	return &Client{
		BaseURL:         baseURL,
		FullTimeout:     60 * time.Millisecond,
		DegradedTimeout: 30 * time.Millisecond,
		SoftDeadline:    20 * time.Millisecond,
		Backoff:         5 * time.Millisecond,
	}
}

// statusRecorder collects status signals thread-safely.
type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *statusRecorder) record(_ string, s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *statusRecorder) count(s Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.statuses {
		if got == s {
			n++
		}
	}
	return n
}

func TestClientFetch(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/api/predict/TCS" {
			t.Errorf("path = %q, want /api/predict/TCS", r.URL.Path)
		}
		if got := r.URL.Query().Get("exchange"); got != "NSE" {
			t.Errorf("exchange = %q, want NSE", got)
		}
		fmt.Fprint(w, forecastPayload)
	}))
	defer srv.Close()

	p, err := fastClient(srv.URL).Fetch(context.Background(), "tcs", PredictOptions{Exchange: "NSE"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if p.Ticker != "TCS" || len(p.Prices) != 2 || p.Degraded {
		t.Errorf("unexpected prediction: %+v", p)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
}

func TestClientFetchTerminalErrorsAreNotRetried(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{name: "unknown ticker", status: http.StatusNotFound, kind: KindNotFound},
		{name: "not predictable", status: http.StatusBadRequest, kind: KindBadRequest},
		{name: "rate limited", status: http.StatusTooManyRequests, kind: KindRateLimited},
		{name: "server exploded", status: http.StatusInternalServerError, kind: KindUnknown},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var requests atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := fastClient(srv.URL).Fetch(context.Background(), "TCS", PredictOptions{})
			if !IsKind(err, tc.kind) {
				t.Errorf("got %v, want kind %s", err, tc.kind)
			}
			if got := requests.Load(); got != 1 {
				t.Errorf("request count = %d, want 1 (terminal errors must not retry)", got)
			}
		})
	}
}

func TestClientFetchFallsBackToDegraded(t *testing.T) {
	// The server hangs on full-fidelity requests and answers instantly when
	// asked to simplify.
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Query().Get("simplify") != "true" {
			time.Sleep(200 * time.Millisecond)
			return
		}
		fmt.Fprint(w, forecastPayload)
	}))
	defer srv.Close()

	rec := &statusRecorder{}
	client := fastClient(srv.URL)
	client.OnStatus = rec.record

	p, err := client.Fetch(context.Background(), "TCS", PredictOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !p.Degraded {
		t.Error("fallback result is not marked degraded")
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("request count = %d, want 2 full attempts + 1 degraded", got)
	}
	if got := rec.count(StatusRetrying); got != 2 {
		t.Errorf("retrying signals = %d, want 2", got)
	}
	if got := rec.count(StatusDegraded); got != 1 {
		t.Errorf("degraded signals = %d, want 1", got)
	}
}

func TestClientFetchTimesOutForGood(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Fetch(context.Background(), "TCS", PredictOptions{})
	if !IsKind(err, KindTimeout) {
		t.Errorf("got %v, want a timeout", err)
	}
}

func TestClientFetchDegradedDirectly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("simplify") != "true" {
			t.Error("a degraded fetch must ask the upstream to simplify")
		}
		fmt.Fprint(w, forecastPayload)
	}))
	defer srv.Close()

	p, err := fastClient(srv.URL).Fetch(context.Background(), "TCS", PredictOptions{Degraded: true})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !p.Degraded {
		t.Error("result is not marked degraded")
	}
}

func TestClientSoftDeadlineSignals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(40 * time.Millisecond) // past the soft deadline, inside the hard one
		fmt.Fprint(w, forecastPayload)
	}))
	defer srv.Close()

	rec := &statusRecorder{}
	client := fastClient(srv.URL)
	client.OnStatus = rec.record

	if _, err := client.Fetch(context.Background(), "TCS", PredictOptions{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := rec.count(StatusSlow); got != 1 {
		t.Errorf("slow signals = %d, want 1 (soft deadline passed once)", got)
	}
}

func TestClientSoftDeadlineNeverFiresAfterResolution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, forecastPayload)
	}))
	defer srv.Close()

	rec := &statusRecorder{}
	client := fastClient(srv.URL)
	client.OnStatus = rec.record

	if _, err := client.Fetch(context.Background(), "TCS", PredictOptions{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// wait well past the soft deadline; the timer must have been stopped.
	time.Sleep(50 * time.Millisecond)
	if got := rec.count(StatusSlow); got != 0 {
		t.Errorf("slow signals = %d after a fast resolution, want 0", got)
	}
}

func TestSessionLiteralConstruction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, forecastPayload)
	}))
	defer srv.Close()

	// a Session built without NewSession must work just the same
	session := &Session{Client: fastClient(srv.URL)}
	p, err := session.Fetch(context.Background(), "TCS", PredictOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if p.Ticker != "TCS" {
		t.Errorf("ticker = %q, want TCS", p.Ticker)
	}
}

func TestSessionSupersedesInflightFetch(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		fmt.Fprint(w, forecastPayload)
	}))
	defer srv.Close()

	client := fastClient(srv.URL)
	client.FullTimeout = time.Second // long enough to be cancelled, not to time out
	session := NewSession(client)

	firstDone := make(chan error, 1)
	go func() {
		_, err := session.Fetch(context.Background(), "TCS", PredictOptions{})
		firstDone <- err
	}()
	<-started // first request is in flight

	secondDone := make(chan error, 1)
	go func() {
		_, err := session.Fetch(context.Background(), "TCS", PredictOptions{})
		secondDone <- err
	}()
	<-started // second request is in flight, first is cancelled
	close(release)

	if err := <-firstDone; !errors.Is(err, ErrSuperseded) {
		t.Errorf("first fetch: got %v, want ErrSuperseded", err)
	}
	if err := <-secondDone; err != nil {
		t.Errorf("second fetch: %v", err)
	}
}
