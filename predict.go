package papertrade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Default deadlines of the forecast client. The model round trip is slow,
// so the full-fidelity window is generous, with a softer signal well before
// it so a UI can tell the user the request is still alive.
const (
	DefaultFullTimeout     = 15 * time.Second
	DefaultDegradedTimeout = 5 * time.Second
	DefaultSoftDeadline    = 8 * time.Second
	DefaultBackoff         = 2 * time.Second
)

// ErrorKind classifies forecast and quote request failures.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not-found"
	KindBadRequest  ErrorKind = "bad-request"
	KindTimeout     ErrorKind = "timeout"
	KindRateLimited ErrorKind = "rate-limited"
	KindUnknown     ErrorKind = "unknown"
)

// RequestError is the only error shape remote failures surface as; raw
// transport errors never escape the clients.
type RequestError struct {
	Kind ErrorKind
	msg  string
}

func (e *RequestError) Error() string { return e.msg }

func requestErrorf(kind ErrorKind, format string, args ...any) *RequestError {
	return &RequestError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a RequestError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == kind
}

// Status is the progress signal a long forecast request emits.
type Status string

const (
	// StatusSlow fires once the soft deadline passes with the request still
	// in flight. It is informational only; the request keeps running.
	StatusSlow Status = "slow"
	// StatusRetrying fires before each retry of a timed-out request.
	StatusRetrying Status = "retrying"
	// StatusDegraded fires when the client falls back to the fast,
	// simplified forecast.
	StatusDegraded Status = "degraded"
)

// PredictOptions qualifies a forecast request.
type PredictOptions struct {
	Exchange string // market qualifier, e.g. "NSE" or "BSE"
	Degraded bool   // request the simplified forecast directly
}

// Client fetches price forecasts. The zero value fetches from no base URL;
// populate BaseURL at least. All durations default when zero so tests can
// shrink them.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	FullTimeout     time.Duration
	DegradedTimeout time.Duration
	SoftDeadline    time.Duration
	Backoff         time.Duration

	// OnStatus, when set, receives progress signals for slow requests.
	OnStatus func(ticker string, status Status)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) fullTimeout() time.Duration     { return orDefault(c.FullTimeout, DefaultFullTimeout) }
func (c *Client) degradedTimeout() time.Duration { return orDefault(c.DegradedTimeout, DefaultDegradedTimeout) }
func (c *Client) softDeadline() time.Duration    { return orDefault(c.SoftDeadline, DefaultSoftDeadline) }
func (c *Client) backoff() time.Duration         { return orDefault(c.Backoff, DefaultBackoff) }

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

func (c *Client) status(ticker string, s Status) {
	if c.OnStatus != nil {
		c.OnStatus(ticker, s)
	}
}

// Fetch retrieves a forecast for ticker. Up to two full-fidelity attempts
// are made within the full timeout each; if both time out, one last attempt
// asks for the simplified forecast within the shorter degraded timeout.
// Retries back off linearly. Terminal failures (unknown ticker, stock not
// predictable) are never retried.
func (c *Client) Fetch(ctx context.Context, ticker string, opts PredictOptions) (*Prediction, error) {
	if ticker == "" {
		return nil, requestErrorf(KindBadRequest, "a forecast needs a ticker")
	}
	ticker = strings.ToUpper(ticker)

	const maxAttempts = 3
	for attempt := 1; ; attempt++ {
		degraded := opts.Degraded || attempt == maxAttempts
		timeout := c.fullTimeout()
		if degraded {
			timeout = c.degradedTimeout()
		}
		if degraded && !opts.Degraded {
			c.status(ticker, StatusDegraded)
		}

		p, err := c.fetchOnce(ctx, ticker, opts.Exchange, degraded, timeout)
		if err == nil {
			p.Degraded = p.Degraded || degraded
			return p, nil
		}
		if !IsKind(err, KindTimeout) || attempt == maxAttempts {
			return nil, err
		}

		c.status(ticker, StatusRetrying)
		select {
		case <-time.After(c.backoff() * time.Duration(attempt)):
		case <-ctx.Done():
			return nil, fmt.Errorf("forecast for %s abandoned: %w", ticker, ctx.Err())
		}
	}
}

// fetchOnce performs a single forecast request within the given timeout.
func (c *Client) fetchOnce(ctx context.Context, ticker, exchange string, simplify bool, timeout time.Duration) (*Prediction, error) {
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The soft deadline only signals; it never aborts the request. Stopping
	// the timer on every exit path guarantees the signal cannot fire after
	// the request has resolved.
	soft := time.AfterFunc(c.softDeadline(), func() { c.status(ticker, StatusSlow) })
	defer soft.Stop()

	q := url.Values{}
	if exchange != "" {
		q.Set("exchange", exchange)
	}
	if simplify {
		q.Set("simplify", "true")
	}
	addr := fmt.Sprintf("%s/api/predict/%s", strings.TrimRight(c.BaseURL, "/"), url.PathEscape(ticker))
	if len(q) > 0 {
		addr += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, requestErrorf(KindBadRequest, "cannot request forecast for %s: %v", ticker, err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return nil, fmt.Errorf("forecast for %s abandoned: %w", ticker, context.Canceled)
		case errors.Is(err, context.DeadlineExceeded):
			return nil, requestErrorf(KindTimeout, "forecast for %s timed out after %s", ticker, timeout)
		default:
			return nil, requestErrorf(KindUnknown, "forecast for %s failed: %v", ticker, err)
		}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fallthrough to decoding
	case http.StatusNotFound:
		return nil, requestErrorf(KindNotFound, "ticker %q is not recognized", ticker)
	case http.StatusBadRequest:
		return nil, requestErrorf(KindBadRequest, "no forecast is available for %q", ticker)
	case http.StatusTooManyRequests:
		return nil, requestErrorf(KindRateLimited, "forecast service is rate limiting, try again shortly")
	default:
		return nil, requestErrorf(KindUnknown, "forecast service failed for %s: %s", ticker, resp.Status)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, requestErrorf(KindUnknown, "forecast for %s is not valid JSON: %v", ticker, err)
	}
	return NormalizePrediction(ticker, doc)
}

// ErrSuperseded is returned to a fetch that was replaced by a newer fetch
// for the same ticker. Its result must be discarded.
var ErrSuperseded = errors.New("forecast request superseded by a newer one")

// Session adds a stale-response guard on top of a Client: at most one
// forecast request per ticker is in flight, and starting a new one cancels
// and supersedes the previous, so a late answer can never overwrite a newer
// selection. A literal Session over a Client is ready to use.
type Session struct {
	Client *Client

	mu       sync.Mutex
	inflight map[string]*inflightFetch
}

type inflightFetch struct {
	cancel context.CancelFunc
}

// NewSession returns a session over the given client.
func NewSession(client *Client) *Session {
	return &Session{Client: client, inflight: make(map[string]*inflightFetch)}
}

// Fetch behaves like Client.Fetch but enforces the supersession rule.
func (s *Session) Fetch(ctx context.Context, ticker string, opts PredictOptions) (*Prediction, error) {
	ticker = strings.ToUpper(ticker)
	cctx, cancel := context.WithCancel(ctx)
	token := &inflightFetch{cancel: cancel}

	s.mu.Lock()
	if s.inflight == nil {
		s.inflight = make(map[string]*inflightFetch)
	}
	if prev, ok := s.inflight[ticker]; ok {
		prev.cancel()
	}
	s.inflight[ticker] = token
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.inflight[ticker] == token {
			delete(s.inflight, ticker)
		}
		s.mu.Unlock()
		cancel()
	}()

	p, err := s.Client.Fetch(cctx, ticker, opts)
	if err != nil && cctx.Err() == context.Canceled && ctx.Err() == nil {
		return nil, ErrSuperseded
	}
	return p, err
}
