package papertrade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Quote is the latest market data for one stock.
type Quote struct {
	Ticker        string
	Price         Money
	Change        Money
	ChangePercent decimal.Decimal
	Volume        int64
}

// QuoteClient fetches batched quotes from the market feed. Requests are
// spaced at least one second apart to stay under the feed's rate limit.
type QuoteClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// MinInterval is the minimum spacing between requests, one second when
	// zero.
	MinInterval time.Duration

	once    sync.Once
	limiter *rate.Limiter
}

func (c *QuoteClient) interval() time.Duration {
	if c.MinInterval > 0 {
		return c.MinInterval
	}
	return time.Second
}

func (c *QuoteClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// wait blocks until the next request slot. The first request goes through
// immediately.
func (c *QuoteClient) wait(ctx context.Context) error {
	c.once.Do(func() {
		c.limiter = rate.NewLimiter(rate.Every(c.interval()), 1)
	})
	return c.limiter.Wait(ctx)
}

// Quotes fetches the latest quotes for all tickers in one batched request.
// A rate-limited response is retried exactly once after the next request
// slot; a second one surfaces as a RequestError of kind KindRateLimited.
func (c *QuoteClient) Quotes(ctx context.Context, tickers []string) (map[string]Quote, error) {
	if len(tickers) == 0 {
		return map[string]Quote{}, nil
	}
	upper := make([]string, len(tickers))
	for i, t := range tickers {
		upper[i] = strings.ToUpper(t)
	}

	q := url.Values{}
	q.Set("tickers", strings.Join(upper, ","))
	addr := fmt.Sprintf("%s/api/quotes?%s", strings.TrimRight(c.BaseURL, "/"), q.Encode())

	for attempt := 0; ; attempt++ {
		if err := c.wait(ctx); err != nil {
			return nil, fmt.Errorf("quotes abandoned: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return nil, requestErrorf(KindBadRequest, "cannot request quotes: %v", err)
		}
		resp, err := c.httpClient().Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("quotes abandoned: %w", err)
			}
			return nil, requestErrorf(KindUnknown, "quote feed failed: %v", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			delay := retryAfter(resp, c.interval())
			resp.Body.Close()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("quotes abandoned: %w", ctx.Err())
			}
			continue
		}

		quotes, err := decodeQuotes(resp)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		byTicker := make(map[string]Quote, len(quotes))
		for _, quote := range quotes {
			byTicker[quote.Ticker] = quote
		}
		return byTicker, nil
	}
}

// Trending returns the quotes the market feed currently lists as trending.
func (c *QuoteClient) Trending() ([]Quote, error) {
	var doc any
	addr := strings.TrimRight(c.BaseURL, "/") + "/api/trending"
	if err := jwget(c.httpClient(), addr, &doc); err != nil {
		return nil, requestErrorf(KindUnknown, "trending feed failed: %v", err)
	}
	return parseQuotes(doc)
}

// retryAfter honors a Retry-After header in seconds, falling back to def.
func retryAfter(resp *http.Response, def time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}

func decodeQuotes(resp *http.Response) ([]Quote, error) {
	switch resp.StatusCode {
	case http.StatusOK:
		// fallthrough to decoding
	case http.StatusNotFound:
		return nil, requestErrorf(KindNotFound, "no quotes for the requested tickers")
	case http.StatusBadRequest:
		return nil, requestErrorf(KindBadRequest, "quote feed rejected the request")
	case http.StatusTooManyRequests:
		return nil, requestErrorf(KindRateLimited, "quote feed is rate limiting, try again shortly")
	default:
		return nil, requestErrorf(KindUnknown, "quote feed failed: %s", resp.Status)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, requestErrorf(KindUnknown, "quote feed answered invalid JSON: %v", err)
	}
	return parseQuotes(doc)
}

// parseQuotes reads the loose upstream shape: either a bare array of quote
// objects or an object wrapping one under "quotes" or "trending".
func parseQuotes(doc any) ([]Quote, error) {
	list, ok := doc.([]any)
	if !ok {
		if m, isMap := doc.(map[string]any); isMap {
			for _, key := range []string{"quotes", "trending"} {
				if l, found := m[key].([]any); found {
					list, ok = l, true
					break
				}
			}
		}
	}
	if !ok {
		return nil, requestErrorf(KindUnknown, "quote feed answered an unexpected shape")
	}

	var quotes []Quote
	for _, entry := range list {
		m, isMap := entry.(map[string]any)
		if !isMap {
			continue
		}
		quote, err := parseQuote(m)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

func parseQuote(m map[string]any) (Quote, error) {
	ticker, _ := m["symbol"].(string)
	if ticker == "" {
		ticker, _ = m["ticker"].(string)
	}
	if ticker == "" {
		return Quote{}, requestErrorf(KindUnknown, "quote entry has no ticker")
	}

	price, err := asDecimal(m["price"])
	if err != nil {
		return Quote{}, requestErrorf(KindUnknown, "quote for %s has no usable price: %v", ticker, err)
	}

	quote := Quote{Ticker: strings.ToUpper(ticker), Price: M(price)}
	// change, changePercent and volume are decorative; a missing one is zero.
	if change, err := asDecimal(m["change"]); err == nil {
		quote.Change = M(change)
	}
	pct := m["changePercent"]
	if pct == nil {
		pct = m["change_percent"]
	}
	if changePct, err := asDecimal(pct); err == nil {
		quote.ChangePercent = changePct
	}
	if volume, err := asDecimal(m["volume"]); err == nil {
		quote.Volume = volume.IntPart()
	}
	return quote, nil
}
