package papertrade

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Prediction is a validated price forecast for one stock.
type Prediction struct {
	Ticker       string
	CurrentPrice Money
	Dates        []string // forecast day labels, "YYYY-MM-DD"
	Prices       []Money  // index-aligned with Dates
	Confidence   decimal.Decimal
	Degraded     bool
}

// ValidationReason classifies why a forecast payload was unusable.
type ValidationReason string

const (
	// EmptySeries marks a payload with no usable forecast: a missing or
	// empty date or price series, or a current price that is not numeric.
	EmptySeries ValidationReason = "empty-series"
	// BadValue marks a payload with a non-numeric entry inside an otherwise
	// present series.
	BadValue ValidationReason = "bad-value"
)

// ValidationError is returned when a forecast payload cannot be normalized
// into a Prediction.
type ValidationError struct {
	Reason ValidationReason
	msg    string
}

func (e *ValidationError) Error() string { return e.msg }

func invalidf(reason ValidationReason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, msg: fmt.Sprintf(format, args...)}
}

// NormalizePrediction turns a decoded forecast payload of loose shape into a
// validated Prediction. The upstream emits several field spellings and
// sometimes numbers as strings; normalization smooths all of that out:
//
//   - predicted prices come from "predicted_prices" or "prediction_prices",
//     the ticker from "ticker" or "symbol", first non-empty wins;
//   - an empty date or price series, or an unusable current price, is an
//     EmptySeries error;
//   - a confidence in [0,1) is scaled once to the 0-100 range, a value
//     already on that range passes through, so normalizing twice is a no-op;
//   - a length mismatch between dates and prices truncates both to the
//     shorter series, never an error.
func NormalizePrediction(ticker string, doc any) (*Prediction, error) {
	p := &Prediction{Ticker: ticker}

	if jval := lookup(doc, "$.ticker", "$.symbol"); jval != nil {
		if s, ok := jval.(string); ok && s != "" {
			p.Ticker = strings.ToUpper(s)
		}
	}

	current, err := asDecimal(lookup(doc, "$.current_price"))
	if err != nil {
		return nil, invalidf(EmptySeries, "forecast for %s has no usable current price: %v", p.Ticker, err)
	}
	p.CurrentPrice = M(current)

	dates, _ := lookup(doc, "$.prediction_dates").([]any)
	prices, _ := lookup(doc, "$.predicted_prices").([]any)
	if len(prices) == 0 {
		prices, _ = lookup(doc, "$.prediction_prices").([]any)
	}
	if len(dates) == 0 || len(prices) == 0 {
		return nil, invalidf(EmptySeries, "forecast for %s has an empty series (%d dates, %d prices)", p.Ticker, len(dates), len(prices))
	}

	// A mismatch truncates to the shorter series rather than failing the
	// whole forecast.
	n := len(dates)
	if len(prices) < n {
		n = len(prices)
	}
	for _, jd := range dates[:n] {
		s, ok := jd.(string)
		if !ok {
			return nil, invalidf(BadValue, "forecast for %s has a non-string date %v", p.Ticker, jd)
		}
		p.Dates = append(p.Dates, s)
	}
	for _, jp := range prices[:n] {
		d, err := asDecimal(jp)
		if err != nil {
			return nil, invalidf(BadValue, "forecast for %s has a non-numeric price: %v", p.Ticker, err)
		}
		p.Prices = append(p.Prices, M(d))
	}

	if jval := lookup(doc, "$.confidence"); jval != nil {
		c, err := asDecimal(jval)
		if err != nil {
			return nil, invalidf(BadValue, "forecast for %s has a non-numeric confidence: %v", p.Ticker, err)
		}
		p.Confidence = normalizeConfidence(c)
	}

	if jval := lookup(doc, "$.simplified", "$.degraded"); jval != nil {
		if b, ok := jval.(bool); ok {
			p.Degraded = b
		}
	}

	return p, nil
}

// normalizeConfidence maps an upstream confidence onto the 0-100 scale.
// Fractions in [0,1) are scaled exactly once; anything else passes through,
// clamped so the stored record always honors the range.
func normalizeConfidence(c decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	if !c.IsNegative() && c.LessThan(one) {
		c = c.Mul(hundred)
	}
	if c.IsNegative() {
		return decimal.Zero
	}
	if c.GreaterThan(hundred) {
		return hundred
	}
	return c
}

// lookup evaluates the given jsonpath expressions against doc and returns
// the first present value, nil when none match.
func lookup(doc any, paths ...string) any {
	for _, path := range paths {
		jval, err := jsonpath.Get(path, doc)
		if err != nil || jval == nil {
			continue
		}
		return jval
	}
	return nil
}

// asDecimal reads a JSON value that should be a number but sometimes arrives
// as a string.
func asDecimal(jval any) (decimal.Decimal, error) {
	switch v := jval.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("value is missing")
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		// sometimes the upstream returns the value as a localized string
		s := strings.ReplaceAll(v, ",", "")
		s = strings.ReplaceAll(s, " ", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return decimal.Zero, fmt.Errorf("value is an invalid string %q: %w", v, err)
		}
		return decimal.NewFromFloat(f), nil
	default:
		return decimal.Zero, fmt.Errorf("value %v is neither a float nor a string", jval)
	}
}
