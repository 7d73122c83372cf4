// Package oracle wraps the external prediction service. The oracle's
// reasoning is opaque; its contract is JSON-in/JSON-out over HTTP, and this
// package is the sole failure-containment point for its unavailability.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Endpoints holds the three oracle endpoint URLs. They are injected
// configuration, never compile-time constants, so tests can substitute fakes.
type Endpoints struct {
	Forecast string
	Reorder  string
	Pricing  string
}

// Result is the outcome of one oracle call: either a structured field map or
// a contained failure message, never both.
type Result struct {
	OK      bool
	Fields  map[string]any
	Message string
}

// Success wraps a decoded oracle response.
func Success(fields map[string]any) Result {
	return Result{OK: true, Fields: fields}
}

// Failure wraps a contained oracle failure.
func Failure(msg string) Result {
	return Result{Message: msg}
}

// Map renders the result the way callers serialize it: the oracle's own
// fields on success, or a single-key error mapping on failure.
func (r Result) Map() map[string]any {
	if r.OK {
		return r.Fields
	}
	return map[string]any{"error": r.Message}
}

// Int extracts an integer field from a successful result. JSON numbers decode
// as float64; whole-valued floats are accepted.
func (r Result) Int(key string) (int, bool) {
	if !r.OK {
		return 0, false
	}
	switch v := r.Fields[key].(type) {
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// Client issues prediction queries against the oracle endpoints. Calls never
// return an error or panic past this boundary: every transport failure,
// non-2xx status, empty body, or unparseable body becomes a failure Result.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
}

// NewClient creates a Client for the given endpoints. A timeout <= 0 selects
// the default bound; oracle calls are never allowed to stall unbounded.
func NewClient(eps Endpoints, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoints:  eps,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forecast asks the demand forecasting endpoint.
func (c *Client) Forecast(ctx context.Context, query string) Result {
	return c.call(ctx, c.endpoints.Forecast, query)
}

// Reorder asks the inventory reorder endpoint.
func (c *Client) Reorder(ctx context.Context, query string) Result {
	return c.call(ctx, c.endpoints.Reorder, query)
}

// Price asks the price optimization endpoint.
func (c *Client) Price(ctx context.Context, query string) Result {
	return c.call(ctx, c.endpoints.Pricing, query)
}

// queryEnvelope is the JSON body every oracle endpoint accepts.
type queryEnvelope struct {
	Query string `json:"query"`
}

func (c *Client) call(ctx context.Context, url, query string) Result {
	body, err := json.Marshal(queryEnvelope{Query: query})
	if err != nil {
		return Failure(fmt.Sprintf("encoding oracle query: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Failure(fmt.Sprintf("creating oracle request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Failure(fmt.Sprintf("oracle request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failure(fmt.Sprintf("oracle returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failure(fmt.Sprintf("reading oracle response: %v", err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Failure("oracle returned an empty body")
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Failure(fmt.Sprintf("oracle response is not a JSON object: %v", err))
	}

	return Success(fields)
}

// String implements fmt.Stringer for log output.
func (r Result) String() string {
	if r.OK {
		keys := make([]string, 0, len(r.Fields))
		for k := range r.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Sprintf("ok(%s)", strings.Join(keys, ","))
	}
	return fmt.Sprintf("failure(%s)", r.Message)
}
