// Package gateway is the typed HTTP client for the analytics backend.
//
// Every operation returns either a decoded payload or an *Error. Reads are
// retried on transport failures, 429 and 5xx; writes are attempted once.
// All requests share one rate limiter.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"

	"github.com/abelbrown/growthdesk/internal/otel"
)

// maxBody caps how much of a response is read.
const maxBody = 10 << 20

// Options configures a Client. Zero values take defaults.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	RetryAttempts uint
	RetryDelay    time.Duration
	Events        *otel.Logger
}

// Client talks to the backend. Safe for concurrent use.
type Client struct {
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	attempts   uint
	retryDelay time.Duration
	events     *otel.Logger
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 10
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 250 * time.Millisecond
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		client:     &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		attempts:   opts.RetryAttempts,
		retryDelay: opts.RetryDelay,
		events:     opts.Events,
	}
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs an idempotent read with retries.
func (c *Client) get(ctx context.Context, op, path string, out any) error {
	return retry.Do(
		func() error { return c.once(ctx, op, http.MethodGet, path, nil, out) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var ge *Error
			return errors.As(err, &ge) && ge.retryable() && ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			c.events.Emit(otel.Event{
				Level: otel.LevelWarn, Kind: otel.KindRetry, Comp: "gateway",
				Op: op, Count: int(n) + 1, Err: err.Error(),
			})
		}),
	)
}

// send performs a single non-idempotent request.
func (c *Client) send(ctx context.Context, op, method, path string, body, out any) error {
	return c.once(ctx, op, method, path, body, out)
}

func (c *Client) once(ctx context.Context, op, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Op: op, Err: fmt.Errorf("rate limiter wait: %w", err)}
	}

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindRequest, Comp: "gateway", Op: op, Msg: method + " " + path})

	resp, err := c.client.Do(req)
	if err != nil {
		gerr := &Error{Op: op, Err: err}
		c.fail(gerr, time.Since(start))
		return gerr
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	resp.Body.Close()
	if err != nil {
		gerr := &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
		c.fail(gerr, time.Since(start))
		return gerr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gerr := &Error{Op: op, Status: resp.StatusCode, Message: serverMessage(raw)}
		c.fail(gerr, time.Since(start))
		return gerr
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			// A truncated body on a 2xx is treated as a server fault.
			gerr := &Error{Op: op, Status: http.StatusBadGateway, Err: fmt.Errorf("decode response: %w", err)}
			c.fail(gerr, time.Since(start))
			return gerr
		}
	}

	c.events.Emit(otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindComplete, Comp: "gateway",
		Op: op, Status: resp.StatusCode, Dur: time.Since(start),
	})
	return nil
}

func (c *Client) fail(err *Error, dur time.Duration) {
	c.events.Emit(otel.Event{
		Level: otel.LevelError, Kind: otel.KindHTTPErr, Comp: "gateway",
		Op: err.Op, Status: err.Status, Dur: dur, Err: err.Error(),
	})
}

// serverMessage extracts {"error": "..."} from a failure body.
func serverMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return strings.TrimSpace(body.Error)
}

func artistPath(id, suffix string) string {
	return "/artists/" + url.PathEscape(id) + suffix
}

func advancedPath(prefix, id, suffix string) string {
	return "/advanced" + prefix + url.PathEscape(id) + suffix
}
