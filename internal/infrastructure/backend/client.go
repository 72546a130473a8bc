// Package backend is the HTTP client for the external rental REST API.
// Every call carries the current session's bearer token, and a 401 from the
// backend destroys the session.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"autogest/internal/core/apperror"
	"autogest/internal/domain/session"
	"autogest/internal/metrics"
	"autogest/pkg/logger"
)

var tracer = otel.Tracer("autogest/backend")

const breakerName = "rental-backend"

// maxBodySize caps how much of a backend reply is read.
const maxBodySize = 4 << 20

// BreakerConfig configures the fail-fast breaker around backend calls.
type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// Config holds backend client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker BreakerConfig
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://localhost:7057/api",
		Timeout: 10 * time.Second,
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
		},
	}
}

// Option configures a Client.
type Option func(*Client)

// WithSessionRejectedHook registers fn to run after a 401 destroyed the session.
func WithSessionRejectedHook(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onRejected = fn }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// Client talks to the rental backend.
type Client struct {
	baseURL    string
	http       *http.Client
	cb         *gobreaker.CircuitBreaker[*reply]
	base       http.RoundTripper
	onRejected func(ctx context.Context)
}

// reply is a fully read backend response.
type reply struct {
	status int
	body   []byte
}

// serverError marks a 5xx reply so the breaker counts it as a failure.
type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("backend returned %d", e.status)
}

// NewClient creates a backend client bound to store.
func NewClient(cfg Config, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		base:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &sessionTransport{
			base:       c.base,
			store:      store,
			onRejected: c.onRejected,
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	bc := cfg.Breaker
	c.cb = gobreaker.NewCircuitBreaker[*reply](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "backend circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
		// Client errors and abandoned requests say nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return c
}

// request describes one backend call.
type request struct {
	method string
	path   string
	in     any
	out    any
	// login switches 4xx mapping to credential rejection.
	login bool
}

func (c *Client) do(ctx context.Context, r request) error {
	ctx, span := tracer.Start(ctx, "backend "+r.method+" "+r.path,
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var body []byte
	if r.in != nil {
		var err error
		if body, err = json.Marshal(r.in); err != nil {
			return apperror.NewInternal(fmt.Errorf("marshal %s body: %w", r.path, err))
		}
	}

	start := time.Now()
	rep, err := c.cb.Execute(func() (*reply, error) {
		return c.send(ctx, r.method, r.path, body)
	})
	elapsed := time.Since(start)

	var se *serverError
	if err != nil && !errors.As(err, &se) {
		metrics.RecordBackendRequest(r.method, "error", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Warn(ctx, "backend unreachable", "method", r.method, "path", r.path, "error", err)
		return apperror.NewBackendUnavailable(err)
	}

	metrics.RecordBackendRequest(r.method, statusClass(rep.status), elapsed)
	span.SetAttributes(attribute.Int("http.status_code", rep.status))

	if rep.status >= 200 && rep.status < 300 {
		if r.out != nil && len(bytes.TrimSpace(rep.body)) > 0 {
			if err := json.Unmarshal(rep.body, r.out); err != nil {
				span.RecordError(err)
				return apperror.NewInternal(fmt.Errorf("decode %s reply: %w", r.path, err))
			}
		}
		return nil
	}

	span.SetStatus(codes.Error, http.StatusText(rep.status))
	return statusError(rep, r.login)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*reply, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}

	rep := &reply{status: resp.StatusCode, body: raw}
	if resp.StatusCode >= 500 {
		return rep, &serverError{status: resp.StatusCode}
	}
	return rep, nil
}

// statusError maps a non-2xx reply to an AppError.
func statusError(rep *reply, login bool) error {
	msg := decodeMessage(rep.body)

	switch {
	case login && rep.status < 500:
		return apperror.NewUnauthorized(msg).WithDetail("backend_status", rep.status)
	case rep.status == http.StatusUnauthorized:
		return apperror.NewSessionExpired()
	case rep.status == http.StatusForbidden:
		if msg == "" {
			msg = "No tienes permisos para realizar esta acción"
		}
		return apperror.NewForbidden(msg)
	case rep.status == http.StatusNotFound:
		e := apperror.NewNotFound("recurso", nil)
		if msg != "" {
			e.Message = msg
		}
		return e
	case rep.status < 500:
		return apperror.NewValidation(msg).WithDetail("backend_status", rep.status)
	default:
		return apperror.NewBackend(rep.status, msg)
	}
}

func decodeMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return strings.TrimSpace(eb.Message)
}

func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}

// BreakerState reports the breaker state name.
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}
