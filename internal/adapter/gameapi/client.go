// Package gameapi is the HTTP JSON client of the external hangman game service.
package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"github.com/webitel/hangman-client/config"
	"github.com/webitel/hangman-client/internal/domain/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/webitel/hangman-client/internal/adapter/gameapi"

	pathNew    = "api/new"
	pathGuess  = "api/guess"
	pathState  = "api/state"
	pathHealth = "api/health"

	// maxBodySize caps how much of a response is read; snapshots are tiny.
	maxBodySize = 1 << 20
)

// guessRequest is the body of POST /api/guess.
type guessRequest struct {
	GameID string `json:"gameId"`
	Letter string `json:"letter"`
}

type errorBody struct {
	Error string `json:"error"`
}

type healthBody struct {
	OK bool `json:"ok"`
}

// Client talks to the game service. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	logger     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New builds a client for cfg.Service. The breaker is installed only when cfg.Breaker.Enabled.
func New(cfg *config.Config, tp trace.TracerProvider, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.Service.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("gameapi: invalid base url %q: %w", cfg.Service.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gameapi: unsupported scheme %q", base.Scheme)
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Service.Timeout},
		tracer:     tp.Tracer(instrumentationName),
		propagator: propagation.TraceContext{},
		logger:     logger,
	}

	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker, logger)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newBreaker(cfg config.BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "game-service",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// [FAULT_CLASSIFICATION] Rejected requests (4xx) say nothing about service health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return !apiErr.IsServerFault()
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("BREAKER_STATE_CHANGED",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

// NewGame calls POST /api/new.
func (c *Client) NewGame(ctx context.Context) (model.GameState, error) {
	return c.snapshot(ctx, "NewGame", http.MethodPost, c.baseURL.JoinPath(pathNew), nil)
}

// Guess calls POST /api/guess. letter is expected to be normalised already.
func (c *Client) Guess(ctx context.Context, gameID, letter string) (model.GameState, error) {
	body := guessRequest{GameID: gameID, Letter: letter}
	return c.snapshot(ctx, "Guess", http.MethodPost, c.baseURL.JoinPath(pathGuess), body)
}

// State calls GET /api/state/{id}.
func (c *Client) State(ctx context.Context, gameID string) (model.GameState, error) {
	u := c.baseURL.JoinPath(pathState, url.PathEscape(gameID))
	return c.snapshot(ctx, "State", http.MethodGet, u, nil)
}

// Health calls GET /api/health and fails unless the service reports ok.
func (c *Client) Health(ctx context.Context) error {
	raw, err := c.call(ctx, "Health", http.MethodGet, c.baseURL.JoinPath(pathHealth), nil)
	if err != nil {
		return err
	}

	var h healthBody
	if err := json.Unmarshal(raw, &h); err != nil {
		return fmt.Errorf("gameapi: decode health: %w", err)
	}
	if !h.OK {
		return errors.New("gameapi: service reported not ok")
	}
	return nil
}

// snapshot performs a call that answers with a GameState. A 2xx body that is
// not a JSON object decodes to the zero snapshot, whose unknown status makes
// every control render disabled.
func (c *Client) snapshot(ctx context.Context, op, method string, u *url.URL, body any) (model.GameState, error) {
	raw, err := c.call(ctx, op, method, u, body)
	if err != nil {
		return model.GameState{}, err
	}

	var state model.GameState
	if err := json.Unmarshal(raw, &state); err != nil {
		c.logger.Warn("GAMEAPI_UNDECODABLE_SNAPSHOT",
			"op", op,
			"err", err,
		)
		return model.GameState{}, nil
	}
	return state, nil
}

func (c *Client) call(ctx context.Context, op, method string, u *url.URL, body any) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "gameapi."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", u.Path),
		),
	)
	defer span.End()

	raw, err := c.execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, u, body)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			span.SetAttributes(attribute.Int("http.response.status_code", apiErr.StatusCode))
		}
		return nil, err
	}
	return raw, nil
}

// execute runs fn through the breaker when one is installed.
func (c *Client) execute(fn func() ([]byte, error)) ([]byte, error) {
	if c.breaker == nil {
		return fn()
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if err != nil {
		return nil, err
	}

	raw, _ := res.([]byte)
	return raw, nil
}

func (c *Client) roundTrip(ctx context.Context, method string, u *url.URL, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gameapi: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("gameapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gameapi: %s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("gameapi: read %s %s: %w", method, u.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: eb.Error}
	}
	return raw, nil
}
