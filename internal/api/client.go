// Package api provides the client for the iiko RESTO API.
// It handles request construction, retries of transient failures and
// decoding of the cash shift and OLAP report payloads.
package api

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

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/KirillkoTankisto/iiko-bot/internal/dates"
	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
	"github.com/KirillkoTankisto/iiko-bot/internal/infra/metrics"
)

const (
	apiPrefix       = "/resto/api"
	maxResponseSize = 8 * 1024 * 1024
)

// Client handles communication with iiko servers.
// It is stateless with respect to servers: every call names the server
// address it targets, so one client serves the whole registry.
type Client struct {
	// httpClient carries the per-attempt timeout
	httpClient *http.Client
	// maxRetries bounds retries of transient failures
	maxRetries uint64
	// initialInterval is the first backoff delay
	initialInterval time.Duration
	logger          *zap.Logger
	metrics         *metrics.Recorder
}

// Option configures optional Client settings.
type Option func(*Client)

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithInitialInterval sets the first exponential backoff delay.
func WithInitialInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.initialInterval = d
		}
	}
}

// WithLogger attaches a logger used for retry notices.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = rec
	}
}

// NewClient creates a new iiko API client.
// The timeout applies to every single HTTP attempt.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:      3,
		initialInterval: 500 * time.Millisecond,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a session key.
//
// Parameters:
// - server: server address, "host[:port]" or a full base URL
// - login: iiko user login
// - passHash: lowercase hex SHA-1 of the password
//
// Returns:
// - string: the session key
// - error: any error that occurred during the request
func (c *Client) Login(ctx context.Context, server, login, passHash string) (string, error) {
	query := url.Values{}
	query.Set("login", login)
	query.Set("pass", passHash)

	body, err := c.do(ctx, "auth", http.MethodGet, server, []string{"auth"}, query, nil)
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", &RequestError{Op: "auth", Err: errors.New("empty session key")}
	}
	return token, nil
}

// Logout releases a session key. The response body is ignored.
func (c *Client) Logout(ctx context.Context, server, token string) error {
	query := url.Values{}
	query.Set("key", token)

	_, err := c.do(ctx, "logout", http.MethodGet, server, []string{"logout"}, query, nil)
	return err
}

// ListShifts retrieves cash shifts opened within the range, any status.
//
// Returns:
// - []model.Shift: shifts in the order the server returned them (oldest first)
// - error: any error that occurred during the request
func (c *Client) ListShifts(ctx context.Context, server, token string, r dates.Range) ([]model.Shift, error) {
	query := url.Values{}
	query.Set("openDateFrom", r.From)
	query.Set("openDateTo", r.To)
	query.Set("status", "ANY")
	query.Set("key", token)

	body, err := c.do(ctx, "cashshifts", http.MethodGet, server, []string{"v2", "cashshifts", "list"}, query, nil)
	if err != nil {
		return nil, err
	}

	var shifts []model.Shift
	if err := json.Unmarshal(body, &shifts); err != nil {
		return nil, &RequestError{Op: "decode cashshifts", Err: err}
	}
	return shifts, nil
}

// OlapReport posts an OLAP report request and returns the flat rows.
func (c *Client) OlapReport(ctx context.Context, server, token string, req OlapRequest) ([]model.OlapRow, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &RequestError{Op: "encode olap", Err: err}
	}

	query := url.Values{}
	query.Set("key", token)

	body, err := c.do(ctx, "olap", http.MethodPost, server, []string{"v2", "reports", "olap"}, query, payload)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []model.OlapRow `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &RequestError{Op: "decode olap", Err: err}
	}
	return result.Data, nil
}

func (c *Client) do(ctx context.Context, op, method, server string, path []string, query url.Values, payload []byte) ([]byte, error) {
	endpoint, err := Endpoint(server, path...)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	retrying := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)

	started := time.Now()
	var body []byte
	attempt := func() error {
		var attemptErr error
		body, attemptErr = c.once(ctx, op, method, endpoint, payload)
		if attemptErr == nil {
			return nil
		}
		if IsTransient(attemptErr) && ctx.Err() == nil {
			return attemptErr
		}
		return backoff.Permanent(attemptErr)
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("iiko request failed, retrying",
			zap.String("op", op),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err = backoff.RetryNotify(attempt, retrying, notify)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if IsTransient(err) {
			outcome = "transient"
		}
	}
	c.metrics.RemoteRequest(ctx, op, outcome, time.Since(started))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) once(ctx context.Context, op, method, endpoint string, payload []byte) ([]byte, error) {
	var bodyReader io.Reader
	if len(payload) > 0 {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{
			Op:        op,
			Transient: isTransientNetworkError(err),
			Err:       err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &RequestError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Transient:  isTransientNetworkError(err),
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, &RequestError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Transient:  isTransientStatus(resp.StatusCode),
			Err:        errors.New(message),
		}
	}

	return body, nil
}

// Endpoint builds https://<address>/resto/api/<path...>. An address that
// already carries a scheme keeps it.
func Endpoint(server string, path ...string) (string, error) {
	address := strings.TrimRight(strings.TrimSpace(server), "/")
	if address == "" {
		return "", errors.New("server address is empty")
	}
	if !strings.Contains(address, "://") {
		address = "https://" + address
	}

	parsed, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("parse server address: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid server address: %s", server)
	}

	var b strings.Builder
	b.WriteString(address)
	b.WriteString(apiPrefix)
	for _, element := range path {
		b.WriteByte('/')
		b.WriteString(element)
	}
	return b.String(), nil
}
