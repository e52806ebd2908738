// Package api is the authenticated transport to the IssueHub REST API and
// the typed endpoints built on it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/issuehub/internal/contract"
	"github.com/felixgeelhaar/issuehub/internal/events"
	"github.com/felixgeelhaar/issuehub/internal/log"
	"github.com/felixgeelhaar/issuehub/internal/metrics"
)

const (
	// DefaultBaseURL is the API root of a local development server
	DefaultBaseURL = "http://localhost:8000/api/v1"

	// DefaultTimeout bounds a single HTTP exchange
	DefaultTimeout = 30 * time.Second

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Credentials supplies the bearer token and purges it when the server
// rejects it.
type Credentials interface {
	Token() (string, error)
	Clear() error
}

// Client is the IssueHub API client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials Credentials
	bus         *events.Bus
	logger      *log.Logger
	metrics     *metrics.Metrics
	validator   *contract.Validator
	userAgent   string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCredentials sets the bearer token source
func WithCredentials(creds Credentials) Option {
	return func(c *Client) {
		c.credentials = creds
	}
}

// WithEventBus sets the bus that receives EventUnauthenticated
func WithEventBus(bus *events.Bus) Option {
	return func(c *Client) {
		c.bus = bus
	}
}

// WithLogger sets the request logger
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics enables request metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithValidator rejects requests the contract does not declare before they
// are sent
func WithValidator(v *contract.Validator) Option {
	return func(c *Client) {
		c.validator = v
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new API client for baseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: "issuehub",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCredentials sets the bearer token source after construction
func (c *Client) SetCredentials(creds Credentials) {
	c.credentials = creds
}

// BaseURL returns the API root requests are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOption adjusts a single call
type RequestOption func(*callOptions)

type callOptions struct {
	form  url.Values
	query url.Values
}

// Form sends values form-encoded instead of a JSON body
func Form(values url.Values) RequestOption {
	return func(o *callOptions) {
		o.form = values
	}
}

// Query appends values to the request query string
func Query(values url.Values) RequestOption {
	return func(o *callOptions) {
		o.query = values
	}
}

// Do performs one request against the API. body is JSON-encoded unless
// Form is given; on 2xx the response is decoded into out when out is
// non-nil and the body is not empty. A 401 purges the credentials and
// publishes EventUnauthenticated before the StatusError is returned.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}, opts ...RequestOption) error {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(o.query) > 0 {
		path += "?" + o.query.Encode()
	}

	var (
		payload     []byte
		contentType string
	)
	switch {
	case o.form != nil:
		payload = []byte(o.form.Encode())
		contentType = contentTypeForm
	case body != nil:
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
		contentType = contentTypeJSON
	}

	if c.validator != nil {
		if err := c.validator.Validate(ctx, method, path, contentType, payload); err != nil {
			return err
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	requestID := uuid.NewString()
	ctx = log.ContextWithRequestID(ctx, requestID)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.credentials != nil {
		token, err := c.credentials.Token()
		if err != nil {
			return fmt.Errorf("failed to read credentials: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger := log.OrDefault(c.logger).WithContext(ctx)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveNetworkFailure(method, path)
		logger.DebugContext(ctx, "request failed", "method", method, "path", path, "error", err)
		return &NetworkError{Method: method, URL: c.baseURL + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveNetworkFailure(method, path)
		return &NetworkError{Method: method, URL: c.baseURL + path, Err: err}
	}

	elapsed := time.Since(start)
	c.metrics.ObserveRequest(method, path, resp.StatusCode, elapsed)
	logger.DebugContext(ctx, "request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", elapsed,
	)

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx, method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(method, path, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func (c *Client) handleUnauthorized(ctx context.Context, method, path string) {
	if c.credentials != nil {
		if err := c.credentials.Clear(); err != nil {
			log.OrDefault(c.logger).WarnContext(ctx, "failed to purge rejected token", "error", err)
		}
	}
	c.metrics.ObserveUnauthorized()

	c.bus.Publish(ctx, events.NewEvent(events.EventUnauthenticated, map[string]interface{}{
		events.KeyMethod:   method,
		events.KeyPath:     path,
		events.KeyStatus:   http.StatusUnauthorized,
		events.KeyBoundary: BoundaryFromContext(ctx),
	}))
}
