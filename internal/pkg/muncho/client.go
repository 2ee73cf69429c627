// Package muncho is the HTTP client for the upstream Muncho platform API,
// the system of record behind the dashboard. Every endpoint answers the
// envelope {status, message?, data?}; status:false is an application-level
// failure even on HTTP 200. Transport failures are retried with bounded
// exponential backoff; application failures are not retried here.
package muncho

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the fixed per-request timeout.
	DefaultTimeout = 20 * time.Second
	// DefaultMaxRetries bounds transport-level retries per request.
	DefaultMaxRetries = 3
)

// ErrOffline is returned without touching the network when the connectivity
// probe fails.
var ErrOffline = errors.New("muncho: client is offline")

// Response is the upstream envelope.
type Response struct {
	Status  bool            `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the data payload into v.
func (r *Response) Decode(v interface{}) error {
	if len(r.Data) == 0 {
		return errors.New("muncho: response has no data")
	}
	return json.Unmarshal(r.Data, v)
}

// Entry is one request/response telemetry record.
type Entry struct {
	Method     string
	Path       string
	StatusCode int
	OK         bool
	Message    string
	Attempts   int
	Duration   time.Duration
	At         time.Time
}

// Sink receives a telemetry entry for every request, success and failure.
type Sink interface {
	Record(Entry)
}

type nopSink struct{}

func (nopSink) Record(Entry) {}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport (tests).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithSink sets the telemetry sink.
func WithSink(s Sink) Option { return func(c *Client) { c.sink = s } }

// WithMaxRetries bounds transport retries.
func WithMaxRetries(n int) Option { return func(c *Client) { c.maxRetries = n } }

// WithOnlineCheck replaces the connectivity probe. A nil check disables the
// offline rejection entirely.
func WithOnlineCheck(f func() bool) Option {
	return func(c *Client) {
		c.online = f
		c.probeDisabled = f == nil
	}
}

// WithBackoff replaces the retry delay schedule (tests use a zero delay).
func WithBackoff(f func(attempt int) time.Duration) Option {
	return func(c *Client) { c.backoff = f }
}

// Client talks to the platform API.
type Client struct {
	base       *url.URL
	token      string
	http       *http.Client
	logger     *zap.Logger
	sink       Sink
	maxRetries int
	backoff    func(attempt int) time.Duration

	online        func() bool
	probeDisabled bool

	probeMu   sync.Mutex
	probeAt   time.Time
	probeOK   bool
	probeHost string
}

// New creates a client for the given base URL, authenticating every request
// with the merchant token.
func New(baseURL, token string, logger *zap.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("muncho: invalid base url %q", baseURL)
	}

	c := &Client{
		base:       u,
		token:      token,
		http:       &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
		sink:       nopSink{},
		maxRetries: DefaultMaxRetries,
	}
	c.probeHost = u.Host
	if u.Port() == "" {
		if u.Scheme == "http" {
			c.probeHost = net.JoinHostPort(u.Hostname(), "80")
		} else {
			c.probeHost = net.JoinHostPort(u.Hostname(), "443")
		}
	}
	c.online = c.probeOnline

	for _, opt := range opts {
		opt(c)
	}
	if c.backoff == nil {
		// 2^attempt seconds: 2s, 4s, 8s, ...
		c.backoff = func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		}
	}
	return c, nil
}

// probeOnline dials the API host, caching the verdict briefly so back-to-back
// mutations do not pay a probe each.
func (c *Client) probeOnline() bool {
	c.probeMu.Lock()
	defer c.probeMu.Unlock()
	if time.Since(c.probeAt) < 10*time.Second {
		return c.probeOK
	}
	conn, err := net.DialTimeout("tcp", c.probeHost, 2*time.Second)
	if conn != nil {
		conn.Close()
	}
	c.probeAt = time.Now()
	c.probeOK = err == nil
	return c.probeOK
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// Call wraps an API call as a remote-push closure for optimistic mutations.
func (c *Client) Call(method, path string, body interface{}) func(ctx context.Context) (bool, string, error) {
	return func(ctx context.Context) (bool, string, error) {
		res, err := c.do(ctx, method, path, body)
		if err != nil {
			return false, "", err
		}
		return res.Status, res.Message, nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	start := time.Now()

	if !c.probeDisabled && c.online != nil && !c.online() {
		c.record(Entry{Method: method, Path: path, Message: ErrOffline.Error(), Attempts: 0, Duration: time.Since(start), At: start})
		return nil, ErrOffline
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("muncho: encode request: %w", err)
		}
	}

	fullURL := c.base.String() + path

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return nil, fmt.Errorf("muncho: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt > c.maxRetries || ctx.Err() != nil {
				break
			}
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		env, readErr := decodeEnvelope(resp)
		if readErr != nil {
			c.record(Entry{Method: method, Path: path, StatusCode: resp.StatusCode, Message: readErr.Error(), Attempts: attempt, Duration: time.Since(start), At: start})
			return nil, readErr
		}

		entry := Entry{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			OK:         env.Status,
			Message:    env.Message,
			Attempts:   attempt,
			Duration:   time.Since(start),
			At:         start,
		}
		c.record(entry)
		return env, nil
	}

	c.record(Entry{Method: method, Path: path, Message: lastErr.Error(), Attempts: c.maxRetries + 1, Duration: time.Since(start), At: start})
	return nil, fmt.Errorf("muncho: %s %s: %w", method, path, lastErr)
}

// decodeEnvelope parses the response body; a non-2xx status without a
// parseable envelope is synthesized into a status:false one.
func decodeEnvelope(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("muncho: read response: %w", err)
	}

	var env Response
	if len(raw) > 0 && json.Unmarshal(raw, &env) == nil {
		if resp.StatusCode >= 400 {
			env.Status = false
			if env.Message == "" {
				env.Message = http.StatusText(resp.StatusCode)
			}
		}
		return &env, nil
	}

	if resp.StatusCode >= 400 {
		return &Response{Status: false, Message: http.StatusText(resp.StatusCode)}, nil
	}
	return &Response{Status: true}, nil
}

func (c *Client) record(e Entry) {
	if c.logger != nil {
		fields := []zap.Field{
			zap.String("method", e.Method),
			zap.String("path", e.Path),
			zap.Int("status_code", e.StatusCode),
			zap.Int("attempts", e.Attempts),
			zap.Duration("duration", e.Duration),
		}
		if e.OK {
			c.logger.Info("upstream request", fields...)
		} else {
			c.logger.Warn("upstream request failed", append(fields, zap.String("message", e.Message))...)
		}
	}
	c.sink.Record(e)
}
