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
	"sync"
	"time"

	"github.com/dmitrijs2005/campusshop/internal/client/credentials"
	"github.com/dmitrijs2005/campusshop/internal/common"
	"github.com/dmitrijs2005/campusshop/internal/logging"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"
)

const (
	refreshPath = "/accounts/token/refresh/"

	defaultTimeout = 15 * time.Second
	defaultBackoff = 200 * time.Millisecond
	maxBodySize    = 4 << 20
)

// Client is the authenticated HTTP transport.
type Client struct {
	base    string
	http    *http.Client
	tokens  credentials.Store
	log     logging.Logger
	metrics *Metrics

	timeout time.Duration
	retries uint64
	backoff time.Duration

	refreshGroup singleflight.Group

	mu       sync.Mutex
	nextSub  int
	handlers map[int]func(context.Context)
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout bounds every single attempt, not the request as a whole.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithReadRetries sets how many times a GET is repeated after a transient
// failure and the base of the exponential backoff between attempts.
func WithReadRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = uint64(n)
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// New creates a Client for the API rooted at baseURL, e.g.
// "http://localhost:8000/api".
func New(baseURL string, tokens credentials.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base:     strings.TrimRight(u.String(), "/"),
		http:     &http.Client{},
		tokens:   tokens,
		log:      logging.Nop(),
		timeout:  defaultTimeout,
		retries:  2,
		backoff:  defaultBackoff,
		handlers: make(map[int]func(context.Context)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnUnauthorized registers fn to be called after an unrecoverable 401 has
// discarded the stored credentials. It returns a function that removes fn.
func (c *Client) OnUnauthorized(fn func(context.Context)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.handlers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
	}
}

// HasCredential reports whether an access credential is stored.
func (c *Client) HasCredential(ctx context.Context) bool {
	p, err := c.tokens.Load(ctx)
	return err == nil && p.Access != ""
}

// AccessToken returns the stored access credential, "" if none.
func (c *Client) AccessToken(ctx context.Context) string {
	p, err := c.tokens.Load(ctx)
	if err != nil {
		return ""
	}
	return p.Access
}

// ClearCredentials discards both stored credentials.
func (c *Client) ClearCredentials(ctx context.Context) error {
	return c.tokens.Clear(ctx)
}

type request struct {
	method string
	path   string
	body   any
	params url.Values
	// anonymous requests carry no stored bearer and never trigger a refresh.
	anonymous bool
	// bearer overrides the stored credential; implies no refresh.
	bearer string
}

// Do sends an authenticated request and decodes a 2xx JSON body into out
// (out may be nil).
func (c *Client) Do(ctx context.Context, method, path string, body any, params url.Values, out any) error {
	return c.do(ctx, request{method: method, path: path, body: body, params: params}, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	access := r.bearer
	if !r.anonymous && r.bearer == "" {
		access = c.AccessToken(ctx)
	}

	raw, err := c.send(ctx, r, access)
	if err != nil && !r.anonymous && r.bearer == "" && isUnauthorized(err) {
		if rerr := c.refresh(ctx, access); rerr != nil {
			c.log.Warn(ctx, "credential refresh failed", "path", r.path, "error", rerr)
			c.expire(ctx)
			return ErrSessionExpired
		}

		raw, err = c.send(ctx, r, c.AccessToken(ctx))
		if err != nil && isUnauthorized(err) {
			c.log.Warn(ctx, "request rejected after refresh", "path", r.path)
			c.expire(ctx)
			return ErrSessionExpired
		}
	}
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ServerError{
			Status:  http.StatusOK,
			Problem: ErrorMessage(fmt.Sprintf("unexpected response from %s", r.path)),
			Body:    raw,
		}
	}
	return nil
}

// send performs the request, repeating GETs on transient failures.
func (c *Client) send(ctx context.Context, r request, access string) ([]byte, error) {
	if r.method != http.MethodGet || c.retries == 0 {
		return c.attempt(ctx, r, access)
	}

	var raw []byte
	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		raw, err = c.attempt(ctx, r, access)
		if err != nil && isTransient(err) {
			c.metrics.retried()
			c.log.Debug(ctx, "retrying read", "path", r.path, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	return raw, err
}

func (c *Client) attempt(ctx context.Context, r request, access string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.base + r.path
	if len(r.params) > 0 {
		target += "?" + r.params.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", r.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(r.method, 0, time.Since(start))
		if ctxErr := context.Cause(ctx); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return nil, ctxErr
		}
		return nil, &NetworkError{Method: r.method, Path: r.path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.metrics.observe(r.method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &NetworkError{Method: r.method, Path: r.path, Err: err}
	}

	c.log.Debug(ctx, "api request", "method", r.method, "path", r.path, "status", resp.StatusCode, "request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return raw, classify(resp.StatusCode, raw)
	}
	return raw, nil
}

// refresh exchanges the refresh credential for a new access credential.
// Concurrent callers share one exchange. stale is the access credential
// the failed request used; if the store already holds a different one,
// another caller refreshed in the meantime and nothing is sent.
func (c *Client) refresh(ctx context.Context, stale string) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		pair, err := c.tokens.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load credentials: %w", err)
		}
		if pair.Access != "" && pair.Access != stale {
			return nil, nil
		}
		if pair.Refresh == "" {
			c.metrics.refreshed(false)
			return nil, errors.New("no refresh credential")
		}

		var resp struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		}
		err = c.do(ctx, request{
			method:    http.MethodPost,
			path:      refreshPath,
			body:      map[string]string{"refresh": pair.Refresh},
			anonymous: true,
		}, &resp)
		if err == nil && resp.Access == "" {
			err = errors.New("refresh response without access credential")
		}
		if err != nil {
			c.metrics.refreshed(false)
			return nil, err
		}

		next := credentials.Pair{Access: resp.Access, Refresh: pair.Refresh}
		if resp.Refresh != "" {
			next.Refresh = resp.Refresh
		}
		if err := c.tokens.Save(ctx, next); err != nil {
			c.metrics.refreshed(false)
			return nil, fmt.Errorf("save credentials: %w", err)
		}
		c.metrics.refreshed(true)
		c.log.Debug(ctx, "credential refreshed", "rotated", resp.Refresh != "")
		return nil, nil
	})
	return err
}

// expire discards the credentials and notifies the unauthorized handlers.
func (c *Client) expire(ctx context.Context) {
	if err := c.tokens.Clear(ctx); err != nil {
		c.log.Error(ctx, "clear credentials", "error", err)
	}

	c.mu.Lock()
	handlers := make([]func(context.Context), 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(ctx)
	}
}

func isUnauthorized(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == http.StatusUnauthorized
}

func isTransient(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var se *ServerError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}
