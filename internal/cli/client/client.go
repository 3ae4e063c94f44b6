package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/cropwise-dev/cropwise/internal/cli/session"
)

const (
	refreshPath       = "/token/refresh"
	defaultSignInPage = "login"
	userAgent         = "cropwise-cli/1.0"
)

// Client represents an HTTP client for the Cropwise API
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	logger     zerolog.Logger
	signInPage string

	// refreshes shares one in-flight token refresh between concurrent callers
	refreshes singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSignInPage sets the redirect target used when the session expires
func WithSignInPage(page string) Option {
	return func(c *Client) {
		if page != "" {
			c.signInPage = page
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a new API client bound to a session store
func New(baseURL string, store session.Store, opts ...Option) *Client {
	// Ensure baseURL has a scheme
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:      store,
		logger:     zerolog.Nop(),
		signInPage: defaultSignInPage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// BaseURL returns the base URL of the client
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the session store the client reads and writes
func (c *Client) Store() session.Store {
	return c.store
}

// Request describes one API call. Body is kept as bytes so it can be re-sent.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewJSONRequest builds a Request whose body is payload encoded as JSON
func NewJSONRequest(method, path string, payload any) (Request, error) {
	req := Request{Method: method, Path: path}
	if payload == nil {
		return req, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	req.Body = data
	return req, nil
}

// AuthenticatedRequest sends req with the current access token.
// A 401 triggers one refresh and, if it succeeds, exactly one resend whose
// outcome is final. If the refresh fails the session is cleared and a
// *RedirectError to the sign-in page is returned. If ctx ends while waiting
// for a refresh another call started, a *TransportError wrapping ctx's error
// is returned and the session is left alone.
func (c *Client) AuthenticatedRequest(ctx context.Context, req Request) (*http.Response, error) {
	resp, err := c.send(ctx, req, c.headers(req, true))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)

		refreshed, err := c.sharedRefresh(ctx)
		if err != nil {
			// This caller gave up waiting; the session is not its to clear
			return nil, &TransportError{Op: http.MethodPost + " " + refreshPath, Err: err}
		}
		if !refreshed {
			if err := c.store.Clear(); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to clear session")
			}
			c.logger.Info().
				Str("path", req.Path).
				Str("redirect", c.signInPage).
				Msg("Session expired")
			return nil, &RedirectError{Target: c.signInPage, Err: ErrSessionExpired}
		}

		c.logger.Debug().Str("path", req.Path).Msg("Retrying request with refreshed token")
		resp, err = c.send(ctx, req, c.headers(req, true))
		if err != nil {
			return nil, err
		}
	}

	if !isSuccess(resp.StatusCode) {
		return nil, responseError(resp)
	}
	return resp, nil
}

// PublicRequest sends req without credentials. Failures are returned as-is.
func (c *Client) PublicRequest(ctx context.Context, req Request) (*http.Response, error) {
	resp, err := c.send(ctx, req, c.headers(req, false))
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp.StatusCode) {
		return nil, responseError(resp)
	}
	return resp, nil
}

// Refresh exchanges the stored refresh token for a new access token.
// It never returns the underlying error; false means re-authentication is
// needed or the attempt could not complete.
func (c *Client) Refresh(ctx context.Context) bool {
	ok, _ := c.sharedRefresh(ctx)
	return ok
}

// sharedRefresh joins the in-flight refresh or starts one. The refresh runs
// detached from ctx, bounded by the client timeout, so it completes for
// every waiter even if the caller that started it goes away. ctx only
// limits how long this caller waits; its error is returned on cancellation.
func (c *Client) sharedRefresh(ctx context.Context) (bool, error) {
	ch := c.refreshes.DoChan("refresh", func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout())
		defer cancel()
		return c.refresh(refreshCtx), nil
	})

	c.logger.Debug().Msg("Waiting for token refresh")

	select {
	case res := <-ch:
		ok, _ := res.Val.(bool)
		return ok, nil
	case <-ctx.Done():
		c.logger.Debug().Err(ctx.Err()).Msg("Stopped waiting for token refresh")
		return false, ctx.Err()
	}
}

func (c *Client) refreshTimeout() time.Duration {
	if c.httpClient != nil && c.httpClient.Timeout > 0 {
		return c.httpClient.Timeout
	}
	return 30 * time.Second
}

func (c *Client) refresh(ctx context.Context) bool {
	refreshToken, ok := c.store.Get(session.FieldRefreshToken)
	if !ok {
		c.logger.Debug().Msg("No refresh token stored")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, nil)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Failed to create refresh request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The exchange never completed, so the stored session stays as it was
		c.logger.Debug().Err(err).Msg("Token refresh request failed")
		return false
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		c.logger.Info().Int("status", resp.StatusCode).Msg("Token refresh rejected")
		if err := c.store.Clear(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to clear session")
		}
		return false
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.AccessToken == "" {
		c.logger.Debug().Err(err).Msg("Refresh response carried no access token")
		return false
	}

	if err := c.store.SetAccessToken(body.AccessToken); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to store refreshed access token")
		return false
	}

	c.logger.Debug().Msg("Access token refreshed")
	return true
}

// headers merges the JSON default, the caller's headers and, when
// authenticated, a bearer derived from the stored access token
func (c *Client) headers(req Request, authenticated bool) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", userAgent)

	for key, values := range req.Header {
		h[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}

	h.Del("Authorization")
	if authenticated {
		if token, ok := c.store.Get(session.FieldAccessToken); ok {
			h.Set("Authorization", "Bearer "+token)
		}
	}
	return h
}

func (c *Client) send(ctx context.Context, req Request, header http.Header) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header = header

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", req.Path).Msg("Request failed")
		return nil, &TransportError{Op: fmt.Sprintf("%s %s", method, req.Path), Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
