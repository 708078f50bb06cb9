package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/dnahub/internal/client/models"
	"github.com/dmitrijs2005/dnahub/internal/common"
	"github.com/dmitrijs2005/dnahub/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// HTTPClient talks to the community REST API. It is safe for concurrent use.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	metrics *Metrics
	log     logging.Logger
	newID   func() string

	mu             sync.RWMutex
	accessToken    string
	onUnauthorized []func(ctx context.Context, token string)
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests at rps with the given burst.
// rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient validates baseURL and builds a client for it.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logging.Discard(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

// OnUnauthorized registers fn for every 401. fn receives the token the
// rejected request carried, empty for anonymous requests.
func (c *HTTPClient) OnUnauthorized(fn func(ctx context.Context, token string)) {
	c.mu.Lock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
	c.mu.Unlock()
}

func (c *HTTPClient) tokenFor(ctx context.Context) string {
	if token, ok := accessTokenFrom(ctx); ok {
		return token
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *HTTPClient) fireUnauthorized(ctx context.Context, token string) {
	c.mu.RLock()
	handlers := append([]func(context.Context, string){}, c.onUnauthorized...)
	c.mu.RUnlock()

	for _, fn := range handlers {
		fn(ctx, token)
	}
}

// do performs one request. Every call is a single attempt.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := c.newID()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	token := c.tokenFor(ctx)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(method, path, "error", time.Since(start))
		c.log.Warn(ctx, "api call failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return c.mapError(err)
	}
	defer resp.Body.Close()

	c.metrics.observe(method, path, strconv.Itoa(resp.StatusCode), time.Since(start))
	c.log.Debug(ctx, "api call", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode == http.StatusUnauthorized {
		c.fireUnauthorized(ctx, token)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "healthy" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	var resp models.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (string, error) {
	var resp models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, creds, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("login: %w", common.ErrInvalidToken)
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) RefreshToken(ctx context.Context) (string, error) {
	var resp models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("refresh: %w", common.ErrInvalidToken)
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdateCurrentUser(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/api/users/me", nil, upd, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) ListEvents(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events", f.Values(), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *HTTPClient) ListBlogPosts(ctx context.Context, f models.BlogFilter) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	if err := c.do(ctx, http.MethodGet, "/api/blog", f.Values(), nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *HTTPClient) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", f.Values(), nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *HTTPClient) Subscribe(ctx context.Context, sub models.NewsletterSubscription) (string, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/newsletter/subscribe", nil, sub, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Unsubscribe sends the address both as a query parameter and in the body;
// the API reads the former.
func (c *HTTPClient) Unsubscribe(ctx context.Context, email string) (string, error) {
	var resp models.MessageResponse
	q := url.Values{"email": []string{email}}
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/api/newsletter/unsubscribe", q, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) SendContact(ctx context.Context, msg models.ContactMessage) (string, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/contact", nil, msg, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

var _ Client = (*HTTPClient)(nil)
