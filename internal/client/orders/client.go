package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"cleanorder-api/internal/pkg/pagination"
	"cleanorder-api/internal/pkg/response"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultCookieName = "AuthToken"

	// listPageSize asks for the server's largest page
	listPageSize = pagination.MaxLimit
	// maxListPages stops a server that keeps claiming has_next
	maxListPages = 100
)

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Options configures a Client
type Options struct {
	// BaseURL is the server root, e.g. https://api.example.com
	BaseURL string
	// HTTPClient is used as-is except that a cookie jar is attached when it has none
	HTTPClient *http.Client
	CookieName string
	// Location renders schedule timestamps; nil means time.Local
	Location *time.Location
	Logger   *zap.Logger
}

// Client talks to the order API. The session lives in the cookie jar, so a
// token the server slides forward is picked up on the next call. The token is
// also sent as a Bearer header for servers reached over plain HTTP, where a
// Secure cookie is never replayed.
type Client struct {
	baseURL    string
	http       *http.Client
	cookieName string
	loc        *time.Location
	logger     *zap.Logger

	mu    sync.Mutex
	token string
}

// New builds a client
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	if opts.CookieName == "" {
		opts.CookieName = defaultCookieName
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		http:       httpClient,
		cookieName: opts.CookieName,
		loc:        opts.Location,
		logger:     opts.Logger,
	}, nil
}

// Login authenticates and stores the session
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return fmt.Errorf("encode login: %w", err)
	}

	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &data); err != nil {
		return err
	}

	c.setToken(data.AccessToken)
	return nil
}

// Logout revokes the session on the server. The local session is kept when
// the server could not be reached or refused for a reason other than an
// already dead session, so the caller may retry.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	if err != nil && !IsUnauthorized(err) {
		return err
	}
	c.forgetSession()
	return err
}

// List fetches and normalizes every order of the signed-in employee,
// following the server's pages until it reports no more.
func (c *Client) List(ctx context.Context) ([]Order, error) {
	var out []Order
	for page := 1; page <= maxListPages; page++ {
		var data struct {
			Orders []RawOrder      `json:"orders"`
			Meta   pagination.Meta `json:"meta"`
		}
		path := fmt.Sprintf("/api/v1/orders?page=%d&limit=%d", page, listPageSize)
		if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
			return nil, err
		}

		for _, raw := range data.Orders {
			if _, known := StatusFromServer(raw.Estado); !known {
				c.logger.Warn("unknown order status, showing as pending",
					zap.Uint("order_id", raw.ID),
					zap.String("estado", raw.Estado),
				)
			}
			out = append(out, Normalize(raw, c.loc))
		}

		if !data.Meta.HasNext || len(data.Orders) == 0 {
			if out == nil {
				out = []Order{}
			}
			return out, nil
		}
	}

	c.logger.Warn("order listing truncated", zap.Int("pages", maxListPages), zap.Int("orders", len(out)))
	return out, nil
}

// ChangeStatus asks the server to move order to the target status. A target
// that is not the next step is dropped without a request and reported as
// (false, nil).
func (c *Client) ChangeStatus(ctx context.Context, order Order, to Status) (bool, error) {
	if !CanTransition(order.Status, to) {
		c.logger.Debug("status change dropped",
			zap.Uint("order_id", order.ID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(to)),
		)
		return false, nil
	}

	path := fmt.Sprintf("/api/v1/orders/%d/status/%d", order.ID, to.Code())
	if err := c.do(ctx, http.MethodPut, path, nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	// pick up a slid session
	for _, ck := range resp.Cookies() {
		if ck.Name == c.cookieName && ck.Value != "" {
			c.setToken(ck.Value)
		}
	}

	env := response.Decode(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Reason(resp.StatusCode)
		c.logger.Warn("server rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("decode response: %s %s returned no data", method, path)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// forgetSession drops the bearer token and the session cookie
func (c *Client) forgetSession() {
	c.setToken("")

	u, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return
	}
	c.http.Jar.SetCookies(u, []*http.Cookie{{Name: c.cookieName, Value: "", Path: "/", MaxAge: -1}})
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}
