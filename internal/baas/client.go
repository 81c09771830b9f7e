// Package baas talks to the backend-as-a-service REST data API. Tables
// are exposed PostgREST-style under /rest/v1 with query-string filters.
package baas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/prospecta/prospecta-platform/internal/identity"
	"github.com/prospecta/prospecta-platform/pkg/logging"
)

var (
	jwtExpiredPattern = regexp.MustCompile(`(?i)jwt expired`)
	rateLimitPattern  = regexp.MustCompile(`(?i)rate limit`)
)

// Refresher exchanges a refresh token for a new session. Implemented by
// the identity client.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*identity.Session, error)
}

type Config struct {
	BaseURL string
	// AnonKey is sent as the service api key on every request.
	AnonKey    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Refresher  Refresher
	Logger     *logging.Logger
}

// Client is a thin data-API client holding the caller's session. When
// the service rejects a call with an expired-token error, the client
// refreshes the session once and retries the call once.
type Client struct {
	baseURL   string
	anonKey   string
	http      *http.Client
	refresher Refresher
	logger    *logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("baas: base url is required")
	}
	if strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, errors.New("baas: anon key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		anonKey:   cfg.AnonKey,
		http:      httpClient,
		refresher: cfg.Refresher,
		logger:    logger.Named("baas"),
	}, nil
}

// SetSession installs the tokens used to authorize data calls.
func (c *Client) SetSession(accessToken, refreshToken string) {
	c.mu.Lock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
	c.mu.Unlock()
}

func (c *Client) session() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// Select fetches rows matching the filters.
func (c *Client) Select(ctx context.Context, table string, filters url.Values, out any) error {
	return c.call(ctx, http.MethodGet, table, filters, "", nil, out)
}

// Insert creates rows and decodes the stored representation into out.
func (c *Client) Insert(ctx context.Context, table string, body, out any) error {
	return c.call(ctx, http.MethodPost, table, nil, "return=representation", body, out)
}

// Upsert inserts rows, merging on conflict.
func (c *Client) Upsert(ctx context.Context, table string, body, out any) error {
	return c.call(ctx, http.MethodPost, table, nil, "resolution=merge-duplicates,return=representation", body, out)
}

// Update patches rows matching the filters.
func (c *Client) Update(ctx context.Context, table string, filters url.Values, body, out any) error {
	return c.call(ctx, http.MethodPatch, table, filters, "return=representation", body, out)
}

// Delete removes rows matching the filters.
func (c *Client) Delete(ctx context.Context, table string, filters url.Values) error {
	return c.call(ctx, http.MethodDelete, table, filters, "", nil, nil)
}

func (c *Client) call(ctx context.Context, method, table string, filters url.Values, prefer string, body, out any) error {
	err := c.doOnce(ctx, method, table, filters, prefer, body, out)
	if !isTokenExpired(err) {
		return err
	}

	if err := c.refreshSession(ctx); err != nil {
		return err
	}
	return c.doOnce(ctx, method, table, filters, prefer, body, out)
}

func (c *Client) refreshSession(ctx context.Context) error {
	if c.refresher == nil {
		return errors.New("baas: session expired and no refresher configured")
	}
	_, refreshToken := c.session()
	if refreshToken == "" {
		return errors.New("baas: session expired and no refresh token available")
	}

	c.logger.Info("access token expired, refreshing session")
	session, err := c.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("baas: session refresh failed: %w", err)
	}
	c.SetSession(session.AccessToken, session.RefreshToken)
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, table string, filters url.Values, prefer string, body, out any) error {
	endpoint := c.baseURL + "/rest/v1/" + url.PathEscape(table)
	if len(filters) > 0 {
		endpoint += "?" + filters.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("baas: encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("baas: build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	accessToken, _ := c.session()
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("baas: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("baas: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if len(data) > 0 {
			_ = json.Unmarshal(data, apiErr)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("baas: decode response: %w", err)
	}
	return nil
}

// APIError is the data API's error envelope.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("baas: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("baas: request rejected with status %d", e.StatusCode)
}

// isTokenExpired recognizes the service's expired-access-token
// rejection, either by its error code or its message.
func isTokenExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == "PGRST303" {
		return true
	}
	return apiErr.StatusCode == http.StatusUnauthorized && jwtExpiredPattern.MatchString(apiErr.Message)
}

// IsRateLimited reports whether an error looks like a rate-limit
// rejection from the service.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return rateLimitPattern.MatchString(err.Error())
}
