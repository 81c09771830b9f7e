package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prospecta/prospecta-platform/pkg/logging"
)

// Config controls how the identity client behaves.
type Config struct {
	BaseURL    string
	AnonKey    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client wraps the external identity service's auth REST endpoints: sign-up,
// password login (with the manual-approval gate), logout, password-reset
// request, profile metadata update and session refresh. It also fans
// session-change events out to subscribers.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *logging.Logger

	mu          sync.Mutex
	subscribers []subscriber
	nextSubID   int
}

type subscriber struct {
	id int
	fn func(Event)
}

// New creates a configured identity client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("identity: base URL is required")
	}
	if strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, errors.New("identity: anon key is required")
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
		baseURL:    baseURL,
		anonKey:    cfg.AnonKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Subscribe registers a session-change callback and returns an unsubscribe
// function. Events are dispatched synchronously in registration order.
func (c *Client) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subscribers {
			if sub.id == id {
				c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (c *Client) emit(event Event) {
	c.mu.Lock()
	fns := make([]func(Event), 0, len(c.subscribers))
	for _, sub := range c.subscribers {
		fns = append(fns, sub.fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// SignUp registers a new account. The is_validated flag is always stamped
// false; an administrator flips it before the account can log in.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*User, error) {
	data := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		data[k] = v
	}
	data["is_validated"] = false

	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     data,
	}

	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &user); err != nil {
		return nil, fmt.Errorf("identity: sign up failed: %w", err)
	}
	return &user, nil
}

// Login exchanges email/password for a session. Sessions for accounts that
// have not been manually approved are discarded and ErrPendingApproval is
// returned; the upstream session is revoked so it cannot be reused.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &session); err != nil {
		if isAuthRejection(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("identity: login failed: %w", err)
	}
	session.ExpiresAt = time.Now().Add(time.Duration(session.ExpiresIn) * time.Second)

	if !session.User.IsValidated() {
		if err := c.Logout(ctx, session.AccessToken); err != nil {
			c.logger.Warn("failed to revoke unapproved session", "error", err)
		}
		return nil, ErrPendingApproval
	}

	c.emit(Event{Type: EventSignedIn, Session: &session})
	return &session, nil
}

// Logout revokes the session held by accessToken.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return ErrNoSession
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("identity: logout failed: %w", err)
	}
	c.emit(Event{Type: EventSignedOut})
	return nil
}

// RequestPasswordReset asks the identity service to email a recovery link.
// The response is an ack regardless of whether the address exists.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]any{"email": email}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/recover", "", body, nil); err != nil {
		return fmt.Errorf("identity: password reset request failed: %w", err)
	}
	return nil
}

// UpdateProfile merges the given metadata into the user's metadata bag.
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, metadata map[string]any) (*User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrNoSession
	}
	body := map[string]any{"data": metadata}

	var user User
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", accessToken, body, &user); err != nil {
		return nil, fmt.Errorf("identity: profile update failed: %w", err)
	}
	return &user, nil
}

// Refresh exchanges a refresh token for a fresh session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrNoSession
	}
	body := map[string]any{"refresh_token": refreshToken}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", body, &session); err != nil {
		return nil, fmt.Errorf("identity: session refresh failed: %w", err)
	}
	session.ExpiresAt = time.Now().Add(time.Duration(session.ExpiresIn) * time.Second)
	c.emit(Event{Type: EventRefreshed, Session: &session})
	return &session, nil
}

type apiError struct {
	Status           int    `json:"-"`
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (e *apiError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Msg
	}
	if msg == "" {
		msg = e.ErrorDescription
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("identity service returned %d: %s", e.Status, msg)
}

func isAuthRejection(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized
	}
	return false
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
