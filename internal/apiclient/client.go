// Package apiclient is a Go client for the hotelier HTTP API. It attaches
// the stored bearer token to every request and implements the global
// unauthorized policy: any 401 on an authenticated call discards the
// token and fires the unauthorized handler exactly once, until a new
// token is obtained.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jmvoss/hotelier/internal/config"
	"github.com/jmvoss/hotelier/internal/entities"
)

const defaultTimeout = 30 * time.Second

// Client talks to the hotelier API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore

	mu             sync.Mutex
	onUnauthorized func()
	// signedOut is set after the unauthorized handler fires and cleared
	// when a new token is saved, so concurrent 401s trigger it once.
	signedOut bool
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUnauthorizedHandler installs the callback invoked when the server
// rejects the stored token. The callback runs at most once per sign-in.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient creates an API client from configuration.
func NewClient(cfg config.Client, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type userResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    *entities.User `json:"user"`
}

type tokenResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    *entities.User `json:"user"`
}

// Login exchanges credentials for an API token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) (*entities.User, error) {
	payload := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/token", nil, payload, &resp, false); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "server returned no token"}
	}

	if err := c.tokens.Save(resp.Token); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.signedOut = false
	c.mu.Unlock()

	return resp.User, nil
}

// Register creates a new guest account. It does not sign in; call Login
// afterwards to obtain a token.
func (c *Client) Register(ctx context.Context, email, password, firstName, lastName, phone string) (*entities.User, error) {
	payload := map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
		"lastName":  lastName,
		"phone":     phone,
	}

	var resp userResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, payload, &resp, false); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Me returns the identity behind the stored token.
func (c *Client) Me(ctx context.Context) (*entities.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout revokes the session server-side and discards the local token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil, true)
	if clearErr := c.tokens.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

// UpdateProfile replaces the caller's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, firstName, lastName, phone string) (*entities.User, error) {
	payload := map[string]string{
		"firstName": firstName,
		"lastName":  lastName,
		"phone":     phone,
	}

	var resp userResponse
	if err := c.do(ctx, http.MethodPut, "/users/profile", nil, payload, &resp, true); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ListRooms returns rooms, optionally filtered by type.
func (c *Client) ListRooms(ctx context.Context, roomType string) ([]entities.Room, error) {
	query := url.Values{}
	if roomType != "" {
		query.Set("type", roomType)
	}

	var resp struct {
		Success bool            `json:"success"`
		Rooms   []entities.Room `json:"rooms"`
	}
	if err := c.do(ctx, http.MethodGet, "/rooms", query, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// CreateRoom creates a room. Requires an admin token.
func (c *Client) CreateRoom(ctx context.Context, room *entities.Room) (*entities.Room, error) {
	var resp struct {
		Success bool           `json:"success"`
		Room    *entities.Room `json:"room"`
	}
	if err := c.do(ctx, http.MethodPost, "/rooms", nil, room, &resp, true); err != nil {
		return nil, err
	}
	return resp.Room, nil
}

// CreateBooking books a room for the authenticated user.
func (c *Client) CreateBooking(ctx context.Context, roomID uint, checkIn, checkOut time.Time, guests int) (*entities.Booking, error) {
	payload := map[string]any{
		"roomId":   roomID,
		"checkIn":  checkIn.Format(time.RFC3339),
		"checkOut": checkOut.Format(time.RFC3339),
		"guests":   guests,
	}

	var resp struct {
		Success bool              `json:"success"`
		Booking *entities.Booking `json:"booking"`
	}
	if err := c.do(ctx, http.MethodPost, "/bookings", nil, payload, &resp, true); err != nil {
		return nil, err
	}
	return resp.Booking, nil
}

// MyBookings returns the authenticated user's bookings.
func (c *Client) MyBookings(ctx context.Context) ([]entities.Booking, error) {
	var resp struct {
		Success  bool               `json:"success"`
		Bookings []entities.Booking `json:"bookings"`
	}
	if err := c.do(ctx, http.MethodGet, "/bookings", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Bookings, nil
}

// ListMenu returns menu items, optionally filtered by category.
func (c *Client) ListMenu(ctx context.Context, category string) ([]entities.MenuItem, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}

	var resp struct {
		Success bool                `json:"success"`
		Items   []entities.MenuItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/menu", query, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// SessionStatus mirrors the server's session monitor state.
type SessionStatus struct {
	State            string `json:"state"`
	RemainingSeconds int    `json:"remainingSeconds"`
	SessionExpired   bool   `json:"sessionExpired"`
	Message          string `json:"message,omitempty"`
}

// ReportActivity tells the server the user is active.
func (c *Client) ReportActivity(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/session/activity", nil, nil, nil, true)
}

// ExtendSession resets the inactivity countdown, clearing any warning.
func (c *Client) ExtendSession(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/session/extend", nil, nil, nil, true)
}

// GetSessionStatus returns the current monitor state for this session.
func (c *Client) GetSessionStatus(ctx context.Context) (*SessionStatus, error) {
	var status SessionStatus
	if err := c.do(ctx, http.MethodGet, "/session/status", nil, nil, &status, true); err != nil {
		return nil, err
	}
	return &status, nil
}

// do executes one API call. authenticated requests carry the stored
// bearer token; a 401 on them triggers the global unauthorized policy.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authenticated bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		token, err := c.tokens.Load()
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if authenticated {
			c.handleUnauthorized()
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, readMessage(resp.Body))
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, readMessage(resp.Body))
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 400:
		return &APIError{StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// handleUnauthorized discards the stored token and fires the handler.
// The flag guarantees the handler runs once even when several in-flight
// requests all come back 401.
func (c *Client) handleUnauthorized() {
	_ = c.tokens.Clear()

	c.mu.Lock()
	alreadyFired := c.signedOut
	c.signedOut = true
	handler := c.onUnauthorized
	c.mu.Unlock()

	if !alreadyFired && handler != nil {
		handler()
	}
}

func readMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
