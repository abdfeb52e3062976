package authx

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
)

// Client talks to a GoTrue-compatible identity provider over HTTP using
// a service-role credential.
type Client struct {
	BaseURL    string
	ServiceKey string
	HTTPClient *http.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a provider client for the given base URL and
// service-role key.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type userResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// VerifyToken calls GET /auth/v1/user with the end user's token. The
// provider validates signature and expiry server-side.
func (c *Client) VerifyToken(ctx context.Context, token string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return User{}, fmt.Errorf("authx: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.ServiceKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("authx: verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return User{}, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("authx: verify token: unexpected status %d", resp.StatusCode)
	}

	var body userResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return User{}, fmt.Errorf("authx: decode user response: %w", err)
	}
	if body.ID == "" || body.Email == "" {
		return User{}, ErrInvalidToken
	}

	return User{ID: body.ID, Email: body.Email, Metadata: body.UserMetadata}, nil
}

type inviteRequest struct {
	Email string         `json:"email"`
	Data  map[string]any `json:"data,omitempty"`
}

// InviteUserByEmail calls POST /auth/v1/invite with the service-role
// key. The provider creates the user (if new), stores data into its
// metadata, and emails the invite link.
func (c *Client) InviteUserByEmail(ctx context.Context, email string, data map[string]any, redirectTo string) error {
	payload, err := json.Marshal(inviteRequest{Email: email, Data: data})
	if err != nil {
		return fmt.Errorf("authx: marshal invite request: %w", err)
	}

	endpoint := c.BaseURL + "/auth/v1/invite"
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("authx: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInviteFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrInviteFailed, resp.StatusCode, string(msg))
	}

	return nil
}
