// Package discord implements the OAuth2 authorization-code exchange
// and user lookup against the Discord API. The rest of the application
// only consumes the resulting Identity.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL  = "https://discord.com/api/v10"
	defaultAuthBaseURL = "https://discord.com/oauth2/authorize"
)

// Identity is the authenticated Discord user handed to the core after
// a successful code exchange.
type Identity struct {
	ID        string
	Username  string
	Email     string
	AvatarURL string
}

type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	apiBaseURL   string
	authBaseURL  string
	httpClient   *http.Client
}

type Option func(*Client)

// WithBaseURLs overrides the Discord endpoints, for tests.
func WithBaseURLs(apiBaseURL, authBaseURL string) Option {
	return func(c *Client) {
		c.apiBaseURL = apiBaseURL
		c.authBaseURL = authBaseURL
	}
}

func NewClient(clientID, clientSecret, redirectURI string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		apiBaseURL:   defaultAPIBaseURL,
		authBaseURL:  defaultAuthBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizeURL builds the redirect URL that starts the OAuth2 flow.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "identify email")
	q.Set("state", state)
	return c.authBaseURL + "?" + q.Encode()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access token")
	}
	return token.AccessToken, nil
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// FetchUser resolves the authenticated user behind an access token.
func (c *Client) FetchUser(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/users/@me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user endpoint returned status %d", resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("user endpoint returned empty id")
	}

	return &Identity{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		AvatarURL: avatarURL(user.ID, user.Avatar),
	}, nil
}

func avatarURL(userID, avatarHash string) string {
	if avatarHash == "" {
		return "https://cdn.discordapp.com/embed/avatars/0.png"
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", userID, avatarHash)
}
