package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTokenURL     = "https://oauth2.googleapis.com/token"
	defaultUserInfoURL  = "https://openidconnect.googleapis.com/v1/userinfo"
	defaultTokenInfoURL = "https://www.googleapis.com/oauth2/v3/tokeninfo"

	defaultRequestTimeout = 10 * time.Second
)

// Identity is the verified (subject, email, name) triple obtained from the
// provider after a successful exchange.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

type GoogleConfig struct {
	ClientID     string `json:"client_id" yaml:"client_id"`
	ClientSecret string `json:"client_secret" yaml:"client_secret"`
	RedirectURI  string `json:"redirect_uri" yaml:"redirect_uri"`

	// RequestTimeout bounds every call against the provider, in seconds.
	// Zero means the default of 10 seconds.
	RequestTimeout int `json:"request_timeout" yaml:"request_timeout"`

	// Endpoint overrides, used by tests. Empty means the Google defaults.
	TokenURL     string `json:"token_url" yaml:"token_url"`
	UserInfoURL  string `json:"user_info_url" yaml:"user_info_url"`
	TokenInfoURL string `json:"token_info_url" yaml:"token_info_url"`
}

// GoogleClient talks to Google's OAuth endpoints with a bounded timeout.
// Construct one per process and inject it where needed, the configuration is
// not global state.
type GoogleClient struct {
	config     GoogleConfig
	httpClient *http.Client
}

func NewGoogleClient(config GoogleConfig) *GoogleClient {
	timeout := defaultRequestTimeout
	if config.RequestTimeout > 0 {
		timeout = time.Duration(config.RequestTimeout) * time.Second
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultTokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultUserInfoURL
	}
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = defaultTokenInfoURL
	}
	return &GoogleClient{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ExchangeCode redeems an authorization code for an access token and loads
// the userinfo profile with it. Every provider-side rejection (invalid,
// expired or reused code, network failure, timeout) comes back as an error,
// the caller restarts the OAuth flow.
func (c *GoogleClient) ExchangeCode(ctx context.Context, code string) (Identity, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.config.RedirectURI)
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Identity{}, errors.New("token exchange failed")
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Identity{}, err
	}
	if payload.AccessToken == "" {
		return Identity{}, errors.New("missing access token")
	}

	return c.fetchUserInfo(ctx, payload.AccessToken)
}

// VerifyAccessToken resolves an access token the client obtained itself
// (implicit / one-tap flows) through the tokeninfo endpoint.
func (c *GoogleClient) VerifyAccessToken(ctx context.Context, accessToken string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.TokenInfoURL+"?access_token="+url.QueryEscape(accessToken), nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Identity{}, errors.New("token info request failed")
	}

	var payload struct {
		Sub    string `json:"sub"`
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Identity{}, err
	}

	subject := payload.Sub
	if subject == "" {
		subject = payload.UserID
	}
	if subject == "" || payload.Email == "" {
		return Identity{}, errors.New("token info payload is incomplete")
	}
	return Identity{Subject: subject, Email: payload.Email, Name: payload.Name}, nil
}

func (c *GoogleClient) fetchUserInfo(ctx context.Context, accessToken string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.UserInfoURL, nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Identity{}, errors.New("userinfo request failed")
	}

	var payload struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Identity{}, err
	}
	if payload.Sub == "" || payload.Email == "" {
		return Identity{}, errors.New("userinfo payload is incomplete")
	}
	return Identity{Subject: payload.Sub, Email: payload.Email, Name: payload.Name}, nil
}
