package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultGoogleAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	defaultGoogleTokenURL    = "https://oauth2.googleapis.com/token"
	defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// GoogleConfig configures the federated login provider. The endpoint URLs may
// be overridden in tests.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL     string
	TokenURL    string
	UserInfoURL string

	HTTPClient *http.Client
}

// FederatedIdentity is the subset of provider account data needed to
// provision or resolve a local user.
type FederatedIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleProvider performs the OAuth 2.0 authorization-code flow against
// Google. The service only needs an email and display name; accounts
// resolved this way carry an empty password credential.
type GoogleProvider struct {
	config GoogleConfig
	client *http.Client
}

// NewGoogleProvider constructs a GoogleProvider, filling in the default
// Google endpoints where not overridden.
func NewGoogleProvider(config GoogleConfig) *GoogleProvider {
	if config.AuthURL == "" {
		config.AuthURL = defaultGoogleAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultGoogleTokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultGoogleUserInfoURL
	}
	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleProvider{config: config, client: client}
}

// LoginURL builds the consent-screen URL for the given anti-forgery state.
func (p *GoogleProvider) LoginURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURL},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

// Exchange swaps an authorization code for the federated identity behind it.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (FederatedIdentity, error) {
	accessToken, err := p.exchangeToken(ctx, code)
	if err != nil {
		return FederatedIdentity{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	identity, err := p.fetchUserInfo(ctx, accessToken)
	if err != nil {
		return FederatedIdentity{}, fmt.Errorf("fetch user info: %w", err)
	}

	return identity, nil
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type googleUserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (p *GoogleProvider) exchangeToken(ctx context.Context, code string) (string, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange returned status %d", resp.StatusCode)
	}

	var tokenResp googleTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	return tokenResp.AccessToken, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, accessToken string) (FederatedIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return FederatedIdentity{}, fmt.Errorf("create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return FederatedIdentity{}, fmt.Errorf("user info request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FederatedIdentity{}, fmt.Errorf("read user info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return FederatedIdentity{}, fmt.Errorf("user info fetch returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return FederatedIdentity{}, fmt.Errorf("parse user info response: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return FederatedIdentity{}, fmt.Errorf("incomplete user info response")
	}

	return FederatedIdentity{Subject: info.Sub, Email: info.Email, Name: info.Name}, nil
}
