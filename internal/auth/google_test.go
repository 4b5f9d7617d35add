package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGoogleProviderLoginURL(t *testing.T) {
	provider := NewGoogleProvider(GoogleConfig{
		ClientID:    "client-1",
		RedirectURL: "https://app.example.com/callback",
	})

	loginURL := provider.LoginURL("state-123")

	if !strings.HasPrefix(loginURL, defaultGoogleAuthURL+"?") {
		t.Fatalf("unexpected auth endpoint in %q", loginURL)
	}
	for _, fragment := range []string{"client_id=client-1", "state=state-123", "response_type=code"} {
		if !strings.Contains(loginURL, fragment) {
			t.Fatalf("login url missing %q: %s", fragment, loginURL)
		}
	}
}

func TestGoogleProviderExchange(t *testing.T) {
	var sawCode, sawBearer string

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token form: %v", err)
		}
		sawCode = r.PostFormValue("code")
		_ = json.NewEncoder(w).Encode(googleTokenResponse{AccessToken: "provider-access", TokenType: "Bearer", ExpiresIn: 3600})
	}))
	defer tokenSrv.Close()

	userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawBearer = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(googleUserInfo{Sub: "sub-1", Email: "jordan@example.com", Name: "Jordan"})
	}))
	defer userSrv.Close()

	provider := NewGoogleProvider(GoogleConfig{
		ClientID:     "client-1",
		ClientSecret: "secret",
		RedirectURL:  "https://app.example.com/callback",
		TokenURL:     tokenSrv.URL,
		UserInfoURL:  userSrv.URL,
	})

	identity, err := provider.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	if sawCode != "auth-code" {
		t.Fatalf("token endpoint received code %q", sawCode)
	}
	if sawBearer != "Bearer provider-access" {
		t.Fatalf("user info endpoint received %q", sawBearer)
	}
	if identity.Subject != "sub-1" || identity.Email != "jordan@example.com" || identity.Name != "Jordan" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestGoogleProviderExchangeTokenFailure(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusBadRequest)
	}))
	defer tokenSrv.Close()

	provider := NewGoogleProvider(GoogleConfig{TokenURL: tokenSrv.URL})

	if _, err := provider.Exchange(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected error for rejected authorization code")
	}
}

func TestGoogleProviderExchangeIncompleteUserInfo(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(googleTokenResponse{AccessToken: "provider-access"})
	}))
	defer tokenSrv.Close()

	userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(googleUserInfo{Name: "No Email"})
	}))
	defer userSrv.Close()

	provider := NewGoogleProvider(GoogleConfig{TokenURL: tokenSrv.URL, UserInfoURL: userSrv.URL})

	if _, err := provider.Exchange(context.Background(), "auth-code"); err == nil {
		t.Fatal("expected error for user info without subject or email")
	}
}
