//go:build !integration

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"reage-orchestrator/internal/domain"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		Subject:   "api",
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestProviderDirectToken(t *testing.T) {
	t.Run("opaque token passes through", func(t *testing.T) {
		p, err := NewProvider("opaque-token", "", "", "https://unused", time.Second, testLogger())
		if err != nil {
			t.Fatalf("new provider: %v", err)
		}
		got, err := p.Token(context.Background())
		if err != nil || got != "opaque-token" {
			t.Fatalf("expected passthrough, got %q err=%v", got, err)
		}
	})

	t.Run("valid jwt passes through", func(t *testing.T) {
		tok := signedToken(t, time.Now().Add(time.Hour))
		p, _ := NewProvider(tok, "", "", "https://unused", time.Second, testLogger())
		if got, err := p.Token(context.Background()); err != nil || got != tok {
			t.Fatalf("expected passthrough, got err=%v", err)
		}
	})

	t.Run("expired jwt is rejected locally", func(t *testing.T) {
		tok := signedToken(t, time.Now().Add(-time.Hour))
		p, _ := NewProvider(tok, "", "", "https://unused", time.Second, testLogger())
		if _, err := p.Token(context.Background()); !errors.Is(err, domain.ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestProviderCredentialExchange(t *testing.T) {
	calls := 0
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/getToken" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "issued-token"})
	}))
	defer srv.Close()

	p, err := NewProvider("", "cid", "secret", srv.URL, time.Second, testLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	got, err := p.Token(context.Background())
	if err != nil || got != "issued-token" {
		t.Fatalf("expected issued token, got %q err=%v", got, err)
	}
	if gotBody["clientId"] != "cid" || gotBody["clientSecret"] != "secret" {
		t.Errorf("unexpected exchange body %v", gotBody)
	}

	// Second call is served from the cache.
	if _, err := p.Token(context.Background()); err != nil {
		t.Fatalf("cached token: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one exchange, got %d", calls)
	}
}

func TestProviderExchangeFailures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
		}))
		defer srv.Close()
		p, _ := NewProvider("", "cid", "bad", srv.URL, time.Second, testLogger())
		if _, err := p.Token(context.Background()); err == nil {
			t.Fatal("expected error on 401")
		}
	})

	t.Run("empty token in response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer srv.Close()
		p, _ := NewProvider("", "cid", "secret", srv.URL, time.Second, testLogger())
		if _, err := p.Token(context.Background()); err == nil {
			t.Fatal("expected error on missing token")
		}
	})
}

func TestNewProviderValidation(t *testing.T) {
	if _, err := NewProvider("", "", "", "https://unused", time.Second, testLogger()); err == nil {
		t.Fatal("expected error with neither token nor credentials")
	}
	if _, err := NewProvider("", "cid", "", "https://unused", time.Second, testLogger()); err == nil {
		t.Fatal("expected error with incomplete credentials")
	}
}
