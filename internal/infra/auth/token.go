package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"reage-orchestrator/internal/domain"
	"reage-orchestrator/internal/infra/logging"
)

// Provider supplies a bearer token for remote API calls. Either a directly
// configured token is handed through, or client credentials are exchanged
// once at the token-issuance endpoint and the result is cached for the
// process lifetime.
type Provider struct {
	direct       string
	clientID     string
	clientSecret string
	tokenURL     string // e.g., https://openapi.akool.com/api/open/v3/getToken
	client       *http.Client
	log          *zerolog.Logger

	mu     sync.Mutex
	cached string
}

func NewProvider(directToken, clientID, clientSecret, baseURL string, timeout time.Duration, log *zerolog.Logger) (*Provider, error) {
	if directToken == "" && (clientID == "" || clientSecret == "") {
		return nil, errors.New("either a token or client credentials are required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Provider{
		direct:       directToken,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     baseURL + "/getToken",
		client:       &http.Client{Timeout: timeout},
		log:          log,
	}, nil
}

// Token returns the bearer token, exchanging credentials on first use.
func (p *Provider) Token(ctx context.Context) (string, error) {
	if p.direct != "" {
		if err := checkExpiry(p.direct); err != nil {
			return "", err
		}
		return p.direct, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != "" {
		if err := checkExpiry(p.cached); err == nil {
			return p.cached, nil
		}
		p.cached = ""
	}

	reqBody := struct {
		ClientID     string `json:"clientId"`
		ClientSecret string `json:"clientSecret"`
	}{ClientID: p.clientID, ClientSecret: p.clientSecret}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("token exchange http %d", resp.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Token == "" {
		return "", errors.New("token exchange returned no token")
	}
	p.cached = payload.Token
	p.log.Debug().Str("token", logging.Redact(p.cached, false)).Msg("bearer token issued")
	return p.cached, nil
}

// checkExpiry rejects tokens that are parseable JWTs with an exp claim in
// the past. Opaque tokens pass through untouched; the signature is not
// verified locally.
func checkExpiry(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil // not a JWT, let the server judge it
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if time.Now().After(exp.Time) {
		return domain.ErrTokenExpired
	}
	return nil
}
