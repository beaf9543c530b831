package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/va6996/tripplanner/log"
)

const tokenPath = "/v1/security/oauth2/token"

// expiryBuffer is subtracted from expires_in so a cached token is never used at the edge.
const expiryBuffer = 10 * time.Second

// TokenProvider hands out bearer tokens for the search endpoints.
type TokenProvider interface {
	Acquire(ctx context.Context) (string, error)
}

// AuthToken represents the OAuth2 token response
type AuthToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Expiry      time.Time
}

func (t *AuthToken) valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Before(t.Expiry)
}

// ClientCredentials runs the OAuth2 client-credentials exchange.
// With CacheToken unset every Acquire performs a full exchange.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	HTTPClient   *http.Client
	CacheToken   bool
	Now          func() time.Time

	mu     sync.Mutex
	cached *AuthToken
}

// NewClientCredentials builds a provider against baseURL's token endpoint.
func NewClientCredentials(clientID, clientSecret, baseURL string, httpClient *http.Client, cacheToken bool) *ClientCredentials {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ClientCredentials{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     strings.TrimRight(baseURL, "/") + tokenPath,
		HTTPClient:   httpClient,
		CacheToken:   cacheToken,
		Now:          time.Now,
	}
}

// Acquire returns a bearer token, failing with *AuthError.
func (p *ClientCredentials) Acquire(ctx context.Context) (string, error) {
	if !p.CacheToken {
		token, err := p.exchange(ctx)
		if err != nil {
			return "", err
		}
		return token.AccessToken, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached.valid(p.Now()) {
		return p.cached.AccessToken, nil
	}
	token, err := p.exchange(ctx)
	if err != nil {
		return "", err
	}
	p.cached = token
	return token.AccessToken, nil
}

func (p *ClientCredentials) exchange(ctx context.Context) (*AuthToken, error) {
	log.Debugf(ctx, "Amadeus auth: requesting new access token")

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", p.ClientID)
	data.Set("client_secret", p.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &AuthError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var token AuthToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode token response: %w", err)}
	}
	if token.AccessToken == "" {
		return nil, &AuthError{StatusCode: resp.StatusCode, Err: ErrMissingAccessToken}
	}

	token.Expiry = p.Now().Add(time.Duration(token.ExpiresIn)*time.Second - expiryBuffer)
	log.Debugf(ctx, "Amadeus auth: token retrieved, expires in %ds", token.ExpiresIn)
	return &token, nil
}
