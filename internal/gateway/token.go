package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrAuthenticationFailed = errors.New("provider rejected token exchange")

// refreshMargin is subtracted from the provider's stated expiry so a token is
// never presented while an in-flight request could outlive it.
const refreshMargin = 5 * time.Minute

type tokenRecord struct {
	accessToken string
	expiresAt   time.Time
}

// TokenCache holds one tenant's bearer token, refreshing it via a
// client-credentials exchange when the cached record runs out. Concurrent
// callers inside the refresh window may each trigger a fetch; token exchanges
// are idempotent at the provider, so the last write simply wins.
type TokenCache struct {
	authURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	record atomic.Pointer[tokenRecord]
	now    func() time.Time
}

func NewTokenCache(authURL, clientID, clientSecret string, httpClient *http.Client) *TokenCache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &TokenCache{
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// Token returns the cached bearer token, performing a network exchange only
// when no record exists or the record has expired.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if rec := c.record.Load(); rec != nil && c.now().Before(rec.expiresAt) {
		return rec.accessToken, nil
	}
	return c.refresh(ctx)
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Str("client_id", c.clientID).Int("status", resp.StatusCode).
			Msg("token exchange rejected")
		return "", fmt.Errorf("%w: status %d", ErrAuthenticationFailed, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrAuthenticationFailed)
	}

	rec := &tokenRecord{
		accessToken: body.AccessToken,
		expiresAt:   c.now().Add(time.Duration(body.ExpiresIn)*time.Second - refreshMargin),
	}
	c.record.Store(rec)

	return rec.accessToken, nil
}
