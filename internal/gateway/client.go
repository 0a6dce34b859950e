package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"payrelay/internal/platform/config"
	"payrelay/internal/platform/merchants"
)

var ErrUpstream = errors.New("provider request failed")

// Client wraps the provider's REST API for one tenant. Checkout endpoints use
// the cached OAuth bearer token; the verification-token endpoint still runs on
// the legacy basic-auth credentials.
type Client struct {
	tenant     *merchants.Tenant
	apiURL     string
	tokens     *TokenCache
	httpClient *http.Client
}

func NewClient(tenant *merchants.Tenant, cfg config.ProviderConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		tenant:     tenant,
		apiURL:     cfg.APIURL,
		tokens:     NewTokenCache(cfg.AuthURL, tenant.ClientID, tenant.ClientSecret, httpClient),
		httpClient: httpClient,
	}
}

func (c *Client) Tenant() *merchants.Tenant { return c.tenant }

// Tokens exposes the tenant's token cache, mainly for health reporting.
func (c *Client) Tokens() *TokenCache { return c.tokens }

type OrderResponse struct {
	OrderCode json.Number `json:"orderCode"`
}

// CreateOrder forwards an order request verbatim. The caller is responsible
// for stripping gateway-only fields before this point.
func (c *Client) CreateOrder(ctx context.Context, body map[string]interface{}) (*OrderResponse, json.RawMessage, error) {
	if c.tenant.SourceCode != "" {
		if _, ok := body["sourceCode"]; !ok {
			body["sourceCode"] = c.tenant.SourceCode
		}
	}
	raw, err := c.doBearer(ctx, http.MethodPost, "/checkout/v2/orders", body)
	if err != nil {
		return nil, nil, err
	}
	var resp OrderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding order response: %v", ErrUpstream, err)
	}
	return &resp, raw, nil
}

func (c *Client) GetOrder(ctx context.Context, orderCode string) (json.RawMessage, error) {
	return c.doBearer(ctx, http.MethodGet, "/checkout/v2/orders/"+orderCode, nil)
}

func (c *Client) CancelOrder(ctx context.Context, orderCode string) (json.RawMessage, error) {
	return c.doBearer(ctx, http.MethodDelete, "/checkout/v2/orders/"+orderCode, nil)
}

func (c *Client) GetTransaction(ctx context.Context, transactionID string) (json.RawMessage, error) {
	return c.doBearer(ctx, http.MethodGet, "/checkout/v2/transactions/"+transactionID, nil)
}

// RefundTransaction issues a partial or full refund against a captured
// transaction. A zero amount refunds the full captured amount.
func (c *Client) RefundTransaction(ctx context.Context, transactionID string, amount int64) (json.RawMessage, error) {
	path := "/checkout/v2/transactions/" + transactionID
	if amount > 0 {
		path = fmt.Sprintf("%s?amount=%d", path, amount)
	}
	return c.doBearer(ctx, http.MethodDelete, path, nil)
}

func (c *Client) CreateCardToken(ctx context.Context, body map[string]interface{}) (json.RawMessage, error) {
	return c.doBearer(ctx, http.MethodPost, "/acquiring/v1/cards/tokens", body)
}

func (c *Client) GetWallets(ctx context.Context) (json.RawMessage, error) {
	return c.doBasic(ctx, http.MethodGet, "/api/wallets")
}

// VerificationToken fetches the provider's webhook ownership token using the
// tenant's legacy credentials. The raw JSON body is returned verbatim so the
// webhook GET handler can echo it unchanged.
func (c *Client) VerificationToken(ctx context.Context) (json.RawMessage, error) {
	return c.doBasic(ctx, http.MethodGet, "/api/messages/config/token")
}

func (c *Client) doBearer(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req)
}

func (c *Client) doBasic(ctx context.Context, method, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.tenant.MerchantID, c.tenant.ProviderAPIKey)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Str("tenant", c.tenant.Key).Str("path", req.URL.Path).
			Int("status", resp.StatusCode).Msg("provider returned error status")
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	return raw, nil
}

// ClientSet is the per-tenant client arena, built once at startup. Token state
// lives inside each client, keyed by tenant.
type ClientSet struct {
	clients map[string]*Client
}

func NewClientSet(tenants []*merchants.Tenant, cfg config.ProviderConfig) *ClientSet {
	set := &ClientSet{clients: make(map[string]*Client, len(tenants))}
	for _, t := range tenants {
		set.clients[t.Key] = NewClient(t, cfg)
	}
	return set
}

func (s *ClientSet) ForTenant(key string) (*Client, bool) {
	c, ok := s.clients[key]
	return c, ok
}
