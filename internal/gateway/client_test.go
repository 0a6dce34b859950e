package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"payrelay/internal/platform/config"
	"payrelay/internal/platform/merchants"
)

func testTenant() *merchants.Tenant {
	return &merchants.Tenant{
		Key:            "acme",
		ClientID:       "client",
		ClientSecret:   "secret",
		MerchantID:     "merchant-1",
		ProviderAPIKey: "legacy-key",
		SourceCode:     "src-1",
	}
}

func newProviderServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/connect/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok","expires_in":3600}`)
	})
	mux.HandleFunc("/checkout/v2/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"orderCode":1234567890123456}`)
	})
	mux.HandleFunc("/api/messages/config/token", func(w http.ResponseWriter, r *http.Request) {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("merchant-1:legacy-key"))
		if r.Header.Get("Authorization") != want {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"Key":"verification-token"}`)
	})
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	cfg := config.ProviderConfig{
		APIURL:  srv.URL,
		AuthURL: srv.URL + "/connect/token",
	}
	c := NewClient(testTenant(), cfg)
	c.httpClient = srv.Client()
	c.tokens.httpClient = srv.Client()
	return c
}

func TestCreateOrder(t *testing.T) {
	srv := newProviderServer(t)
	defer srv.Close()

	c := newTestClient(t, srv)

	body := map[string]interface{}{"amount": 1000}
	resp, raw, err := c.CreateOrder(context.Background(), body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.OrderCode.String() != "1234567890123456" {
		t.Errorf("expected order code 1234567890123456, got %s", resp.OrderCode)
	}
	if len(raw) == 0 {
		t.Error("expected raw provider response")
	}
	if body["sourceCode"] != "src-1" {
		t.Errorf("expected tenant source code injected, got %v", body["sourceCode"])
	}
}

func TestVerificationTokenUsesBasicAuth(t *testing.T) {
	srv := newProviderServer(t)
	defer srv.Close()

	c := newTestClient(t, srv)

	raw, err := c.VerificationToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"Key":"verification-token"}` {
		t.Errorf("expected verbatim provider body, got %s", raw)
	}
}

func TestUpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/connect/token" {
			fmt.Fprint(w, `{"access_token":"tok","expires_in":3600}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	_, err := c.GetOrder(context.Background(), "42")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestClientSet(t *testing.T) {
	tenants := []*merchants.Tenant{testTenant()}
	set := NewClientSet(tenants, config.ProviderConfig{APIURL: "http://x", AuthURL: "http://x/token"})

	if _, ok := set.ForTenant("acme"); !ok {
		t.Error("expected client for acme")
	}
	if _, ok := set.ForTenant("missing"); ok {
		t.Error("expected no client for unknown tenant")
	}
}
