package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	apiContext "payrelay/internal/api/context"
	"payrelay/internal/platform/config"
	"payrelay/internal/platform/merchants"
)

func testRegistry() *merchants.Registry {
	return merchants.NewRegistry(map[string]config.MerchantConfig{
		"acme": {ClientID: "c", ClientSecret: "s", APIKey: "key_acme"},
	})
}

func TestAuthMiddleware(t *testing.T) {
	m := NewAuthMiddleware(testRegistry())

	t.Run("Valid Key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer key_acme")

		rr := httptest.NewRecorder()
		handler := m.Handle(func(w http.ResponseWriter, r *http.Request) {
			tenant := r.Context().Value(apiContext.Tenant).(*merchants.Tenant)
			if tenant.Key != "acme" {
				t.Errorf("expected tenant acme, got %s", tenant.Key)
			}
			w.WriteHeader(http.StatusOK)
		})
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("Unknown Key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer key_other")

		rr := httptest.NewRecorder()
		handler := m.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		})
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("Missing Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)

		rr := httptest.NewRecorder()
		handler := m.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		})
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})
}
