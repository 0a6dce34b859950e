package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "payrelay/internal/api/context"
	"payrelay/internal/pkg/errors"
	"payrelay/internal/platform/merchants"
)

// AuthMiddleware resolves the calling tenant from the opaque api key in the
// Authorization header and puts it on the request context.
type AuthMiddleware struct {
	registry *merchants.Registry
}

func NewAuthMiddleware(registry *merchants.Registry) *AuthMiddleware {
	return &AuthMiddleware{registry: registry}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		tenant, ok := m.registry.ByAPIKey(parts[1])
		if !ok {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeTenantNotFound, "Unknown api key", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Tenant, tenant)
		next(w, r.WithContext(ctx))
	}
}
