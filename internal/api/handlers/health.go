package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"payrelay/internal/engine/callbacks"
	"payrelay/internal/platform/merchants"
	"payrelay/internal/platform/repositories"
)

type HealthHandler struct {
	registry   *merchants.Registry
	store      *callbacks.Store
	deliveries *repositories.DeliveryLogRepository
}

func NewHealthHandler(registry *merchants.Registry, store *callbacks.Store, deliveries *repositories.DeliveryLogRepository) *HealthHandler {
	return &HealthHandler{registry: registry, store: store, deliveries: deliveries}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if h.registry.Len() == 0 {
		checks["merchants"] = "unhealthy: no tenants resolved"
	} else {
		checks["merchants"] = "healthy"
	}

	if h.deliveries != nil {
		if err := h.deliveries.Ping(); err != nil {
			checks["delivery_log"] = "unhealthy: " + err.Error()
		} else {
			checks["delivery_log"] = "healthy"
		}
	} else {
		checks["delivery_log"] = "disabled"
	}

	status := "healthy"
	for _, check := range checks {
		if len(check) >= 9 && check[:9] == "unhealthy" {
			status = "degraded"
			break
		}
	}

	response := struct {
		Status        string            `json:"status"`
		Timestamp     int64             `json:"timestamp"`
		Tenants       int               `json:"tenants"`
		Registrations int               `json:"registrations"`
		Checks        map[string]string `json:"checks"`
	}{
		Status:        status,
		Timestamp:     time.Now().Unix(),
		Tenants:       h.registry.Len(),
		Registrations: h.store.Len(),
		Checks:        checks,
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
