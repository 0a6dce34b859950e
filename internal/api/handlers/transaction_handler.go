package handlers

import (
	"net/http"

	"payrelay/internal/gateway"
	"payrelay/internal/pkg/errors"
)

type TransactionHandler struct {
	clients *gateway.ClientSet
}

func NewTransactionHandler(clients *gateway.ClientSet) *TransactionHandler {
	return &TransactionHandler{clients: clients}
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, ok := clientFor(h.clients, r)
	if !ok {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "No provider client for tenant", nil)
		return
	}

	raw, err := client.GetTransaction(r.Context(), pathParam(r, "transaction_id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (h *TransactionHandler) Refund(w http.ResponseWriter, r *http.Request) {
	client, ok := clientFor(h.clients, r)
	if !ok {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "No provider client for tenant", nil)
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if _, err := decodeBody(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Amount < 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "amount must not be negative", nil)
		return
	}

	raw, err := client.RefundTransaction(r.Context(), pathParam(r, "transaction_id"), req.Amount)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (h *TransactionHandler) CreateCardToken(w http.ResponseWriter, r *http.Request) {
	client, ok := clientFor(h.clients, r)
	if !ok {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "No provider client for tenant", nil)
		return
	}

	var body map[string]interface{}
	if _, err := decodeBody(r, &body); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	raw, err := client.CreateCardToken(r.Context(), body)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(raw)
}

func (h *TransactionHandler) GetWallets(w http.ResponseWriter, r *http.Request) {
	client, ok := clientFor(h.clients, r)
	if !ok {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "No provider client for tenant", nil)
		return
	}

	raw, err := client.GetWallets(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}
