// Package api exposes items over HTTP: CRUD endpoints plus the batch
// processing trigger.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/item-service/pkg/item"
	"github.com/Sternrassler/item-service/pkg/metrics"
	"github.com/Sternrassler/item-service/pkg/store"
	"github.com/Sternrassler/item-service/pkg/workerpool"
)

// maxBodyBytes bounds request bodies for create/update.
const maxBodyBytes = 1 << 20

// BatchRunner runs one batch over all stored items.
type BatchRunner interface {
	RunBatch(ctx context.Context) ([]item.Item, error)
}

// ErrorResponse is the body returned for 4xx/5xx responses.
type ErrorResponse struct {
	Errors []string `json:"errors"`
	Status int      `json:"status"`
}

// Handler serves the item API.
type Handler struct {
	store  store.Store
	batch  BatchRunner
	logger zerolog.Logger
}

// NewHandler creates the API handler.
func NewHandler(s store.Store, batch BatchRunner, logger zerolog.Logger) *Handler {
	return &Handler{
		store:  s,
		batch:  batch,
		logger: logger,
	}
}

// Routes returns the instrumented router.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/items", h.listItems)
	mux.HandleFunc("POST /api/items", h.createItem)
	mux.HandleFunc("GET /api/items/process", h.processItems)
	mux.HandleFunc("GET /api/items/{id}", h.getItem)
	mux.HandleFunc("PUT /api/items/{id}", h.updateItem)
	mux.HandleFunc("DELETE /api/items/{id}", h.deleteItem)

	return instrument(mux, h.logger)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.FindAll(r.Context())
	if err != nil {
		h.internalError(w, "list items", err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	it, ok := h.decodeItem(w, r)
	if !ok {
		return
	}
	it.ID = 0

	saved, err := h.store.Save(r.Context(), it)
	if err != nil {
		h.internalError(w, "create item", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	it, err := h.store.FindByID(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case err != nil:
		h.internalError(w, "get item", err)
	default:
		h.writeJSON(w, http.StatusOK, it)
	}
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	it, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	if _, err := h.store.FindByID(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.internalError(w, "update item", err)
		return
	}

	it.ID = id
	updated, err := h.store.Save(r.Context(), it)
	if err != nil {
		h.internalError(w, "update item", err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	err := h.store.DeleteByID(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case err != nil:
		h.internalError(w, "delete item", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// processItems runs one batch and returns the processed items.
// The batch is bound to the request context.
func (h *Handler) processItems(w http.ResponseWriter, r *http.Request) {
	processed, err := h.batch.RunBatch(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, workerpool.ErrRejected) {
			status = http.StatusServiceUnavailable
		}
		h.logger.Error().Err(err).Int("status_code", status).Msg("Batch processing failed")
		h.writeJSON(w, status, ErrorResponse{
			Errors: []string{"batch processing failed"},
			Status: status,
		})
		return
	}
	h.writeJSON(w, http.StatusOK, processed)
}

// decodeItem reads and validates the request body. On failure it writes a
// 400 response and returns false.
func (h *Handler) decodeItem(w http.ResponseWriter, r *http.Request) (item.Item, bool) {
	var it item.Item
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&it); err != nil {
		h.badRequest(w, []string{"Malformed JSON body"})
		return item.Item{}, false
	}

	if err := it.Validate(); err != nil {
		var verr *item.ValidationError
		if errors.As(err, &verr) {
			h.badRequest(w, verr.Problems)
		} else {
			h.badRequest(w, []string{err.Error()})
		}
		return item.Item{}, false
	}
	return it, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(w, []string{"Invalid item id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) badRequest(w http.ResponseWriter, problems []string) {
	h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Errors: problems,
		Status: http.StatusBadRequest,
	})
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error().Err(err).Str("operation", op).Msg("Store operation failed")
	h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Errors: []string{op + " failed"},
		Status: http.StatusInternalServerError,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write response")
	}
}
