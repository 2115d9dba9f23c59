package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cardvault/internal/httpx"
	"cardvault/internal/inventory"
)

// Aggregator supplies live availability for a printing.
type Aggregator interface {
	Aggregate(ctx context.Context, printingID string) (inventory.VersionAggregate, error)
}

type HTTPHandler struct {
	svc *Service
	agg Aggregator
}

func NewHTTPHandler(svc *Service, agg Aggregator) *HTTPHandler {
	return &HTTPHandler{svc: svc, agg: agg}
}

type syncCardRequest struct {
	Card      Card       `json:"card"`
	Printings []Printing `json:"printings" validate:"min=1"`
}

// SyncCard handles POST /v1/sync/cards
// @Summary Upsert a card and its printings
// @Description Idempotent upsert called by the catalog sync collaborator
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/sync/cards [post]
func (h *HTTPHandler) SyncCard(w http.ResponseWriter, r *http.Request) {
	var req syncCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}

	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid sync payload", details)
		return
	}

	if err := h.svc.SyncCard(r.Context(), &req.Card, req.Printings); err != nil {
		if errors.Is(err, ErrInvalid) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, map[string]any{
		"oracle_id": req.Card.OracleID,
		"printings": len(req.Printings),
	}, nil)
}

// GetPrinting handles GET /v1/printings/{id}
// @Summary Get a printing
// @Description One printing with derived treatment and live availability
// @Tags catalog
// @Produce json
// @Param id path string true "Printing ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/printings/{id} [get]
func (h *HTTPHandler) GetPrinting(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Printing id is required", nil)
		return
	}

	view, err := h.svc.GetPrinting(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Printing not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	agg, err := h.agg.Aggregate(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, map[string]any{
		"printing":  view.Printing,
		"treatment": view.Treatment,
		"aggregate": agg,
	}, nil)
}
