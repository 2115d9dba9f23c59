package pricing

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cardvault/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type priceObservation struct {
	PrintingID string    `json:"printing_id" validate:"required"`
	Finish     string    `json:"finish" validate:"required,finish"`
	Price      float64   `json:"price" validate:"required,gt=0"`
	ObservedAt time.Time `json:"observed_at"`
}

type recordPricesRequest struct {
	Prices []priceObservation `json:"prices" validate:"min=1,dive"`
}

// RecordPrices handles POST /v1/sync/prices
// @Summary Record market price observations
// @Description Append-only price snapshots from the catalog sync collaborator
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/sync/prices [post]
func (h *HTTPHandler) RecordPrices(w http.ResponseWriter, r *http.Request) {
	var req recordPricesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid price payload", details)
		return
	}

	for _, obs := range req.Prices {
		snap := Snapshot{
			PrintingID: obs.PrintingID,
			Finish:     obs.Finish,
			Price:      obs.Price,
			ObservedAt: obs.ObservedAt,
		}
		if err := h.svc.RecordPrice(r.Context(), snap); err != nil {
			if errors.Is(err, ErrInvalid) {
				httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
				return
			}
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
			return
		}
	}

	httpx.JSONSuccess(w, r, map[string]any{"recorded": len(req.Prices)}, nil)
}

type recommendRequest struct {
	PrintingID    string           `json:"printing_id,omitempty"`
	BasePrice     float64          `json:"base_price" validate:"gte=0"`
	CustomPrice   float64          `json:"custom_price,omitempty"`
	Condition     string           `json:"condition" validate:"omitempty,condition"`
	Finish        string           `json:"finish" validate:"omitempty,finish"`
	Competitors   *CompetitorRange `json:"competitors,omitempty"`
	Strategy      Strategy         `json:"strategy" validate:"required"`
	BulkAdjustPct float64          `json:"bulk_adjust_pct"`
}

// Recommend handles POST /v1/pricing/recommend
// @Summary Recommend a sale price
// @Description Strategy-based price suggestion for one card-unit
// @Tags pricing
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/pricing/recommend [post]
func (h *HTTPHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid pricing request", details)
		return
	}

	price, err := h.svc.Recommend(r.Context(), req.PrintingID, RecommendRequest{
		BasePrice:     req.BasePrice,
		CustomPrice:   req.CustomPrice,
		Condition:     req.Condition,
		Finish:        req.Finish,
		Competitors:   req.Competitors,
		Strategy:      req.Strategy,
		BulkAdjustPct: req.BulkAdjustPct,
	})
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, map[string]any{"recommended": price}, nil)
}

type recommendBatchRequest struct {
	Items         []BatchItem `json:"items" validate:"min=1"`
	Strategy      Strategy    `json:"strategy" validate:"required"`
	BulkAdjustPct float64     `json:"bulk_adjust_pct"`
}

// RecommendBatch handles POST /v1/pricing/recommend/batch
// @Summary Recompute prices for a set of cards
// @Description Applies one strategy independently to every item; overridden items pass through
// @Tags pricing
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/pricing/recommend/batch [post]
func (h *HTTPHandler) RecommendBatch(w http.ResponseWriter, r *http.Request) {
	var req recommendBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid batch request", details)
		return
	}

	results, err := h.svc.RecommendBatch(req.Items, req.Strategy, req.BulkAdjustPct)
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, results, nil)
}
