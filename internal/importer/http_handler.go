package importer

import (
	"errors"
	"net/http"

	"cardvault/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

const maxUploadBytes = 10 << 20

// ImportBatch handles POST /v1/imports
// @Summary Reconcile a bulk-import spreadsheet
// @Description Detects the CSV schema, normalizes rows, and matches them against the catalog
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV export"
// @Param schema formData string false "Schema hint (tcgplayer, moxfield, deckbox, generic)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/imports [post]
func (h *HTTPHandler) ImportBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Expected multipart form with a file field", nil)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Missing file upload", nil)
		return
	}
	defer file.Close()

	result, err := h.svc.ImportCSV(r.Context(), file, r.FormValue("schema"))
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, result, map[string]any{
		"matched":      result.Matched,
		"needs_review": result.NeedsReview,
		"dropped":      result.Dropped,
	})
}
