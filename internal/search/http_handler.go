package search

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cardvault/internal/httpx"
	"cardvault/internal/inventory"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Search handles GET /v1/cards/search
// @Summary Search sellable card versions
// @Description Stock-prioritized, filtered, paginated version search
// @Tags cards
// @Produce json
// @Param q query string true "Name substring (min 2 chars)"
// @Param sort query string false "relevance, price_asc, price_desc, name, release, popularity"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page (max 100)" default(20)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/cards/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Params{
		Query:           query.Get("q"),
		InStockOnly:     query.Get("in_stock") == "true",
		SetCode:         query.Get("set"),
		Artist:          query.Get("artist"),
		OracleText:      query.Get("oracle_text"),
		Sort:            SortKey(query.Get("sort")),
		ColorMode:       ColorMode(query.Get("color_mode")),
		NoStockPriority: query.Get("stock_priority") == "false",
	}

	if v := query.Get("price_min"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.PriceMin = &f
		}
	}
	if v := query.Get("price_max"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.PriceMax = &f
		}
	}
	if v := query.Get("conditions"); v != "" {
		for _, c := range strings.Split(v, ",") {
			params.Conditions = append(params.Conditions, inventory.Condition(strings.ToUpper(strings.TrimSpace(c))))
		}
	}
	if v := query.Get("rarities"); v != "" {
		params.Rarities = strings.Split(v, ",")
	}
	if v := query.Get("colors"); v != "" {
		params.Colors = strings.Split(v, ",")
	}
	for name, target := range map[string]**NumericFilter{
		"mana_value": &params.ManaValue,
		"power":      &params.Power,
		"toughness":  &params.Toughness,
	} {
		if v := query.Get(name); v != "" {
			if f, ok := parseNumericFilter(v); ok {
				*target = &f
			} else {
				httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR",
					name+" must look like op:value, e.g. gte:3", nil)
				return
			}
		}
	}

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	params.Page = page
	params.PageSize = pageSize

	result, err := h.svc.Search(r.Context(), params)
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, result.Results, map[string]any{
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total":       result.Total,
		"total_pages": result.TotalPages,
	})
}

// AllVersions handles GET /v1/cards/versions
// @Summary All versions of a card
// @Description Every printing of the exact card name, most available first
// @Tags cards
// @Produce json
// @Param name query string true "Exact card name"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/cards/versions [get]
func (h *HTTPHandler) AllVersions(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	versions, err := h.svc.AllVersions(r.Context(), name)
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, versions, map[string]any{"total": len(versions)})
}

// parseNumericFilter parses "op:value" (e.g. "gte:3"); a bare number means
// equality.
func parseNumericFilter(s string) (NumericFilter, bool) {
	op := "eq"
	value := s
	if idx := strings.Index(s, ":"); idx >= 0 {
		op = s[:idx]
		value = s[idx+1:]
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return NumericFilter{}, false
	}
	f := NumericFilter{Op: op, Value: v}
	if f.validate("") != nil {
		return NumericFilter{}, false
	}
	return f, true
}
