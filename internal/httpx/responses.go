package httpx

import (
	"encoding/json"
	"net/http"
)

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponseBody `json:"error"`
	Meta    interface{}       `json:"meta,omitempty"`
}

type ErrorResponseBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func buildMeta(r *http.Request, customMeta interface{}) interface{} {
	requestID := RequestIDFrom(r)
	if requestID == "" && customMeta == nil {
		return nil
	}
	meta := make(map[string]interface{})
	if requestID != "" {
		meta["request_id"] = requestID
	}
	if customMap, ok := customMeta.(map[string]interface{}); ok {
		for k, v := range customMap {
			meta[k] = v
		}
	} else if customMeta != nil {
		meta["custom"] = customMeta
	}
	return meta
}

func JSONSuccess(w http.ResponseWriter, r *http.Request, data interface{}, customMeta interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    buildMeta(r, customMeta),
	})
}

func JSONSuccessCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    buildMeta(r, nil),
	})
}

func JSONSuccessNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string, details []ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error: ErrorResponseBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: buildMeta(r, nil),
	})
}
