package httpx

import (
	"net/http"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Collaborator services forward their own IDs; accept anything
		// UUID-sized, replace the rest.
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()
		}

		w.Header().Set(requestIDHeader, requestID)
		ctx := ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
