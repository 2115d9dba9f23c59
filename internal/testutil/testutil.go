package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"cardvault/internal/catalog"
)

// TestCard is a mock card for testing
var TestCard = catalog.Card{
	OracleID:      "test-oracle-id-123",
	Name:          "Lightning Bolt",
	ManaCost:      "{R}",
	ManaValue:     1,
	TypeLine:      "Instant",
	OracleText:    "Lightning Bolt deals 3 damage to any target.",
	Colors:        []string{"R"},
	ColorIdentity: []string{"R"},
	Legalities:    map[string]string{"modern": "legal", "vintage": "legal"},
}

// TestPrinting is a mock printing for testing
var TestPrinting = catalog.Printing{
	ID:              "test-printing-id-789",
	OracleID:        "test-oracle-id-123",
	SetCode:         "2x2",
	SetName:         "Double Masters 2022",
	CollectorNumber: "117",
	Rarity:          "uncommon",
	ReleasedAt:      time.Date(2022, 7, 8, 0, 0, 0, 0, time.UTC),
	Frame:           "2015",
	BorderColor:     "black",
	Finishes:        []string{catalog.FinishNonfoil, catalog.FinishFoil},
	Artist:          "Christopher Moeller",
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// AssertResponseCode checks if the response code matches expected
func AssertResponseCode(t interface {
	Errorf(format string, args ...any)
}, got, want int) {
	if got != want {
		t.Errorf("got status code %d, want %d", got, want)
	}
}

// AssertResponseBody checks if the response body contains expected field
func AssertResponseBody(t interface {
	Errorf(format string, args ...any)
}, body map[string]interface{}, key string, expectedValue interface{}) {
	value, ok := body[key]
	if !ok {
		t.Errorf("response body missing key %q", key)
		return
	}
	if value != expectedValue {
		t.Errorf("got %q for key %q, want %q", value, key, expectedValue)
	}
}
