package importer

import (
	"errors"

	"cardvault/internal/inventory"
)

// ErrInvalid marks unusable import input (empty file, missing header).
var ErrInvalid = errors.New("invalid import")

// MatchStatus of a reconciled row.
type MatchStatus string

const (
	StatusMatched     MatchStatus = "matched"
	StatusNeedsReview MatchStatus = "needs_review"
)

// Row is one normalized spreadsheet row. Rows live only for the duration of
// a batch; the listings collaborator turns them into real inventory.
type Row struct {
	Name      string              `json:"name"`
	Quantity  int                 `json:"quantity"`
	Set       string              `json:"set"`
	Condition inventory.Condition `json:"condition"`
	Finish    string              `json:"finish"`
	Language  string              `json:"language"`
	UserPrice *float64            `json:"user_price,omitempty"`

	Status      MatchStatus `json:"status"`
	OracleID    string      `json:"oracle_id,omitempty"`
	PrintingID  string      `json:"printing_id,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	MarketPrice *float64    `json:"market_price,omitempty"`
}

// BatchResult summarizes one import batch.
type BatchResult struct {
	BatchID     string `json:"batch_id"`
	Schema      string `json:"schema"`
	Rows        []Row  `json:"rows"`
	Total       int    `json:"total"`
	Matched     int    `json:"matched"`
	NeedsReview int    `json:"needs_review"`
	Dropped     int    `json:"dropped"`
	Abandoned   bool   `json:"abandoned,omitempty"`
}
