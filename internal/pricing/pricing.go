package pricing

import (
	"errors"
	"time"
)

// ErrInvalid marks rejected pricing input. No partial effect occurs.
var ErrInvalid = errors.New("invalid input")

// Snapshot is one observed market price for a printing+finish. Snapshots are
// append-only: history accumulates and rows are never updated or deleted.
type Snapshot struct {
	PrintingID string    `json:"printing_id"`
	Finish     string    `json:"finish"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}
