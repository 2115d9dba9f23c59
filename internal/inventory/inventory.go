package inventory

import (
	"time"

	"cardvault/internal/pricing"
)

// Condition is the 5-point card condition scale.
type Condition string

const (
	ConditionNM  Condition = "NM"
	ConditionLP  Condition = "LP"
	ConditionMP  Condition = "MP"
	ConditionHP  Condition = "HP"
	ConditionDMG Condition = "DMG"
)

// Status of a seller listing. The listings table is owned by the marketplace
// collaborator; this core only reads it.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusSold      Status = "sold"
	StatusCancelled Status = "cancelled"
)

// Listing is one seller's stock of a printing.
type Listing struct {
	ID         string    `json:"id"`
	PrintingID string    `json:"printing_id"`
	SellerID   string    `json:"seller_id"`
	Condition  Condition `json:"condition"`
	Finish     string    `json:"finish"`
	Language   string    `json:"language"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListingStats are the raw SQL aggregates over active listings.
type ListingStats struct {
	ActiveCount   int
	TotalQuantity int
	MinPrice      *float64
	MaxPrice      *float64
	Conditions    []Condition
}

// VersionAggregate merges live listing stats with the latest recorded market
// price per finish. It is recomputed on every request and never persisted:
// listings change under us and there is no invalidation channel.
type VersionAggregate struct {
	PrintingID     string                      `json:"printing_id"`
	ActiveListings int                         `json:"active_listings"`
	TotalQuantity  int                         `json:"total_quantity"`
	MinPrice       *float64                    `json:"min_price,omitempty"`
	MaxPrice       *float64                    `json:"max_price,omitempty"`
	Conditions     []Condition                 `json:"conditions,omitempty"`
	LatestPrices   map[string]pricing.Snapshot `json:"latest_prices,omitempty"`
	InStock        bool                        `json:"in_stock"`
}

// FinishAggregate is availability broken out per finish, for the
// all-versions view.
type FinishAggregate struct {
	Finish         string            `json:"finish"`
	ActiveListings int               `json:"active_listings"`
	TotalQuantity  int               `json:"total_quantity"`
	MinPrice       *float64          `json:"min_price,omitempty"`
	MaxPrice       *float64          `json:"max_price,omitempty"`
	LatestPrice    *pricing.Snapshot `json:"latest_price,omitempty"`
}
