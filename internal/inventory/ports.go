package inventory

import (
	"context"

	"cardvault/internal/pricing"
)

// ListingStore reads the externally-owned listings table.
type ListingStore interface {
	ActiveStats(ctx context.Context, printingIDs []string) (map[string]ListingStats, error)
	ActiveStatsByFinish(ctx context.Context, printingIDs []string) (map[string]map[string]ListingStats, error)
	ActivePriceRange(ctx context.Context, printingID, finish string) (*pricing.CompetitorRange, error)
}

// PriceSource supplies latest recorded market prices.
type PriceSource interface {
	LatestFor(ctx context.Context, printingIDs []string) (map[string]map[string]pricing.Snapshot, error)
}
