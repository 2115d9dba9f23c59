package pricing

import (
	"context"
)

// SnapshotStore is the contract for price history storage.
type SnapshotStore interface {
	// Record appends one observation. It never overwrites.
	Record(ctx context.Context, s Snapshot) error

	// Latest returns the most recently observed snapshot for a
	// printing+finish. The second return is false when no price was ever
	// recorded; callers treat that as "unknown", not as an error.
	Latest(ctx context.Context, printingID, finish string) (Snapshot, bool, error)

	// LatestFor returns the latest snapshot per finish for each of the given
	// printings, keyed by printing id then finish.
	LatestFor(ctx context.Context, printingIDs []string) (map[string]map[string]Snapshot, error)
}

// CompetitorSource supplies the active-listing price range for a
// printing+finish. It is fed by the inventory aggregator.
type CompetitorSource interface {
	CompetitorRange(ctx context.Context, printingID, finish string) (*CompetitorRange, error)
}
