package inventory

import (
	"context"

	"cardvault/internal/pricing"
)

// Service joins static catalog printings with live seller inventory.
type Service struct {
	listings ListingStore
	prices   PriceSource
}

func NewService(listings ListingStore, prices PriceSource) *Service {
	return &Service{listings: listings, prices: prices}
}

// Aggregate computes the availability picture for one printing.
func (s *Service) Aggregate(ctx context.Context, printingID string) (VersionAggregate, error) {
	aggs, err := s.AggregateMany(ctx, []string{printingID})
	if err != nil {
		return VersionAggregate{}, err
	}
	return aggs[printingID], nil
}

// AggregateMany computes aggregates for a batch of printings in two queries.
// Printings with no active listings still get an entry (out of stock, with
// whatever snapshot prices exist).
func (s *Service) AggregateMany(ctx context.Context, printingIDs []string) (map[string]VersionAggregate, error) {
	stats, err := s.listings.ActiveStats(ctx, printingIDs)
	if err != nil {
		return nil, err
	}
	latest, err := s.prices.LatestFor(ctx, printingIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]VersionAggregate, len(printingIDs))
	for _, id := range printingIDs {
		st := stats[id]
		out[id] = VersionAggregate{
			PrintingID:     id,
			ActiveListings: st.ActiveCount,
			TotalQuantity:  st.TotalQuantity,
			MinPrice:       st.MinPrice,
			MaxPrice:       st.MaxPrice,
			Conditions:     st.Conditions,
			LatestPrices:   latest[id],
			InStock:        st.ActiveCount > 0,
		}
	}
	return out, nil
}

// FinishAggregates breaks availability out per finish for each printing.
func (s *Service) FinishAggregates(ctx context.Context, printingIDs []string) (map[string]map[string]FinishAggregate, error) {
	stats, err := s.listings.ActiveStatsByFinish(ctx, printingIDs)
	if err != nil {
		return nil, err
	}
	latest, err := s.prices.LatestFor(ctx, printingIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]FinishAggregate, len(printingIDs))
	for _, id := range printingIDs {
		finishes := make(map[string]FinishAggregate)
		for finish, st := range stats[id] {
			finishes[finish] = FinishAggregate{
				Finish:         finish,
				ActiveListings: st.ActiveCount,
				TotalQuantity:  st.TotalQuantity,
				MinPrice:       st.MinPrice,
				MaxPrice:       st.MaxPrice,
				LatestPrice:    snapshotPtr(latest[id], finish),
			}
		}
		// Finishes with recorded prices but no listings still show up.
		for finish := range latest[id] {
			if _, ok := finishes[finish]; !ok {
				finishes[finish] = FinishAggregate{
					Finish:      finish,
					LatestPrice: snapshotPtr(latest[id], finish),
				}
			}
		}
		out[id] = finishes
	}
	return out, nil
}

// CompetitorRange implements pricing.CompetitorSource from active listings.
func (s *Service) CompetitorRange(ctx context.Context, printingID, finish string) (*pricing.CompetitorRange, error) {
	return s.listings.ActivePriceRange(ctx, printingID, finish)
}

func snapshotPtr(byFinish map[string]pricing.Snapshot, finish string) *pricing.Snapshot {
	if snap, ok := byFinish[finish]; ok {
		return &snap
	}
	return nil
}
