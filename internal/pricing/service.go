package pricing

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Service fronts the snapshot store and the strategy engine.
type Service struct {
	store       SnapshotStore
	engine      *Engine
	competitors CompetitorSource
	log         *logrus.Logger
}

func NewService(store SnapshotStore, engine *Engine, competitors CompetitorSource, log *logrus.Logger) *Service {
	return &Service{store: store, engine: engine, competitors: competitors, log: log}
}

// RecordPrice appends one observation to the price history.
func (s *Service) RecordPrice(ctx context.Context, snap Snapshot) error {
	return s.store.Record(ctx, snap)
}

// LatestPrice returns the newest snapshot for a printing+finish, or ok=false
// when no price was ever recorded.
func (s *Service) LatestPrice(ctx context.Context, printingID, finish string) (Snapshot, bool, error) {
	return s.store.Latest(ctx, printingID, finish)
}

// Recommend fills in the competitor range from live listings when the caller
// names a printing, then runs the strategy engine.
func (s *Service) Recommend(ctx context.Context, printingID string, req RecommendRequest) (float64, error) {
	if req.Competitors == nil && printingID != "" && s.competitors != nil {
		competitors, err := s.competitors.CompetitorRange(ctx, printingID, req.Finish)
		if err != nil {
			// Unknown competition prices the card as if uncontested.
			s.log.WithError(err).WithField("printing_id", printingID).
				Warn("competitor range lookup failed")
		} else {
			req.Competitors = competitors
		}
	}
	return s.engine.Recommend(req)
}

// RecommendBatch reprices every item independently under one strategy.
func (s *Service) RecommendBatch(items []BatchItem, strategy Strategy, bulkPct float64) ([]BatchResult, error) {
	return s.engine.RecommendBatch(items, strategy, bulkPct)
}
