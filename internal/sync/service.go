package sync

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"cardvault/internal/catalog"
	"cardvault/internal/platform/carddata"
	"cardvault/internal/pricing"
)

// DefaultFXRateUSDToAUD converts USD market prices when the source has no
// native AUD price. It is a configured parameter, not a live rate.
const DefaultFXRateUSDToAUD = 1.55

// CardDataClient pulls pages of cards from the external card-data API.
type CardDataClient interface {
	SearchCards(ctx context.Context, query string, page int) (*carddata.CardList, error)
}

// CatalogStore receives the mapped reference data.
type CatalogStore interface {
	UpsertCard(ctx context.Context, card *catalog.Card) error
	UpsertPrinting(ctx context.Context, printing *catalog.Printing) error
}

// PriceStore receives price observations.
type PriceStore interface {
	Record(ctx context.Context, s pricing.Snapshot) error
}

type Config struct {
	Queries        []string
	MaxPages       int
	FXRateUSDToAUD float64
}

// Summary is the accounting for one sync run.
type Summary struct {
	CardsUpserted     int
	PrintingsUpserted int
	PricesRecorded    int
	Errors            int
}

// Service drives scheduled catalog and price sync from the external
// card-data API.
type Service struct {
	client  CardDataClient
	catalog CatalogStore
	prices  PriceStore
	cfg     Config
	log     *logrus.Logger
}

func NewService(client CardDataClient, catalogStore CatalogStore, priceStore PriceStore, cfg Config, log *logrus.Logger) *Service {
	if cfg.FXRateUSDToAUD <= 0 {
		cfg.FXRateUSDToAUD = DefaultFXRateUSDToAUD
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 20
	}
	return &Service{client: client, catalog: catalogStore, prices: priceStore, cfg: cfg, log: log}
}

// Run syncs every configured query. A failing card is logged and skipped;
// the run continues because every write is idempotent and the next run will
// catch up.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	started := time.Now()

	for _, query := range s.cfg.Queries {
		if err := s.syncQuery(ctx, query, &sum); err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			s.log.WithError(err).WithField("query", query).Error("sync query failed")
			sum.Errors++
		}
	}

	s.log.WithFields(logrus.Fields{
		"cards":       sum.CardsUpserted,
		"printings":   sum.PrintingsUpserted,
		"prices":      sum.PricesRecorded,
		"errors":      sum.Errors,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("sync run finished")
	return sum, nil
}

func (s *Service) syncQuery(ctx context.Context, query string, sum *Summary) error {
	for page := 1; page <= s.cfg.MaxPages; page++ {
		list, err := s.client.SearchCards(ctx, query, page)
		if err != nil {
			return err
		}

		for i := range list.Data {
			if err := s.syncCard(ctx, &list.Data[i], sum); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.WithError(err).WithField("card", list.Data[i].Name).Warn("card sync failed")
				sum.Errors++
			}
		}

		if !list.HasMore {
			break
		}
	}
	return nil
}

func (s *Service) syncCard(ctx context.Context, src *carddata.Card, sum *Summary) error {
	card, printing := mapCard(src)

	if err := s.catalog.UpsertCard(ctx, &card); err != nil {
		return err
	}
	sum.CardsUpserted++

	if err := s.catalog.UpsertPrinting(ctx, &printing); err != nil {
		return err
	}
	sum.PrintingsUpserted++

	observedAt := time.Now().UTC()
	for _, finish := range printing.Finishes {
		price, ok := s.priceFor(src, finish)
		if !ok {
			continue
		}
		snap := pricing.Snapshot{
			PrintingID: printing.ID,
			Finish:     finish,
			Price:      price,
			ObservedAt: observedAt,
		}
		if err := s.prices.Record(ctx, snap); err != nil {
			return err
		}
		sum.PricesRecorded++
	}
	return nil
}

// priceFor prefers a native AUD price and falls back to USD times the
// configured conversion rate.
func (s *Service) priceFor(src *carddata.Card, finish string) (float64, bool) {
	audKey, usdKey := "aud", "usd"
	switch finish {
	case catalog.FinishFoil:
		audKey, usdKey = "aud_foil", "usd_foil"
	case catalog.FinishEtched:
		audKey, usdKey = "aud_etched", "usd_etched"
	}

	if price, ok := parsePrice(src.Prices[audKey]); ok {
		return price, true
	}
	if price, ok := parsePrice(src.Prices[usdKey]); ok {
		return price * s.cfg.FXRateUSDToAUD, true
	}
	return 0, false
}

func parsePrice(raw *string) (float64, bool) {
	if raw == nil || *raw == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(*raw, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

func mapCard(src *carddata.Card) (catalog.Card, catalog.Printing) {
	card := catalog.Card{
		OracleID:      src.OracleID,
		Name:          src.Name,
		ManaCost:      src.ManaCost,
		ManaValue:     src.CMC,
		TypeLine:      src.TypeLine,
		OracleText:    src.OracleText,
		Power:         src.Power,
		Toughness:     src.Toughness,
		Colors:        src.Colors,
		ColorIdentity: src.ColorIdentity,
		Keywords:      src.Keywords,
		Legalities:    src.Legalities,
		Reserved:      src.Reserved,
	}

	printing := catalog.Printing{
		ID:              src.ID,
		OracleID:        src.OracleID,
		SetCode:         src.Set,
		SetName:         src.SetName,
		CollectorNumber: src.CollectorNumber,
		Rarity:          src.Rarity,
		Frame:           src.Frame,
		FrameEffects:    src.FrameEffects,
		BorderColor:     src.BorderColor,
		PromoTypes:      src.PromoTypes,
		Finishes:        src.Finishes,
		Oversized:       src.Oversized,
		FullArt:         src.FullArt,
		Textless:        src.Textless,
		Promo:           src.Promo,
		Artist:          src.Artist,
	}

	if released, err := time.Parse("2006-01-02", src.ReleasedAt); err == nil {
		printing.ReleasedAt = released
	}

	images := src.ImageURIs
	if len(images) == 0 && len(src.CardFaces) > 0 {
		images = src.CardFaces[0].ImageURIs
	}
	printing.ImageSmall = images["small"]
	printing.ImageNormal = images["normal"]
	printing.ImageLarge = images["large"]

	if len(src.CardFaces) > 1 {
		if back, ok := src.CardFaces[1].ImageURIs["normal"]; ok && back != "" {
			printing.ImageBack = &back
		}
	}

	return card, printing
}
