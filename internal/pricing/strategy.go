package pricing

import (
	"fmt"
	"math"
	"strings"
)

// Strategy selects the formula applied to a base price.
type Strategy string

const (
	StrategyCompetitive Strategy = "competitive"
	StrategyMarket      Strategy = "market"
	StrategyQuickSale   Strategy = "quick-sale"
	StrategyPremium     Strategy = "premium"
	StrategyUndercut    Strategy = "undercut"
	StrategyCustom      Strategy = "custom"
)

// DefaultFloor is the minimum recommended price.
const DefaultFloor = 0.25

// Bulk adjustment bounds, in percent.
const (
	MinBulkAdjustPct = -30
	MaxBulkAdjustPct = 30
)

// CompetitorRange is the min/max active listing price for the same
// printing+finish, or absent when nobody else is selling it.
type CompetitorRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RecommendRequest carries everything a recommendation needs. Recommendations
// are stateless: identical input always yields identical output.
type RecommendRequest struct {
	BasePrice     float64
	CustomPrice   float64
	Condition     string
	Finish        string
	Competitors   *CompetitorRange
	Strategy      Strategy
	BulkAdjustPct float64
}

// Engine computes suggested sale prices.
type Engine struct {
	floor float64
}

func NewEngine(floor float64) *Engine {
	if floor <= 0 {
		floor = DefaultFloor
	}
	return &Engine{floor: floor}
}

// Recommend applies the strategy formula, then the bulk adjustment, then the
// floor clamp, and rounds to cents.
func (e *Engine) Recommend(req RecommendRequest) (float64, error) {
	if req.BulkAdjustPct < MinBulkAdjustPct || req.BulkAdjustPct > MaxBulkAdjustPct {
		return 0, fmt.Errorf("%w: bulk adjustment must be between %d and %d percent",
			ErrInvalid, MinBulkAdjustPct, MaxBulkAdjustPct)
	}

	// Validation accepts condition and finish in any case; compare them the
	// same way here.
	req.Condition = strings.ToUpper(req.Condition)
	req.Finish = strings.ToLower(req.Finish)

	var price float64
	switch req.Strategy {
	case StrategyCompetitive:
		price = req.BasePrice * 0.95
	case StrategyMarket:
		price = req.BasePrice
	case StrategyQuickSale:
		price = req.BasePrice * 0.85
	case StrategyPremium:
		price = req.BasePrice
		if req.Condition != "NM" {
			price = req.BasePrice * 0.9
		}
		if req.Finish == "foil" {
			price *= 1.05
		}
	case StrategyUndercut:
		if req.Competitors != nil {
			price = req.Competitors.Min - 0.01
		} else {
			price = req.BasePrice * 0.9
		}
	case StrategyCustom:
		price = req.CustomPrice
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalid, req.Strategy)
	}

	price *= 1 + req.BulkAdjustPct/100

	if price < e.floor {
		price = e.floor
	}
	return math.Round(price*100) / 100, nil
}

// BatchItem is one card-unit in a batch recompute.
type BatchItem struct {
	ID           string           `json:"id"`
	BasePrice    float64          `json:"base_price"`
	CustomPrice  float64          `json:"custom_price,omitempty"`
	Condition    string           `json:"condition"`
	Finish       string           `json:"finish"`
	Competitors  *CompetitorRange `json:"competitors,omitempty"`
	Overridden   bool             `json:"overridden,omitempty"`
	CurrentPrice float64          `json:"current_price,omitempty"`
}

// BatchResult is the outcome for one batch item.
type BatchResult struct {
	ID          string  `json:"id"`
	Recommended float64 `json:"recommended"`
	Skipped     bool    `json:"skipped"`
}

// RecommendBatch applies the same strategy to every item independently.
// Items the caller has manually overridden keep their current price until the
// caller re-triggers them (last write wins per card, never a merge).
func (e *Engine) RecommendBatch(items []BatchItem, strategy Strategy, bulkPct float64) ([]BatchResult, error) {
	out := make([]BatchResult, 0, len(items))
	for _, item := range items {
		if item.Overridden {
			out = append(out, BatchResult{ID: item.ID, Recommended: item.CurrentPrice, Skipped: true})
			continue
		}
		price, err := e.Recommend(RecommendRequest{
			BasePrice:     item.BasePrice,
			CustomPrice:   item.CustomPrice,
			Condition:     item.Condition,
			Finish:        item.Finish,
			Competitors:   item.Competitors,
			Strategy:      strategy,
			BulkAdjustPct: bulkPct,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, BatchResult{ID: item.ID, Recommended: price})
	}
	return out, nil
}
