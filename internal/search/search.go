package search

import (
	"errors"
	"fmt"
	"strings"

	"cardvault/internal/catalog"
	"cardvault/internal/inventory"
)

// ErrInvalid marks rejected queries (too short, malformed filters).
var ErrInvalid = errors.New("invalid query")

// SortKey selects the secondary ordering of search results. The primary
// ordering is in-stock first unless the caller explicitly turns stock
// priority off.
type SortKey string

const (
	SortRelevance  SortKey = "relevance"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortName       SortKey = "name"
	SortRelease    SortKey = "release"
	SortPopularity SortKey = "popularity"
)

// ColorMode controls how the color filter matches.
type ColorMode string

const (
	ColorAny     ColorMode = "any"
	ColorExactly ColorMode = "exactly"
	ColorAtLeast ColorMode = "at_least"
)

const (
	// MinQueryLength guards against full-catalog scans.
	MinQueryLength = 2

	// MaxPageSize bounds the cost of one page.
	MaxPageSize     = 100
	DefaultPageSize = 20

	// maxCandidateCards caps the name-match working set.
	maxCandidateCards = 200
)

// NumericFilter is a comparator+value constraint (mana value, power,
// toughness). Op is one of eq, lt, lte, gt, gte.
type NumericFilter struct {
	Op    string
	Value float64
}

func (f NumericFilter) matches(v float64) bool {
	switch f.Op {
	case "eq":
		return v == f.Value
	case "lt":
		return v < f.Value
	case "lte":
		return v <= f.Value
	case "gt":
		return v > f.Value
	case "gte":
		return v >= f.Value
	}
	return false
}

func (f NumericFilter) validate(field string) error {
	switch f.Op {
	case "eq", "lt", "lte", "gt", "gte":
		return nil
	}
	return fmt.Errorf("%w: %s comparator must be one of eq, lt, lte, gt, gte", ErrInvalid, field)
}

// Params is a search request: name substring plus conjunctive filters.
type Params struct {
	Query string

	PriceMin    *float64
	PriceMax    *float64
	InStockOnly bool
	Conditions  []inventory.Condition
	Rarities    []string
	Colors      []string
	ColorMode   ColorMode
	ManaValue   *NumericFilter
	Power       *NumericFilter
	Toughness   *NumericFilter
	SetCode     string
	Artist      string
	OracleText  string

	Sort            SortKey
	NoStockPriority bool

	Page     int
	PageSize int
}

func (p *Params) normalize() error {
	p.Query = strings.TrimSpace(p.Query)
	if len(p.Query) < MinQueryLength {
		return fmt.Errorf("%w: query must be at least %d characters", ErrInvalid, MinQueryLength)
	}

	if p.Sort == "" {
		p.Sort = SortRelevance
	}
	switch p.Sort {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortName, SortRelease, SortPopularity:
	default:
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalid, p.Sort)
	}

	if p.ColorMode == "" {
		p.ColorMode = ColorAny
	}
	switch p.ColorMode {
	case ColorAny, ColorExactly, ColorAtLeast:
	default:
		return fmt.Errorf("%w: unknown color mode %q", ErrInvalid, p.ColorMode)
	}

	for _, f := range []struct {
		name   string
		filter *NumericFilter
	}{
		{"mana_value", p.ManaValue},
		{"power", p.Power},
		{"toughness", p.Toughness},
	} {
		if f.filter != nil {
			if err := f.filter.validate(f.name); err != nil {
				return err
			}
		}
	}

	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return nil
}

// Result is one sellable version in a search page.
type Result struct {
	Card      catalog.Card               `json:"card"`
	Printing  catalog.Printing           `json:"printing"`
	Treatment catalog.Treatment          `json:"treatment"`
	Aggregate inventory.VersionAggregate `json:"aggregate"`

	// name-match quality, kept for relevance ordering
	nameRank int
	namePos  int
}

// Page is one page of ranked results.
type Page struct {
	Results    []Result `json:"results"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
}

// Version is one printing in an all-versions answer, with per-finish
// availability.
type Version struct {
	Printing       catalog.Printing                     `json:"printing"`
	Treatment      catalog.Treatment                    `json:"treatment"`
	Finishes       map[string]inventory.FinishAggregate `json:"finishes"`
	TotalAvailable int                                  `json:"total_available"`
}
