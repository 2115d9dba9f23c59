package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cardvault/internal/catalog"
	"cardvault/internal/inventory"
)

// CardFinder is the slice of the catalog the search engine reads.
type CardFinder interface {
	FindByName(ctx context.Context, substring string, limit int) ([]catalog.Card, error)
	FindExact(ctx context.Context, name string) (catalog.Card, error)
	ListPrintingsForCards(ctx context.Context, oracleIDs []string) ([]catalog.Printing, error)
}

// Aggregator supplies live availability per printing.
type Aggregator interface {
	AggregateMany(ctx context.Context, printingIDs []string) (map[string]inventory.VersionAggregate, error)
	FinishAggregates(ctx context.Context, printingIDs []string) (map[string]map[string]inventory.FinishAggregate, error)
}

// Service answers name queries with stock-aware, ranked version lists.
type Service struct {
	cards CardFinder
	agg   Aggregator
}

func NewService(cards CardFinder, agg Aggregator) *Service {
	return &Service{cards: cards, agg: agg}
}

// Search resolves a name substring into a filtered, ranked, paginated page of
// sellable versions. Zero matches is an empty page, not an error.
func (s *Service) Search(ctx context.Context, p Params) (Page, error) {
	if err := p.normalize(); err != nil {
		return Page{}, err
	}

	cards, err := s.cards.FindByName(ctx, p.Query, maxCandidateCards)
	if err != nil {
		return Page{}, fmt.Errorf("find cards: %w", err)
	}
	if len(cards) == 0 {
		return emptyPage(p), nil
	}

	cardsByOracle := make(map[string]catalog.Card, len(cards))
	oracleIDs := make([]string, 0, len(cards))
	for _, c := range cards {
		cardsByOracle[c.OracleID] = c
		oracleIDs = append(oracleIDs, c.OracleID)
	}

	printings, err := s.cards.ListPrintingsForCards(ctx, oracleIDs)
	if err != nil {
		return Page{}, fmt.Errorf("list printings: %w", err)
	}
	if len(printings) == 0 {
		return emptyPage(p), nil
	}

	printingIDs := make([]string, len(printings))
	for i, pr := range printings {
		printingIDs[i] = pr.ID
	}
	aggs, err := s.agg.AggregateMany(ctx, printingIDs)
	if err != nil {
		return Page{}, fmt.Errorf("aggregate inventory: %w", err)
	}

	results := make([]Result, 0, len(printings))
	for _, pr := range printings {
		card := cardsByOracle[pr.OracleID]
		rank, pos := nameMatchQuality(card.Name, p.Query)
		res := Result{
			Card:      card,
			Printing:  pr,
			Treatment: catalog.ClassifyTreatment(&pr),
			Aggregate: aggs[pr.ID],
			nameRank:  rank,
			namePos:   pos,
		}
		if matchesFilters(&res, &p) {
			results = append(results, res)
		}
	}

	sortResults(results, &p)

	total := len(results)
	offset := (p.Page - 1) * p.PageSize
	if offset > total {
		offset = total
	}
	end := offset + p.PageSize
	if end > total {
		end = total
	}

	return Page{
		Results:    results[offset:end],
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: (total + p.PageSize - 1) / p.PageSize,
	}, nil
}

// AllVersions lists every printing of the exact card name with per-finish
// availability, most available first. The caller wants completeness, so
// out-of-stock versions are always included and stock priority never applies.
func (s *Service) AllVersions(ctx context.Context, name string) ([]Version, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: card name is required", ErrInvalid)
	}

	card, err := s.cards.FindExact(ctx, name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return []Version{}, nil
		}
		return nil, err
	}

	printings, err := s.cards.ListPrintingsForCards(ctx, []string{card.OracleID})
	if err != nil {
		return nil, err
	}

	printingIDs := make([]string, len(printings))
	for i, pr := range printings {
		printingIDs[i] = pr.ID
	}
	finishAggs, err := s.agg.FinishAggregates(ctx, printingIDs)
	if err != nil {
		return nil, err
	}

	versions := make([]Version, 0, len(printings))
	for _, pr := range printings {
		finishes := finishAggs[pr.ID]
		total := 0
		for _, fa := range finishes {
			total += fa.TotalQuantity
		}
		versions = append(versions, Version{
			Printing:       pr,
			Treatment:      catalog.ClassifyTreatment(&pr),
			Finishes:       finishes,
			TotalAvailable: total,
		})
	}

	sort.SliceStable(versions, func(i, j int) bool {
		if versions[i].TotalAvailable != versions[j].TotalAvailable {
			return versions[i].TotalAvailable > versions[j].TotalAvailable
		}
		if !versions[i].Printing.ReleasedAt.Equal(versions[j].Printing.ReleasedAt) {
			return versions[i].Printing.ReleasedAt.After(versions[j].Printing.ReleasedAt)
		}
		return versions[i].Printing.ID < versions[j].Printing.ID
	})

	return versions, nil
}

func emptyPage(p Params) Page {
	return Page{Results: []Result{}, Page: p.Page, PageSize: p.PageSize}
}

// nameMatchQuality ranks how well a card name matches the query: exact,
// prefix, then substring, with the match position as tiebreak.
func nameMatchQuality(name, query string) (rank, pos int) {
	ln := strings.ToLower(name)
	lq := strings.ToLower(query)
	switch {
	case ln == lq:
		return 0, 0
	case strings.HasPrefix(ln, lq):
		return 1, 0
	default:
		return 2, strings.Index(ln, lq)
	}
}

func matchesFilters(res *Result, p *Params) bool {
	agg := &res.Aggregate

	if p.InStockOnly && !agg.InStock {
		return false
	}

	if p.PriceMin != nil || p.PriceMax != nil {
		price, ok := effectivePrice(agg)
		if !ok {
			return false
		}
		if p.PriceMin != nil && price < *p.PriceMin {
			return false
		}
		if p.PriceMax != nil && price > *p.PriceMax {
			return false
		}
	}

	if len(p.Conditions) > 0 && !conditionOverlap(agg.Conditions, p.Conditions) {
		return false
	}

	if len(p.Rarities) > 0 && !containsFold(p.Rarities, res.Printing.Rarity) {
		return false
	}

	if len(p.Colors) > 0 && !colorMatch(res.Card.Colors, p.Colors, p.ColorMode) {
		return false
	}

	if p.ManaValue != nil && !p.ManaValue.matches(res.Card.ManaValue) {
		return false
	}
	if p.Power != nil && !numericStatMatches(res.Card.Power, *p.Power) {
		return false
	}
	if p.Toughness != nil && !numericStatMatches(res.Card.Toughness, *p.Toughness) {
		return false
	}

	if p.SetCode != "" && !strings.EqualFold(res.Printing.SetCode, p.SetCode) {
		return false
	}
	if p.Artist != "" && !containsSubstringFold(res.Printing.Artist, p.Artist) {
		return false
	}
	if p.OracleText != "" && !containsSubstringFold(res.Card.OracleText, p.OracleText) {
		return false
	}

	return true
}

// effectivePrice is the min active listing price, falling back to the lowest
// latest snapshot across finishes. ok=false when neither exists.
func effectivePrice(agg *inventory.VersionAggregate) (float64, bool) {
	if agg.MinPrice != nil {
		return *agg.MinPrice, true
	}
	found := false
	min := 0.0
	for _, snap := range agg.LatestPrices {
		if !found || snap.Price < min {
			min = snap.Price
			found = true
		}
	}
	return min, found
}

func conditionOverlap(have, want []inventory.Condition) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func containsSubstringFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func colorMatch(cardColors, filter []string, mode ColorMode) bool {
	have := make(map[string]bool, len(cardColors))
	for _, c := range cardColors {
		have[strings.ToUpper(c)] = true
	}
	want := make(map[string]bool, len(filter))
	for _, c := range filter {
		want[strings.ToUpper(c)] = true
	}

	switch mode {
	case ColorExactly:
		if len(have) != len(want) {
			return false
		}
		for c := range want {
			if !have[c] {
				return false
			}
		}
		return true
	case ColorAtLeast:
		for c := range want {
			if !have[c] {
				return false
			}
		}
		return true
	default: // any
		for c := range want {
			if have[c] {
				return true
			}
		}
		return false
	}
}

// numericStatMatches parses power/toughness; non-numeric stats ("*", "X")
// never match a numeric constraint.
func numericStatMatches(stat *string, f NumericFilter) bool {
	if stat == nil {
		return false
	}
	v, err := strconv.ParseFloat(*stat, 64)
	if err != nil {
		return false
	}
	return f.matches(v)
}

// sortResults applies the composite ordering: in-stock first (unless the
// caller opted out), then the requested key, then release date descending,
// then name, then printing id so pagination is deterministic across calls.
func sortResults(results []Result, p *Params) {
	stockPriority := !p.NoStockPriority

	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]

		if stockPriority && a.Aggregate.InStock != b.Aggregate.InStock {
			return a.Aggregate.InStock
		}

		if c := secondaryCompare(a, b, p.Sort); c != 0 {
			return c < 0
		}

		if !a.Printing.ReleasedAt.Equal(b.Printing.ReleasedAt) {
			return a.Printing.ReleasedAt.After(b.Printing.ReleasedAt)
		}
		if a.Card.Name != b.Card.Name {
			return a.Card.Name < b.Card.Name
		}
		return a.Printing.ID < b.Printing.ID
	})
}

func secondaryCompare(a, b *Result, key SortKey) int {
	switch key {
	case SortRelevance:
		if a.nameRank != b.nameRank {
			return a.nameRank - b.nameRank
		}
		return a.namePos - b.namePos
	case SortPriceAsc, SortPriceDesc:
		pa, oka := effectivePrice(&a.Aggregate)
		pb, okb := effectivePrice(&b.Aggregate)
		if oka != okb {
			// Priced results come before unpriced ones either way.
			if oka {
				return -1
			}
			return 1
		}
		if !oka {
			return 0
		}
		switch {
		case pa < pb:
			if key == SortPriceAsc {
				return -1
			}
			return 1
		case pa > pb:
			if key == SortPriceAsc {
				return 1
			}
			return -1
		}
		return 0
	case SortName:
		return strings.Compare(a.Card.Name, b.Card.Name)
	case SortRelease:
		switch {
		case a.Printing.ReleasedAt.After(b.Printing.ReleasedAt):
			return -1
		case a.Printing.ReleasedAt.Before(b.Printing.ReleasedAt):
			return 1
		}
		return 0
	case SortPopularity:
		return b.Aggregate.ActiveListings - a.Aggregate.ActiveListings
	}
	return 0
}
