package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cardvault/internal/catalog"
	"cardvault/internal/inventory"
	"cardvault/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCardFinder struct {
	mock.Mock
}

func (m *mockCardFinder) FindByName(ctx context.Context, substring string, limit int) ([]catalog.Card, error) {
	args := m.Called(ctx, substring, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Card), args.Error(1)
}

func (m *mockCardFinder) FindExact(ctx context.Context, name string) (catalog.Card, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(catalog.Card), args.Error(1)
}

func (m *mockCardFinder) ListPrintingsForCards(ctx context.Context, oracleIDs []string) ([]catalog.Printing, error) {
	args := m.Called(ctx, oracleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Printing), args.Error(1)
}

type mockAggregator struct {
	mock.Mock
}

func (m *mockAggregator) AggregateMany(ctx context.Context, printingIDs []string) (map[string]inventory.VersionAggregate, error) {
	args := m.Called(ctx, printingIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]inventory.VersionAggregate), args.Error(1)
}

func (m *mockAggregator) FinishAggregates(ctx context.Context, printingIDs []string) (map[string]map[string]inventory.FinishAggregate, error) {
	args := m.Called(ctx, printingIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]map[string]inventory.FinishAggregate), args.Error(1)
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

var (
	boltCard = catalog.Card{
		OracleID:  "bolt",
		Name:      "Lightning Bolt",
		ManaValue: 1,
		Colors:    []string{"R"},
	}
	helixCard = catalog.Card{
		OracleID:  "helix",
		Name:      "Lightning Helix",
		ManaValue: 2,
		Colors:    []string{"R", "W"},
	}
)

func printing(id, oracleID, set string, released time.Time, rarity string) catalog.Printing {
	return catalog.Printing{
		ID:         id,
		OracleID:   oracleID,
		SetCode:    set,
		Rarity:     rarity,
		ReleasedAt: released,
		Finishes:   []string{catalog.FinishNonfoil},
	}
}

func inStock(id string, qty int, minPrice float64) inventory.VersionAggregate {
	return inventory.VersionAggregate{
		PrintingID:     id,
		ActiveListings: 1,
		TotalQuantity:  qty,
		MinPrice:       floatPtr(minPrice),
		Conditions:     []inventory.Condition{inventory.ConditionNM},
		InStock:        true,
	}
}

func outOfStock(id string) inventory.VersionAggregate {
	return inventory.VersionAggregate{PrintingID: id}
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	older := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	setup := func(cards []catalog.Card, printings []catalog.Printing, aggs map[string]inventory.VersionAggregate) *Service {
		finder := new(mockCardFinder)
		agg := new(mockAggregator)
		finder.On("FindByName", ctx, mock.Anything, maxCandidateCards).Return(cards, nil)
		finder.On("ListPrintingsForCards", ctx, mock.Anything).Return(printings, nil)
		agg.On("AggregateMany", ctx, mock.Anything).Return(aggs, nil)
		return NewService(finder, agg)
	}

	t.Run("query too short", func(t *testing.T) {
		s := NewService(new(mockCardFinder), new(mockAggregator))
		_, err := s.Search(ctx, Params{Query: "a"})
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("no matches is an empty page", func(t *testing.T) {
		finder := new(mockCardFinder)
		finder.On("FindByName", ctx, "zzzz", maxCandidateCards).Return([]catalog.Card{}, nil)
		s := NewService(finder, new(mockAggregator))

		page, err := s.Search(ctx, Params{Query: "zzzz"})
		assert.NoError(t, err)
		assert.Empty(t, page.Results)
		assert.Equal(t, 0, page.Total)
	})

	t.Run("in-stock versions rank above out-of-stock", func(t *testing.T) {
		printings := []catalog.Printing{
			printing("p-old", "bolt", "lea", older, "common"),
			printing("p-new", "bolt", "2x2", newer, "uncommon"),
		}
		// The newer printing is out of stock; the older one has copies.
		aggs := map[string]inventory.VersionAggregate{
			"p-old": inStock("p-old", 4, 2.00),
			"p-new": outOfStock("p-new"),
		}
		s := setup([]catalog.Card{boltCard}, printings, aggs)

		page, err := s.Search(ctx, Params{Query: "lightning"})
		assert.NoError(t, err)
		assert.Len(t, page.Results, 2)
		assert.Equal(t, "p-old", page.Results[0].Printing.ID)
		assert.Equal(t, "p-new", page.Results[1].Printing.ID)
	})

	t.Run("stock priority can be turned off", func(t *testing.T) {
		printings := []catalog.Printing{
			printing("p-old", "bolt", "lea", older, "common"),
			printing("p-new", "bolt", "2x2", newer, "uncommon"),
		}
		aggs := map[string]inventory.VersionAggregate{
			"p-old": inStock("p-old", 4, 2.00),
			"p-new": outOfStock("p-new"),
		}
		s := setup([]catalog.Card{boltCard}, printings, aggs)

		page, err := s.Search(ctx, Params{Query: "lightning", Sort: SortRelease, NoStockPriority: true})
		assert.NoError(t, err)
		assert.Equal(t, "p-new", page.Results[0].Printing.ID)
	})

	t.Run("in stock only filter", func(t *testing.T) {
		printings := []catalog.Printing{
			printing("p-old", "bolt", "lea", older, "common"),
			printing("p-new", "bolt", "2x2", newer, "uncommon"),
		}
		aggs := map[string]inventory.VersionAggregate{
			"p-old": inStock("p-old", 4, 2.00),
			"p-new": outOfStock("p-new"),
		}
		s := setup([]catalog.Card{boltCard}, printings, aggs)

		page, err := s.Search(ctx, Params{Query: "lightning", InStockOnly: true})
		assert.NoError(t, err)
		assert.Len(t, page.Results, 1)
		assert.Equal(t, "p-old", page.Results[0].Printing.ID)
	})

	t.Run("price filter falls back to snapshots", func(t *testing.T) {
		printings := []catalog.Printing{printing("p1", "bolt", "lea", older, "common")}
		unlisted := outOfStock("p1")
		unlisted.LatestPrices = map[string]pricing.Snapshot{
			"nonfoil": {PrintingID: "p1", Finish: "nonfoil", Price: 3.50},
		}
		aggs := map[string]inventory.VersionAggregate{"p1": unlisted}
		s := setup([]catalog.Card{boltCard}, printings, aggs)

		page, err := s.Search(ctx, Params{Query: "lightning", PriceMin: floatPtr(1.00)})
		assert.NoError(t, err)
		assert.Len(t, page.Results, 1)

		page, err = s.Search(ctx, Params{Query: "lightning", PriceMax: floatPtr(2.00)})
		assert.NoError(t, err)
		assert.Empty(t, page.Results)
	})

	t.Run("no price at all fails the price filter", func(t *testing.T) {
		printings := []catalog.Printing{printing("p1", "bolt", "lea", older, "common")}
		aggs := map[string]inventory.VersionAggregate{"p1": outOfStock("p1")}
		s := setup([]catalog.Card{boltCard}, printings, aggs)

		page, err := s.Search(ctx, Params{Query: "lightning", PriceMin: floatPtr(1.00)})
		assert.NoError(t, err)
		assert.Empty(t, page.Results)
	})

	t.Run("rarity and set filters", func(t *testing.T) {
		printings := []catalog.Printing{
			printing("p-old", "bolt", "lea", older, "common"),
			printing("p-new", "bolt", "2x2", newer, "uncommon"),
		}
		aggs := map[string]inventory.VersionAggregate{
			"p-old": inStock("p-old", 4, 2.00),
			"p-new": inStock("p-new", 1, 5.00),
		}
		s := setup([]catalog.Card{boltCard}, printings, aggs)

		page, err := s.Search(ctx, Params{Query: "lightning", Rarities: []string{"uncommon"}})
		assert.NoError(t, err)
		assert.Len(t, page.Results, 1)
		assert.Equal(t, "p-new", page.Results[0].Printing.ID)

		page, err = s.Search(ctx, Params{Query: "lightning", SetCode: "LEA"})
		assert.NoError(t, err)
		assert.Len(t, page.Results, 1)
		assert.Equal(t, "p-old", page.Results[0].Printing.ID)
	})

	t.Run("color modes", func(t *testing.T) {
		printings := []catalog.Printing{
			printing("p-bolt", "bolt", "lea", older, "common"),
			printing("p-helix", "helix", "rav", newer, "uncommon"),
		}
		aggs := map[string]inventory.VersionAggregate{
			"p-bolt":  inStock("p-bolt", 2, 2.00),
			"p-helix": inStock("p-helix", 2, 1.00),
		}
		s := setup([]catalog.Card{boltCard, helixCard}, printings, aggs)

		// any: both cards share red
		page, err := s.Search(ctx, Params{Query: "lightning", Colors: []string{"R"}, ColorMode: ColorAny})
		assert.NoError(t, err)
		assert.Len(t, page.Results, 2)

		// exactly red: only the mono-red card
		page, err = s.Search(ctx, Params{Query: "lightning", Colors: []string{"R"}, ColorMode: ColorExactly})
		assert.NoError(t, err)
		assert.Len(t, page.Results, 1)
		assert.Equal(t, "bolt", page.Results[0].Card.OracleID)

		// at least red and white: only the gold card
		page, err = s.Search(ctx, Params{Query: "lightning", Colors: []string{"R", "W"}, ColorMode: ColorAtLeast})
		assert.NoError(t, err)
		assert.Len(t, page.Results, 1)
		assert.Equal(t, "helix", page.Results[0].Card.OracleID)
	})

	t.Run("mana value filter", func(t *testing.T) {
		printings := []catalog.Printing{
			printing("p-bolt", "bolt", "lea", older, "common"),
			printing("p-helix", "helix", "rav", newer, "uncommon"),
		}
		aggs := map[string]inventory.VersionAggregate{
			"p-bolt":  inStock("p-bolt", 2, 2.00),
			"p-helix": inStock("p-helix", 2, 1.00),
		}
		s := setup([]catalog.Card{boltCard, helixCard}, printings, aggs)

		page, err := s.Search(ctx, Params{Query: "lightning", ManaValue: &NumericFilter{Op: "lte", Value: 1}})
		assert.NoError(t, err)
		assert.Len(t, page.Results, 1)
		assert.Equal(t, "bolt", page.Results[0].Card.OracleID)
	})

	t.Run("non-numeric power never matches", func(t *testing.T) {
		star := boltCard
		star.Power = strPtr("*")
		printings := []catalog.Printing{printing("p1", "bolt", "lea", older, "common")}
		aggs := map[string]inventory.VersionAggregate{"p1": inStock("p1", 1, 1.00)}
		s := setup([]catalog.Card{star}, printings, aggs)

		page, err := s.Search(ctx, Params{Query: "lightning", Power: &NumericFilter{Op: "gte", Value: 0}})
		assert.NoError(t, err)
		assert.Empty(t, page.Results)
	})

	t.Run("price sort", func(t *testing.T) {
		printings := []catalog.Printing{
			printing("p-old", "bolt", "lea", older, "common"),
			printing("p-new", "bolt", "2x2", newer, "uncommon"),
		}
		aggs := map[string]inventory.VersionAggregate{
			"p-old": inStock("p-old", 4, 9.00),
			"p-new": inStock("p-new", 1, 3.00),
		}
		s := setup([]catalog.Card{boltCard}, printings, aggs)

		page, err := s.Search(ctx, Params{Query: "lightning", Sort: SortPriceAsc})
		assert.NoError(t, err)
		assert.Equal(t, "p-new", page.Results[0].Printing.ID)

		page, err = s.Search(ctx, Params{Query: "lightning", Sort: SortPriceDesc})
		assert.NoError(t, err)
		assert.Equal(t, "p-old", page.Results[0].Printing.ID)
	})

	t.Run("pagination is deterministic", func(t *testing.T) {
		var printings []catalog.Printing
		aggs := map[string]inventory.VersionAggregate{}
		for i := 0; i < 5; i++ {
			id := fmt.Sprintf("p%d", i)
			printings = append(printings, printing(id, "bolt", "lea", older, "common"))
			aggs[id] = inStock(id, 1, 2.00)
		}
		s := setup([]catalog.Card{boltCard}, printings, aggs)

		page1, err := s.Search(ctx, Params{Query: "lightning", Page: 1, PageSize: 2})
		assert.NoError(t, err)
		assert.Len(t, page1.Results, 2)
		assert.Equal(t, 5, page1.Total)
		assert.Equal(t, 3, page1.TotalPages)

		page2, err := s.Search(ctx, Params{Query: "lightning", Page: 2, PageSize: 2})
		assert.NoError(t, err)
		assert.Len(t, page2.Results, 2)
		assert.NotEqual(t, page1.Results[0].Printing.ID, page2.Results[0].Printing.ID)
		assert.NotEqual(t, page1.Results[1].Printing.ID, page2.Results[1].Printing.ID)

		// Same request twice gives the same page.
		again, err := s.Search(ctx, Params{Query: "lightning", Page: 2, PageSize: 2})
		assert.NoError(t, err)
		assert.Equal(t, page2.Results[0].Printing.ID, again.Results[0].Printing.ID)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		printings := []catalog.Printing{printing("p1", "bolt", "lea", older, "common")}
		aggs := map[string]inventory.VersionAggregate{"p1": inStock("p1", 1, 2.00)}
		s := setup([]catalog.Card{boltCard}, printings, aggs)

		page, err := s.Search(ctx, Params{Query: "lightning", Page: 9})
		assert.NoError(t, err)
		assert.Empty(t, page.Results)
		assert.Equal(t, 1, page.Total)
	})

	t.Run("unknown sort key", func(t *testing.T) {
		s := NewService(new(mockCardFinder), new(mockAggregator))
		_, err := s.Search(ctx, Params{Query: "lightning", Sort: "alphabetical"})
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestService_AllVersions(t *testing.T) {
	ctx := context.Background()
	older := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("unknown name is an empty list", func(t *testing.T) {
		finder := new(mockCardFinder)
		finder.On("FindExact", ctx, "No Such Card").Return(catalog.Card{}, catalog.ErrNotFound)
		s := NewService(finder, new(mockAggregator))

		versions, err := s.AllVersions(ctx, "No Such Card")
		assert.NoError(t, err)
		assert.Empty(t, versions)
	})

	t.Run("blank name is invalid", func(t *testing.T) {
		s := NewService(new(mockCardFinder), new(mockAggregator))
		_, err := s.AllVersions(ctx, "   ")
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("orders by availability then release", func(t *testing.T) {
		finder := new(mockCardFinder)
		agg := new(mockAggregator)
		s := NewService(finder, agg)

		finder.On("FindExact", ctx, "Lightning Bolt").Return(boltCard, nil)
		finder.On("ListPrintingsForCards", ctx, []string{"bolt"}).Return([]catalog.Printing{
			printing("p-scarce", "bolt", "lea", newer, "common"),
			printing("p-stocked", "bolt", "2x2", older, "uncommon"),
			printing("p-empty", "bolt", "m10", older, "common"),
		}, nil)
		agg.On("FinishAggregates", ctx, mock.Anything).Return(map[string]map[string]inventory.FinishAggregate{
			"p-scarce":  {"nonfoil": {Finish: "nonfoil", ActiveListings: 1, TotalQuantity: 2}},
			"p-stocked": {"nonfoil": {Finish: "nonfoil", ActiveListings: 3, TotalQuantity: 9}},
			"p-empty":   {},
		}, nil)

		versions, err := s.AllVersions(ctx, "Lightning Bolt")
		assert.NoError(t, err)
		assert.Len(t, versions, 3)
		assert.Equal(t, "p-stocked", versions[0].Printing.ID)
		assert.Equal(t, 9, versions[0].TotalAvailable)
		assert.Equal(t, "p-scarce", versions[1].Printing.ID)
		assert.Equal(t, "p-empty", versions[2].Printing.ID)
		assert.Equal(t, 0, versions[2].TotalAvailable)
	})
}
