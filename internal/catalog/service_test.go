package catalog

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) UpsertCard(ctx context.Context, card *Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *mockRepo) UpsertPrinting(ctx context.Context, printing *Printing) error {
	args := m.Called(ctx, printing)
	return args.Error(0)
}

func (m *mockRepo) FindByName(ctx context.Context, substring string, limit int) ([]Card, error) {
	args := m.Called(ctx, substring, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Card), args.Error(1)
}

func (m *mockRepo) FindExact(ctx context.Context, name string) (Card, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(Card), args.Error(1)
}

func (m *mockRepo) GetPrinting(ctx context.Context, id string) (Printing, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Printing), args.Error(1)
}

func (m *mockRepo) ListPrintings(ctx context.Context, oracleID string) ([]Printing, error) {
	args := m.Called(ctx, oracleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Printing), args.Error(1)
}

func (m *mockRepo) ListPrintingsForCards(ctx context.Context, oracleIDs []string) ([]Printing, error) {
	args := m.Called(ctx, oracleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Printing), args.Error(1)
}

func (m *mockRepo) ResolveByName(ctx context.Context, name, set string) (Card, Printing, error) {
	args := m.Called(ctx, name, set)
	return args.Get(0).(Card), args.Get(1).(Printing), args.Error(2)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestService_SyncCard(t *testing.T) {
	ctx := context.Background()

	card := &Card{OracleID: "oracle-1", Name: "Lightning Bolt"}
	printing := Printing{
		ID:       "print-1",
		SetCode:  "lea",
		Finishes: []string{FinishNonfoil},
	}

	t.Run("writes card before printings", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, testLogger())

		repo.On("UpsertCard", ctx, card).Return(nil)
		repo.On("UpsertPrinting", ctx, mock.MatchedBy(func(p *Printing) bool {
			return p.ID == "print-1" && p.OracleID == "oracle-1"
		})).Return(nil)

		err := s.SyncCard(ctx, card, []Printing{printing})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("card failure stops sync", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, testLogger())

		repo.On("UpsertCard", ctx, card).Return(fmt.Errorf("db down"))

		err := s.SyncCard(ctx, card, []Printing{printing})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "UpsertPrinting", mock.Anything, mock.Anything)
	})

	t.Run("printing failure is returned", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, testLogger())

		repo.On("UpsertCard", ctx, card).Return(nil)
		repo.On("UpsertPrinting", ctx, mock.Anything).Return(fmt.Errorf("db down"))

		err := s.SyncCard(ctx, card, []Printing{printing})
		assert.Error(t, err)
	})
}

func TestService_GetPrinting(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches treatment", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, testLogger())

		p := Printing{ID: "print-1", SetCode: "one", FrameEffects: []string{"showcase"}}
		repo.On("GetPrinting", ctx, "print-1").Return(p, nil)

		view, err := s.GetPrinting(ctx, "print-1")
		assert.NoError(t, err)
		assert.True(t, view.Treatment.Showcase)
		assert.NotNil(t, view.Treatment.SpecialFoil)
		assert.Equal(t, "Oil Slick Foil", *view.Treatment.SpecialFoil)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, testLogger())

		repo.On("GetPrinting", ctx, "missing").Return(Printing{}, ErrNotFound)

		_, err := s.GetPrinting(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_ListPrintings(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	s := NewService(repo, testLogger())

	printings := []Printing{
		{ID: "p2", ReleasedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "p1", ReleasedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Frame: "1997"},
	}
	repo.On("ListPrintings", ctx, "oracle-1").Return(printings, nil)

	views, err := s.ListPrintings(ctx, "oracle-1")
	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, "p2", views[0].Printing.ID)
	assert.True(t, views[1].Treatment.RetroFrame)
}

func TestCardValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c := Card{OracleID: "o1", Name: "Opt"}
		assert.NoError(t, c.Validate())
	})

	t.Run("missing oracle id", func(t *testing.T) {
		c := Card{Name: "Opt"}
		assert.ErrorIs(t, c.Validate(), ErrInvalid)
	})

	t.Run("missing name", func(t *testing.T) {
		c := Card{OracleID: "o1"}
		assert.ErrorIs(t, c.Validate(), ErrInvalid)
	})
}

func TestPrintingValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := Printing{ID: "p1", OracleID: "o1", Finishes: []string{FinishFoil}}
		assert.NoError(t, p.Validate())
	})

	t.Run("no finishes", func(t *testing.T) {
		p := Printing{ID: "p1", OracleID: "o1"}
		assert.ErrorIs(t, p.Validate(), ErrInvalid)
	})

	t.Run("unknown finish", func(t *testing.T) {
		p := Printing{ID: "p1", OracleID: "o1", Finishes: []string{"glossy"}}
		assert.ErrorIs(t, p.Validate(), ErrInvalid)
	})
}
