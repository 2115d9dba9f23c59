package catalog

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Service provides catalog reference-data operations.
type Service struct {
	repo Repository
	log  *logrus.Logger
}

func NewService(repo Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// PrintingView is a printing together with its derived treatment.
type PrintingView struct {
	Printing  Printing  `json:"printing"`
	Treatment Treatment `json:"treatment"`
}

// View attaches the derived treatment to a printing.
func View(p Printing) PrintingView {
	return PrintingView{Printing: p, Treatment: ClassifyTreatment(&p)}
}

// UpsertCard stores or overwrites a card identity. Applying the same payload
// twice leaves exactly one row.
func (s *Service) UpsertCard(ctx context.Context, card *Card) error {
	return s.repo.UpsertCard(ctx, card)
}

// UpsertPrinting stores or overwrites a printing.
func (s *Service) UpsertPrinting(ctx context.Context, printing *Printing) error {
	return s.repo.UpsertPrinting(ctx, printing)
}

// SyncCard upserts a card and all its printings in one call. The card is
// written first so printings never reference a missing identity. A printing
// failure is reported but does not undo previously applied printings: every
// write is idempotent, so the sync job simply retries the whole payload.
func (s *Service) SyncCard(ctx context.Context, card *Card, printings []Printing) error {
	if err := s.repo.UpsertCard(ctx, card); err != nil {
		return err
	}
	for i := range printings {
		printings[i].OracleID = card.OracleID
		if err := s.repo.UpsertPrinting(ctx, &printings[i]); err != nil {
			return err
		}
	}
	s.log.WithFields(logrus.Fields{
		"oracle_id": card.OracleID,
		"name":      card.Name,
		"printings": len(printings),
	}).Debug("card synced")
	return nil
}

// FindByName returns cards whose name contains the substring, ordered by name.
func (s *Service) FindByName(ctx context.Context, substring string, limit int) ([]Card, error) {
	return s.repo.FindByName(ctx, substring, limit)
}

// GetPrinting returns one printing with its treatment.
func (s *Service) GetPrinting(ctx context.Context, id string) (PrintingView, error) {
	p, err := s.repo.GetPrinting(ctx, id)
	if err != nil {
		return PrintingView{}, err
	}
	return View(p), nil
}

// ListPrintings returns all printings of a card, newest release first.
func (s *Service) ListPrintings(ctx context.Context, oracleID string) ([]PrintingView, error) {
	printings, err := s.repo.ListPrintings(ctx, oracleID)
	if err != nil {
		return nil, err
	}
	views := make([]PrintingView, len(printings))
	for i, p := range printings {
		views[i] = View(p)
	}
	return views, nil
}
