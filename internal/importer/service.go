package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"cardvault/internal/catalog"
	"cardvault/internal/pricing"
)

// CatalogResolver looks up the best catalog match for a free-text name.
type CatalogResolver interface {
	ResolveByName(ctx context.Context, name, set string) (catalog.Card, catalog.Printing, error)
}

// PriceSource supplies the latest recorded market price.
type PriceSource interface {
	Latest(ctx context.Context, printingID, finish string) (pricing.Snapshot, bool, error)
}

// Config tunes the reconciler. Lookups within a batch run one at a time with
// LookupInterval between them to respect upstream rate limits; that is a
// throughput ceiling, not a correctness requirement.
type Config struct {
	LookupInterval time.Duration
	LookupTimeout  time.Duration
}

// Service reconciles uploaded spreadsheets against the catalog.
type Service struct {
	resolver CatalogResolver
	prices   PriceSource
	limiter  *rate.Limiter
	timeout  time.Duration
	log      *logrus.Logger
}

func NewService(resolver CatalogResolver, prices PriceSource, cfg Config, log *logrus.Logger) *Service {
	if cfg.LookupInterval <= 0 {
		cfg.LookupInterval = 200 * time.Millisecond
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 5 * time.Second
	}
	return &Service{
		resolver: resolver,
		prices:   prices,
		limiter:  rate.NewLimiter(rate.Every(cfg.LookupInterval), 1),
		timeout:  cfg.LookupTimeout,
		log:      log,
	}
}

// ImportCSV detects the spreadsheet schema, normalizes every row, and
// resolves rows against the catalog one at a time. A failed lookup marks that
// row needs_review and never aborts the batch; cancelling the context returns
// the rows processed so far.
func (s *Service) ImportCSV(ctx context.Context, file io.Reader, schemaHint string) (BatchResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return BatchResult{}, fmt.Errorf("%w: cannot read header row", ErrInvalid)
	}
	for i := range header {
		header[i] = normalizeHeader(header[i])
	}

	schema := schemaHint
	if !KnownSchema(schema) {
		schema = DetectSchema(header)
	}

	result := BatchResult{
		BatchID: uuid.New().String(),
		Schema:  schema,
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed line loses that line only.
			result.Dropped++
			continue
		}

		raw := make(map[string]string, len(header))
		for i, value := range record {
			if i < len(header) {
				raw[header[i]] = value
			}
		}

		row, ok := NormalizeRow(raw, schema)
		if !ok {
			result.Dropped++
			continue
		}
		rows = append(rows, row)
	}

	processed := 0
	for i := range rows {
		if err := s.limiter.Wait(ctx); err != nil {
			result.Abandoned = true
			break
		}
		if !s.resolveRow(ctx, &rows[i]) {
			result.Abandoned = true
			break
		}
		processed++
	}

	rows = rows[:processed]
	for _, row := range rows {
		switch row.Status {
		case StatusMatched:
			result.Matched++
		case StatusNeedsReview:
			result.NeedsReview++
		}
	}
	result.Rows = rows
	result.Total = len(rows)

	s.log.WithFields(logrus.Fields{
		"batch_id":     result.BatchID,
		"schema":       result.Schema,
		"total":        result.Total,
		"matched":      result.Matched,
		"needs_review": result.NeedsReview,
		"dropped":      result.Dropped,
	}).Info("import batch reconciled")

	return result, nil
}

// resolveRow attaches catalog identity and market price to one row. Any
// failure, including the catalog being unreachable, leaves the row usable for
// manual correction downstream. Returns false when the batch context was
// cancelled mid-lookup, in which case the row was never processed at all.
func (s *Service) resolveRow(ctx context.Context, row *Row) bool {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	set := row.Set
	if set == "Unknown" {
		set = ""
	}

	card, printing, err := s.resolver.ResolveByName(lookupCtx, row.Name, set)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			s.log.WithError(err).WithField("name", row.Name).Warn("catalog lookup failed")
		}
		row.Status = StatusNeedsReview
		return true
	}

	row.Status = StatusMatched
	row.OracleID = card.OracleID
	row.PrintingID = printing.ID
	row.ImageURL = printing.ImageNormal

	if snap, ok, err := s.prices.Latest(lookupCtx, printing.ID, row.Finish); err == nil && ok {
		price := snap.Price
		row.MarketPrice = &price
	}
	return true
}
