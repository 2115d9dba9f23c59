package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardvault/internal/pricing"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) ActiveStats(ctx context.Context, printingIDs []string) (map[string]ListingStats, error) {
	if len(printingIDs) == 0 {
		return map[string]ListingStats{}, nil
	}

	const sql = `
		SELECT printing_id, COUNT(*), COALESCE(SUM(quantity), 0),
		       MIN(price), MAX(price), array_agg(DISTINCT condition)
		FROM listings
		WHERE status = 'active' AND printing_id = ANY($1)
		GROUP BY printing_id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, printingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]ListingStats)
	for rows.Next() {
		var id string
		var stats ListingStats
		var conditions []string
		if err := rows.Scan(&id, &stats.ActiveCount, &stats.TotalQuantity,
			&stats.MinPrice, &stats.MaxPrice, &conditions); err != nil {
			return nil, err
		}
		for _, c := range conditions {
			stats.Conditions = append(stats.Conditions, Condition(c))
		}
		out[id] = stats
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ActiveStatsByFinish(ctx context.Context, printingIDs []string) (map[string]map[string]ListingStats, error) {
	if len(printingIDs) == 0 {
		return map[string]map[string]ListingStats{}, nil
	}

	const sql = `
		SELECT printing_id, finish, COUNT(*), COALESCE(SUM(quantity), 0),
		       MIN(price), MAX(price), array_agg(DISTINCT condition)
		FROM listings
		WHERE status = 'active' AND printing_id = ANY($1)
		GROUP BY printing_id, finish`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, printingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]ListingStats)
	for rows.Next() {
		var id, finish string
		var stats ListingStats
		var conditions []string
		if err := rows.Scan(&id, &finish, &stats.ActiveCount, &stats.TotalQuantity,
			&stats.MinPrice, &stats.MaxPrice, &conditions); err != nil {
			return nil, err
		}
		for _, c := range conditions {
			stats.Conditions = append(stats.Conditions, Condition(c))
		}
		if out[id] == nil {
			out[id] = make(map[string]ListingStats)
		}
		out[id][finish] = stats
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ActivePriceRange(ctx context.Context, printingID, finish string) (*pricing.CompetitorRange, error) {
	const sql = `
		SELECT MIN(price), MAX(price)
		FROM listings
		WHERE status = 'active' AND printing_id = $1 AND ($2 = '' OR finish = $2)
		HAVING COUNT(*) > 0`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var cr pricing.CompetitorRange
	err := r.db.QueryRow(timeoutCtx, sql, printingID, finish).Scan(&cr.Min, &cr.Max)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No competing listings is a normal outcome.
			return nil, nil
		}
		return nil, err
	}
	return &cr, nil
}
