package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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

func (r *PostgresRepo) Record(ctx context.Context, s Snapshot) error {
	if s.PrintingID == "" || s.Finish == "" {
		return fmt.Errorf("%w: printing id and finish are required", ErrInvalid)
	}
	if s.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalid)
	}
	if s.ObservedAt.IsZero() {
		s.ObservedAt = time.Now().UTC()
	}

	const sql = `
		INSERT INTO price_snapshots (printing_id, finish, price, observed_at)
		VALUES ($1, $2, $3, $4)`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql, s.PrintingID, s.Finish, s.Price, s.ObservedAt)
	if err != nil {
		return fmt.Errorf("record price for %s/%s: %w", s.PrintingID, s.Finish, err)
	}
	return nil
}

func (r *PostgresRepo) Latest(ctx context.Context, printingID, finish string) (Snapshot, bool, error) {
	const sql = `
		SELECT printing_id, finish, price, observed_at
		FROM (
			SELECT printing_id, finish, price, observed_at,
			       ROW_NUMBER() OVER (PARTITION BY printing_id, finish ORDER BY observed_at DESC) AS rn
			FROM price_snapshots
			WHERE printing_id = $1 AND finish = $2
		) ranked
		WHERE rn = 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var s Snapshot
	err := r.db.QueryRow(timeoutCtx, sql, printingID, finish).
		Scan(&s.PrintingID, &s.Finish, &s.Price, &s.ObservedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	return s, true, nil
}

func (r *PostgresRepo) LatestFor(ctx context.Context, printingIDs []string) (map[string]map[string]Snapshot, error) {
	if len(printingIDs) == 0 {
		return map[string]map[string]Snapshot{}, nil
	}

	const sql = `
		SELECT printing_id, finish, price, observed_at
		FROM (
			SELECT printing_id, finish, price, observed_at,
			       ROW_NUMBER() OVER (PARTITION BY printing_id, finish ORDER BY observed_at DESC) AS rn
			FROM price_snapshots
			WHERE printing_id = ANY($1)
		) ranked
		WHERE rn = 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, printingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]Snapshot)
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.PrintingID, &s.Finish, &s.Price, &s.ObservedAt); err != nil {
			return nil, err
		}
		if out[s.PrintingID] == nil {
			out[s.PrintingID] = make(map[string]Snapshot)
		}
		out[s.PrintingID][s.Finish] = s
	}
	return out, rows.Err()
}
