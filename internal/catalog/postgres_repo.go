package catalog

import (
	"context"
	"encoding/json"
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

func (r *PostgresRepo) UpsertCard(ctx context.Context, c *Card) error {
	if err := c.Validate(); err != nil {
		return err
	}

	legalities, err := json.Marshal(c.Legalities)
	if err != nil {
		return fmt.Errorf("encode legalities: %w", err)
	}

	const sql = `
		INSERT INTO cards (oracle_id, name, mana_cost, mana_value, type_line, oracle_text,
		                   power, toughness, colors, color_identity, keywords, legalities, reserved,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		ON CONFLICT (oracle_id) DO UPDATE SET
			name = EXCLUDED.name,
			mana_cost = EXCLUDED.mana_cost,
			mana_value = EXCLUDED.mana_value,
			type_line = EXCLUDED.type_line,
			oracle_text = EXCLUDED.oracle_text,
			power = EXCLUDED.power,
			toughness = EXCLUDED.toughness,
			colors = EXCLUDED.colors,
			color_identity = EXCLUDED.color_identity,
			keywords = EXCLUDED.keywords,
			legalities = EXCLUDED.legalities,
			reserved = EXCLUDED.reserved,
			updated_at = now()`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err = r.db.Exec(timeoutCtx, sql,
		c.OracleID, c.Name, c.ManaCost, c.ManaValue, c.TypeLine, c.OracleText,
		c.Power, c.Toughness, c.Colors, c.ColorIdentity, c.Keywords, legalities, c.Reserved,
	)
	if err != nil {
		return fmt.Errorf("upsert card %s: %w", c.OracleID, err)
	}
	return nil
}

func (r *PostgresRepo) UpsertPrinting(ctx context.Context, p *Printing) error {
	if err := p.Validate(); err != nil {
		return err
	}

	const sql = `
		INSERT INTO printings (id, oracle_id, set_code, set_name, collector_number, rarity,
		                       released_at, image_small, image_normal, image_large, image_back,
		                       frame, frame_effects, border_color, promo_types, finishes,
		                       oversized, full_art, textless, promo, artist, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			oracle_id = EXCLUDED.oracle_id,
			set_code = EXCLUDED.set_code,
			set_name = EXCLUDED.set_name,
			collector_number = EXCLUDED.collector_number,
			rarity = EXCLUDED.rarity,
			released_at = EXCLUDED.released_at,
			image_small = EXCLUDED.image_small,
			image_normal = EXCLUDED.image_normal,
			image_large = EXCLUDED.image_large,
			image_back = EXCLUDED.image_back,
			frame = EXCLUDED.frame,
			frame_effects = EXCLUDED.frame_effects,
			border_color = EXCLUDED.border_color,
			promo_types = EXCLUDED.promo_types,
			finishes = EXCLUDED.finishes,
			oversized = EXCLUDED.oversized,
			full_art = EXCLUDED.full_art,
			textless = EXCLUDED.textless,
			promo = EXCLUDED.promo,
			artist = EXCLUDED.artist,
			updated_at = now()`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql,
		p.ID, p.OracleID, p.SetCode, p.SetName, p.CollectorNumber, p.Rarity,
		p.ReleasedAt, p.ImageSmall, p.ImageNormal, p.ImageLarge, p.ImageBack,
		p.Frame, p.FrameEffects, p.BorderColor, p.PromoTypes, p.Finishes,
		p.Oversized, p.FullArt, p.Textless, p.Promo, p.Artist,
	)
	if err != nil {
		return fmt.Errorf("upsert printing %s: %w", p.ID, err)
	}
	return nil
}

func (r *PostgresRepo) FindByName(ctx context.Context, substring string, limit int) ([]Card, error) {
	const sql = `
		SELECT oracle_id, name, mana_cost, mana_value, type_line, oracle_text,
		       power, toughness, colors, color_identity, keywords, legalities, reserved,
		       created_at, updated_at
		FROM cards
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, substring, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCards(rows)
}

func (r *PostgresRepo) FindExact(ctx context.Context, name string) (Card, error) {
	const sql = `
		SELECT oracle_id, name, mana_cost, mana_value, type_line, oracle_text,
		       power, toughness, colors, color_identity, keywords, legalities, reserved,
		       created_at, updated_at
		FROM cards
		WHERE lower(name) = lower($1)
		LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	row := r.db.QueryRow(timeoutCtx, sql, name)

	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Card{}, ErrNotFound
		}
		return Card{}, err
	}
	return c, nil
}

const printingColumns = `id, oracle_id, set_code, set_name, collector_number, rarity,
		       released_at, image_small, image_normal, image_large, image_back,
		       frame, frame_effects, border_color, promo_types, finishes,
		       oversized, full_art, textless, promo, artist, created_at, updated_at`

func (r *PostgresRepo) GetPrinting(ctx context.Context, id string) (Printing, error) {
	sql := `SELECT ` + printingColumns + ` FROM printings WHERE id = $1 LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	row := r.db.QueryRow(timeoutCtx, sql, id)

	p, err := scanPrinting(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Printing{}, ErrNotFound
		}
		return Printing{}, err
	}
	return p, nil
}

func (r *PostgresRepo) ListPrintings(ctx context.Context, oracleID string) ([]Printing, error) {
	sql := `SELECT ` + printingColumns + ` FROM printings WHERE oracle_id = $1 ORDER BY released_at DESC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, oracleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPrintings(rows)
}

func (r *PostgresRepo) ListPrintingsForCards(ctx context.Context, oracleIDs []string) ([]Printing, error) {
	if len(oracleIDs) == 0 {
		return nil, nil
	}
	sql := `SELECT ` + printingColumns + ` FROM printings WHERE oracle_id = ANY($1) ORDER BY released_at DESC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, oracleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPrintings(rows)
}

// ResolveByName tries exact, then prefix, then substring matches, preferring
// printings from the requested set and the most recent release.
func (r *PostgresRepo) ResolveByName(ctx context.Context, name, set string) (Card, Printing, error) {
	patterns := []string{name, name + "%", "%" + name + "%"}

	for i, pattern := range patterns {
		op := "ILIKE"
		if i == 0 {
			op = "="
		}
		sql := fmt.Sprintf(`
			SELECT c.oracle_id, c.name, c.mana_cost, c.mana_value, c.type_line, c.oracle_text,
			       c.power, c.toughness, c.colors, c.color_identity, c.keywords, c.legalities, c.reserved,
			       c.created_at, c.updated_at,
			       p.id, p.oracle_id, p.set_code, p.set_name, p.collector_number, p.rarity,
			       p.released_at, p.image_small, p.image_normal, p.image_large, p.image_back,
			       p.frame, p.frame_effects, p.border_color, p.promo_types, p.finishes,
			       p.oversized, p.full_art, p.textless, p.promo, p.artist, p.created_at, p.updated_at
			FROM cards c
			JOIN printings p ON p.oracle_id = c.oracle_id
			WHERE lower(c.name) %s lower($1)
			  AND ($2 = '' OR lower(p.set_code) = lower($2) OR lower(p.set_name) = lower($2))
			ORDER BY length(c.name), p.released_at DESC
			LIMIT 1`, op)

		timeoutCtx, cancel := r.withTimeout(ctx)
		row := r.db.QueryRow(timeoutCtx, sql, pattern, set)

		var c Card
		var p Printing
		var legalities []byte
		err := row.Scan(
			&c.OracleID, &c.Name, &c.ManaCost, &c.ManaValue, &c.TypeLine, &c.OracleText,
			&c.Power, &c.Toughness, &c.Colors, &c.ColorIdentity, &c.Keywords, &legalities, &c.Reserved,
			&c.CreatedAt, &c.UpdatedAt,
			&p.ID, &p.OracleID, &p.SetCode, &p.SetName, &p.CollectorNumber, &p.Rarity,
			&p.ReleasedAt, &p.ImageSmall, &p.ImageNormal, &p.ImageLarge, &p.ImageBack,
			&p.Frame, &p.FrameEffects, &p.BorderColor, &p.PromoTypes, &p.Finishes,
			&p.Oversized, &p.FullArt, &p.Textless, &p.Promo, &p.Artist, &p.CreatedAt, &p.UpdatedAt,
		)
		cancel()
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return Card{}, Printing{}, err
		}
		if err := decodeLegalities(legalities, &c); err != nil {
			return Card{}, Printing{}, err
		}
		return c, p, nil
	}

	// Retry without the set scope before giving up: user-entered set names
	// are often wrong while the card name is fine.
	if set != "" {
		return r.ResolveByName(ctx, name, "")
	}
	return Card{}, Printing{}, ErrNotFound
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (Card, error) {
	var c Card
	var legalities []byte
	err := row.Scan(
		&c.OracleID, &c.Name, &c.ManaCost, &c.ManaValue, &c.TypeLine, &c.OracleText,
		&c.Power, &c.Toughness, &c.Colors, &c.ColorIdentity, &c.Keywords, &legalities, &c.Reserved,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return Card{}, err
	}
	if err := decodeLegalities(legalities, &c); err != nil {
		return Card{}, err
	}
	return c, nil
}

func scanCards(rows pgx.Rows) ([]Card, error) {
	var out []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanPrinting(row rowScanner) (Printing, error) {
	var p Printing
	err := row.Scan(
		&p.ID, &p.OracleID, &p.SetCode, &p.SetName, &p.CollectorNumber, &p.Rarity,
		&p.ReleasedAt, &p.ImageSmall, &p.ImageNormal, &p.ImageLarge, &p.ImageBack,
		&p.Frame, &p.FrameEffects, &p.BorderColor, &p.PromoTypes, &p.Finishes,
		&p.Oversized, &p.FullArt, &p.Textless, &p.Promo, &p.Artist, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Printing{}, err
	}
	return p, nil
}

func scanPrintings(rows pgx.Rows) ([]Printing, error) {
	var out []Printing
	for rows.Next() {
		p, err := scanPrinting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func decodeLegalities(raw []byte, c *Card) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &c.Legalities); err != nil {
		return fmt.Errorf("decode legalities for %s: %w", c.OracleID, err)
	}
	return nil
}
