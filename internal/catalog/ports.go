package catalog

import (
	"context"
)

// Repository is the contract for catalog reference-data storage. All writes
// are idempotent upserts keyed on the entity's identity.
type Repository interface {
	UpsertCard(ctx context.Context, card *Card) error
	UpsertPrinting(ctx context.Context, printing *Printing) error

	FindByName(ctx context.Context, substring string, limit int) ([]Card, error)
	FindExact(ctx context.Context, name string) (Card, error)
	GetPrinting(ctx context.Context, id string) (Printing, error)
	ListPrintings(ctx context.Context, oracleID string) ([]Printing, error)
	ListPrintingsForCards(ctx context.Context, oracleIDs []string) ([]Printing, error)

	// ResolveByName finds the best card+printing match for a free-text name,
	// optionally scoped to a set code or set name. Used by bulk import.
	ResolveByName(ctx context.Context, name, set string) (Card, Printing, error)
}
