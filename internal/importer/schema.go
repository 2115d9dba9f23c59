package importer

import (
	"strings"
)

// Schema names for the supported external export formats.
const (
	SchemaTCGPlayer = "tcgplayer"
	SchemaMoxfield  = "moxfield"
	SchemaDeckbox   = "deckbox"
	SchemaGeneric   = "generic"
)

// DetectThreshold is the minimum fraction of a signature's columns that must
// appear in the uploaded header for the schema to win.
const DetectThreshold = 0.7

// signatures are the expected column sets of each supported export format.
type signature struct {
	name    string
	columns []string
}

var signatures = []signature{
	{
		name: SchemaTCGPlayer,
		columns: []string{
			"quantity", "name", "simple name", "set", "card number",
			"set code", "printing", "condition", "language", "rarity",
			"product id", "sku",
		},
	},
	{
		name: SchemaMoxfield,
		columns: []string{
			"count", "tradelist count", "name", "edition", "condition",
			"language", "foil", "tags", "last modified", "collector number",
			"alter", "proxy", "purchase price",
		},
	},
	{
		name: SchemaDeckbox,
		columns: []string{
			"count", "tradelist count", "name", "edition", "card number",
			"condition", "language", "foil", "signed", "artist proof",
			"altered art", "misprint", "promo", "textless", "my price",
		},
	},
}

// DetectSchema scores the uploaded header against each known signature and
// returns the best match at or above the threshold, else the generic schema.
func DetectSchema(header []string) string {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[normalizeHeader(col)] = true
	}

	bestName := SchemaGeneric
	bestScore := 0.0
	for _, sig := range signatures {
		hits := 0
		for _, col := range sig.columns {
			if present[col] {
				hits++
			}
		}
		score := float64(hits) / float64(len(sig.columns))
		if score > bestScore {
			bestScore = score
			bestName = sig.name
		}
	}

	if bestScore >= DetectThreshold {
		return bestName
	}
	return SchemaGeneric
}

// KnownSchema reports whether name is a supported schema hint.
func KnownSchema(name string) bool {
	switch name {
	case SchemaTCGPlayer, SchemaMoxfield, SchemaDeckbox, SchemaGeneric:
		return true
	}
	return false
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
