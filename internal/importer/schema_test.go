package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSchema(t *testing.T) {
	t.Run("tcgplayer export", func(t *testing.T) {
		header := []string{
			"Quantity", "Name", "Simple Name", "Set", "Card Number",
			"Set Code", "Printing", "Condition", "Language", "Rarity",
			"Product ID", "SKU",
		}
		assert.Equal(t, SchemaTCGPlayer, DetectSchema(header))
	})

	t.Run("moxfield export", func(t *testing.T) {
		header := []string{
			"Count", "Tradelist Count", "Name", "Edition", "Condition",
			"Language", "Foil", "Tags", "Last Modified", "Collector Number",
			"Alter", "Proxy", "Purchase Price",
		}
		assert.Equal(t, SchemaMoxfield, DetectSchema(header))
	})

	t.Run("deckbox export", func(t *testing.T) {
		header := []string{
			"Count", "Tradelist Count", "Name", "Edition", "Card Number",
			"Condition", "Language", "Foil", "Signed", "Artist Proof",
			"Altered Art", "Misprint", "Promo", "Textless", "My Price",
		}
		assert.Equal(t, SchemaDeckbox, DetectSchema(header))
	})

	t.Run("partial match above threshold still wins", func(t *testing.T) {
		// 10 of 12 tcgplayer columns.
		header := []string{
			"Quantity", "Name", "Simple Name", "Set", "Card Number",
			"Set Code", "Printing", "Condition", "Language", "Rarity",
		}
		assert.Equal(t, SchemaTCGPlayer, DetectSchema(header))
	})

	t.Run("below threshold falls back to generic", func(t *testing.T) {
		header := []string{"Name", "Quantity", "Condition"}
		assert.Equal(t, SchemaGeneric, DetectSchema(header))
	})

	t.Run("garbage header is generic", func(t *testing.T) {
		header := []string{"foo", "bar", "baz"}
		assert.Equal(t, SchemaGeneric, DetectSchema(header))
	})

	t.Run("empty header is generic", func(t *testing.T) {
		assert.Equal(t, SchemaGeneric, DetectSchema(nil))
	})

	t.Run("case and whitespace are ignored", func(t *testing.T) {
		header := []string{
			" quantity ", "NAME", "Simple Name", "set", "card number",
			"SET CODE", "printing", "Condition", "language", "rarity",
			"product id", "sku",
		}
		assert.Equal(t, SchemaTCGPlayer, DetectSchema(header))
	})
}

func TestKnownSchema(t *testing.T) {
	assert.True(t, KnownSchema(SchemaTCGPlayer))
	assert.True(t, KnownSchema(SchemaMoxfield))
	assert.True(t, KnownSchema(SchemaDeckbox))
	assert.True(t, KnownSchema(SchemaGeneric))
	assert.False(t, KnownSchema(""))
	assert.False(t, KnownSchema("excel"))
}
