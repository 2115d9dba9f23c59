package importer

import (
	"strconv"
	"strings"

	"cardvault/internal/catalog"
	"cardvault/internal/inventory"
)

// fieldColumns lists, in priority order, the header names each normalized
// field is read from.
type fieldColumns struct {
	name      []string
	quantity  []string
	set       []string
	condition []string
	finish    []string
	language  []string
	price     []string
}

var schemaFields = map[string]fieldColumns{
	SchemaTCGPlayer: {
		name:      []string{"name", "simple name"},
		quantity:  []string{"quantity"},
		set:       []string{"set", "set code"},
		condition: []string{"condition"},
		finish:    []string{"printing"},
		language:  []string{"language"},
		price:     []string{"price each", "price"},
	},
	SchemaMoxfield: {
		name:      []string{"name"},
		quantity:  []string{"count"},
		set:       []string{"edition"},
		condition: []string{"condition"},
		finish:    []string{"foil"},
		language:  []string{"language"},
		price:     []string{"purchase price"},
	},
	SchemaDeckbox: {
		name:      []string{"name"},
		quantity:  []string{"count"},
		set:       []string{"edition"},
		condition: []string{"condition"},
		finish:    []string{"foil"},
		language:  []string{"language"},
		price:     []string{"my price"},
	},
	SchemaGeneric: {
		name:      []string{"name", "card name", "card"},
		quantity:  []string{"quantity", "qty", "count"},
		set:       []string{"set", "set name", "edition"},
		condition: []string{"condition", "cond"},
		finish:    []string{"foil", "finish", "printing"},
		language:  []string{"language", "lang"},
		price:     []string{"price", "cost", "value", "my price", "purchase price"},
	},
}

// conditionSynonyms maps external condition spellings onto the 5-point scale.
var conditionSynonyms = map[string]inventory.Condition{
	"nm":                     inventory.ConditionNM,
	"m":                      inventory.ConditionNM,
	"mint":                   inventory.ConditionNM,
	"near mint":              inventory.ConditionNM,
	"mint (m)":               inventory.ConditionNM,
	"near mint (nm)":         inventory.ConditionNM,
	"lp":                     inventory.ConditionLP,
	"ex":                     inventory.ConditionLP,
	"excellent":              inventory.ConditionLP,
	"lightly played":         inventory.ConditionLP,
	"light play":             inventory.ConditionLP,
	"slightly played":        inventory.ConditionLP,
	"good (lightly played)":  inventory.ConditionLP,
	"mp":                     inventory.ConditionMP,
	"gd":                     inventory.ConditionMP,
	"good":                   inventory.ConditionMP,
	"played":                 inventory.ConditionMP,
	"moderately played":      inventory.ConditionMP,
	"hp":                     inventory.ConditionHP,
	"heavily played":         inventory.ConditionHP,
	"heavy play":             inventory.ConditionHP,
	"poor (heavily played)":  inventory.ConditionHP,
	"dmg":                    inventory.ConditionDMG,
	"dmged":                  inventory.ConditionDMG,
	"poor":                   inventory.ConditionDMG,
	"damaged":                inventory.ConditionDMG,
}

// NormalizeRow maps one raw header→value row into a normalized Row. ok is
// false when the row has no usable name and must be dropped.
func NormalizeRow(raw map[string]string, schemaName string) (Row, bool) {
	fields, found := schemaFields[schemaName]
	if !found {
		fields = schemaFields[SchemaGeneric]
	}

	name := strings.TrimSpace(pick(raw, fields.name))
	if name == "" {
		return Row{}, false
	}

	row := Row{
		Name:      name,
		Quantity:  1,
		Set:       "Unknown",
		Condition: inventory.ConditionNM,
		Finish:    catalog.FinishNonfoil,
		Language:  "English",
	}

	if qty, err := strconv.Atoi(strings.TrimSpace(pick(raw, fields.quantity))); err == nil && qty >= 1 {
		row.Quantity = qty
	}
	if set := strings.TrimSpace(pick(raw, fields.set)); set != "" {
		row.Set = set
	}
	if cond, ok := conditionSynonyms[strings.ToLower(strings.TrimSpace(pick(raw, fields.condition)))]; ok {
		row.Condition = cond
	}
	row.Finish = detectFinish(pick(raw, fields.finish))
	if lang := strings.TrimSpace(pick(raw, fields.language)); lang != "" {
		row.Language = lang
	}
	if priceStr := strings.TrimSpace(pick(raw, fields.price)); priceStr != "" {
		priceStr = strings.TrimPrefix(priceStr, "$")
		if price, err := strconv.ParseFloat(priceStr, 64); err == nil && price > 0 {
			row.UserPrice = &price
		}
	}

	return row, true
}

// detectFinish substring-matches the finish-like column; etched wins over
// plain foil so "etched foil" maps correctly.
func detectFinish(value string) string {
	v := strings.ToLower(value)
	switch {
	case strings.Contains(v, "etched"):
		return catalog.FinishEtched
	case strings.Contains(v, "foil"):
		return catalog.FinishFoil
	default:
		return catalog.FinishNonfoil
	}
}

func pick(raw map[string]string, columns []string) string {
	for _, col := range columns {
		if v, ok := raw[col]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
