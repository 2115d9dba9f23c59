package catalog

// Treatment captures the visual treatment of a printing. It is derived from
// frame, border and promo metadata on every read and never stored, since sync
// may change the source fields between runs.
type Treatment struct {
	Showcase    bool    `json:"is_showcase"`
	ExtendedArt bool    `json:"is_extended_art"`
	Borderless  bool    `json:"is_borderless"`
	RetroFrame  bool    `json:"is_retro_frame"`
	Serialized  bool    `json:"is_serialized"`
	SpecialFoil *string `json:"special_foil_label,omitempty"`
}

// Sets whose foil printings carry a named special foil even though the
// source metadata has no promo type for it.
var specialFoilSets = map[string]string{
	"sld": "Special Edition Foil",
	"2x2": "Double Rainbow Foil",
	"dmu": "Stained Glass Foil",
	"bro": "Schematic Foil",
	"one": "Oil Slick Foil",
	"mom": "Halo Foil",
	"ltr": "Ring Foil",
	"woe": "Confetti Foil",
}

// ClassifyTreatment derives the Treatment for a printing. It is a pure
// function: identical input always yields identical output.
func ClassifyTreatment(p *Printing) Treatment {
	t := Treatment{
		Showcase:    hasString(p.FrameEffects, "showcase"),
		ExtendedArt: hasString(p.FrameEffects, "extendedart"),
		Borderless:  p.BorderColor == "borderless",
		RetroFrame:  p.Frame == "1997" || p.Frame == "1993",
		Serialized:  hasString(p.FrameEffects, "serialized"),
	}
	t.SpecialFoil = specialFoilLabel(p)
	return t
}

// specialFoilLabel picks the first matching label; promo types win over frame
// effects, which win over the per-set table.
func specialFoilLabel(p *Printing) *string {
	switch {
	case hasString(p.PromoTypes, "galaxyfoil"):
		return strPtr("Galaxy Foil")
	case hasString(p.PromoTypes, "textured"):
		return strPtr("Textured Foil")
	case hasString(p.PromoTypes, "etched"):
		return strPtr("Etched Foil")
	case hasString(p.FrameEffects, "inverted"):
		return strPtr("Phyrexian Foil")
	}
	if label, ok := specialFoilSets[p.SetCode]; ok {
		return strPtr(label)
	}
	return nil
}

func hasString(in []string, want string) bool {
	for _, s := range in {
		if s == want {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }
