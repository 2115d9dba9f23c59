package catalog

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a card or printing is not found.
var ErrNotFound = errors.New("not found")

// ErrInvalid marks validation failures on sync payloads. Nothing is written
// when an upsert is rejected with it.
var ErrInvalid = errors.New("invalid input")

// Finish values a printing can be sold in.
const (
	FinishNonfoil = "nonfoil"
	FinishFoil    = "foil"
	FinishEtched  = "etched"
)

// Card is one oracle-level card identity. Cards are created and overwritten
// by the catalog sync; they are never deleted.
type Card struct {
	OracleID      string            `json:"oracle_id"`
	Name          string            `json:"name"`
	ManaCost      string            `json:"mana_cost,omitempty"`
	ManaValue     float64           `json:"mana_value"`
	TypeLine      string            `json:"type_line,omitempty"`
	OracleText    string            `json:"oracle_text,omitempty"`
	Power         *string           `json:"power,omitempty"`
	Toughness     *string           `json:"toughness,omitempty"`
	Colors        []string          `json:"colors,omitempty"`
	ColorIdentity []string          `json:"color_identity,omitempty"`
	Keywords      []string          `json:"keywords,omitempty"`
	Legalities    map[string]string `json:"legalities,omitempty"`
	Reserved      bool              `json:"reserved"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Printing is one physical version of a Card. Its ID is the external source
// id, so re-syncing the same printing overwrites instead of duplicating.
type Printing struct {
	ID              string    `json:"id"`
	OracleID        string    `json:"oracle_id"`
	SetCode         string    `json:"set_code"`
	SetName         string    `json:"set_name,omitempty"`
	CollectorNumber string    `json:"collector_number,omitempty"`
	Rarity          string    `json:"rarity,omitempty"`
	ReleasedAt      time.Time `json:"released_at"`
	ImageSmall      string    `json:"image_small,omitempty"`
	ImageNormal     string    `json:"image_normal,omitempty"`
	ImageLarge      string    `json:"image_large,omitempty"`
	ImageBack       *string   `json:"image_back,omitempty"`
	Frame           string    `json:"frame,omitempty"`
	FrameEffects    []string  `json:"frame_effects,omitempty"`
	BorderColor     string    `json:"border_color,omitempty"`
	PromoTypes      []string  `json:"promo_types,omitempty"`
	Finishes        []string  `json:"finishes"`
	Oversized       bool      `json:"oversized"`
	FullArt         bool      `json:"full_art"`
	Textless        bool      `json:"textless"`
	Promo           bool      `json:"promo"`
	Artist          string    `json:"artist,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validate checks the fields the catalog cannot store without.
func (c *Card) Validate() error {
	if c.OracleID == "" {
		return fmt.Errorf("%w: oracle_id is required", ErrInvalid)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	return nil
}

// Validate checks printing identity and that at least one known finish is
// available.
func (p *Printing) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: printing id is required", ErrInvalid)
	}
	if p.OracleID == "" {
		return fmt.Errorf("%w: oracle_id is required", ErrInvalid)
	}
	if len(p.Finishes) == 0 {
		return fmt.Errorf("%w: at least one finish is required", ErrInvalid)
	}
	for _, f := range p.Finishes {
		switch f {
		case FinishNonfoil, FinishFoil, FinishEtched:
		default:
			return fmt.Errorf("%w: unknown finish %q", ErrInvalid, f)
		}
	}
	return nil
}

// HasFinish reports whether the printing is available in the given finish.
func (p *Printing) HasFinish(finish string) bool {
	for _, f := range p.Finishes {
		if f == finish {
			return true
		}
	}
	return false
}
