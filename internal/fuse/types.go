// Package fuse combines colour evidence from pixels, declared style
// variables, and role-tagged DOM elements into one ranked palette.
package fuse

import "github.com/brandtint/brandtint/internal/colour"

// Origin categorises where a colour candidate was observed.
type Origin string

const (
	OriginLogo       Origin = "logo"
	OriginCTA        Origin = "call-to-action"
	OriginAccent     Origin = "accent"
	OriginHeading    Origin = "heading"
	OriginNavigation Origin = "navigation"
	OriginStyleVar   Origin = "style-variable"
	OriginPixel      Origin = "pixel"
)

// baseWeight is the trustworthiness of a colour by origin, used when a
// candidate does not carry an area share of its own.
var baseWeight = map[Origin]float64{
	OriginLogo:       1.0,
	OriginCTA:        0.9,
	OriginAccent:     0.8,
	OriginHeading:    0.7,
	OriginNavigation: 0.6,
	OriginStyleVar:   0.5,
	OriginPixel:      0.3,
}

// semanticMultiplier boosts an area-weighted pixel colour when a structural
// or declared colour of this origin cross-validates it.
var semanticMultiplier = map[Origin]float64{
	OriginLogo:       1.5,
	OriginCTA:        1.4,
	OriginAccent:     1.3,
	OriginHeading:    1.2,
	OriginNavigation: 1.1,
	OriginStyleVar:   1.1,
}

// originPriority orders origins for tie-breaking within a similarity group.
// Lower is stronger.
var originPriority = map[Origin]int{
	OriginLogo:       0,
	OriginCTA:        1,
	OriginAccent:     2,
	OriginHeading:    3,
	OriginNavigation: 4,
	OriginStyleVar:   5,
	OriginPixel:      6,
}

// DOMColourMap maps each structural role to the colours observed for
// elements matching that role, in document order, bounded per role.
type DOMColourMap map[Origin][]colour.RGB

// MaxColoursPerRole bounds how many colours a single DOM role contributes.
const MaxColoursPerRole = 5

// StructuralOrigins lists the element-role origins in priority order.
func StructuralOrigins() []Origin {
	return []Origin{OriginLogo, OriginCTA, OriginAccent, OriginHeading, OriginNavigation}
}

// ScoredColour is a fused palette entry with its explainable score.
type ScoredColour struct {
	RGB    colour.RGB `json:"rgb"`
	Hex    string     `json:"hex"`
	Origin Origin     `json:"origin"`
	Score  float64    `json:"score"`
}
