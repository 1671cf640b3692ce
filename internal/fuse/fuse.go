package fuse

import (
	"sort"

	"github.com/brandtint/brandtint/internal/colour"
)

const (
	// maxFusedColours caps the fused palette size.
	maxFusedColours = 8

	// similarityDistance is the RGB Euclidean distance below which two
	// candidates are treated as the same colour.
	similarityDistance = 30.0

	// crossValidateDeltaE is the perceptual distance within which a
	// structural or declared colour confirms a pixel-derived colour.
	crossValidateDeltaE = 10.0

	// injectionWeight is the small fixed score given to a brand-critical
	// colour (call-to-action or accent) that covers too little screen area
	// to survive on pixel evidence alone.
	injectionWeight = 0.05

	// Anchor filter bounds: colours outside these are never useful theme
	// anchors and are removed before any scoring.
	minAnchorLightness  = 0.10
	maxAnchorLightness  = 0.90
	minAnchorSaturation = 0.12
)

// candidate is a colour under consideration with its working score.
type candidate struct {
	rgb    colour.RGB
	origin Origin
	score  float64
}

// Fuser fuses multi-source colour evidence into one ranked palette.
type Fuser struct{}

// New creates a Fuser.
func New() *Fuser {
	return &Fuser{}
}

// Fuse combines area-weighted pixel colours with structural DOM colours and
// declared style-variable colours into a single ranked palette of at most
// eight colours.
//
// Pixel colours keep their area share as the base score and receive a
// semantic multiplier when a structural or declared colour lies within a
// perceptual-distance threshold of them; structural and declared colours
// score by their origin's base weight. Near-duplicate candidates collapse to
// the highest-scoring member, and brand-critical colours that lost out on
// area are injected at a small fixed weight.
func (f *Fuser) Fuse(pixels []colour.WeightedColour, dom DOMColourMap, styleVars []colour.RGB) []ScoredColour {
	structural := collectStructural(dom, styleVars)

	candidates := make([]candidate, 0, len(pixels)+len(structural))

	for _, p := range pixels {
		if !IsThemeAnchor(p.RGB) {
			continue
		}
		candidates = append(candidates, candidate{
			rgb:    p.RGB,
			origin: OriginPixel,
			score:  p.Area * bestMultiplier(p.RGB, structural),
		})
	}

	for _, s := range structural {
		if !IsThemeAnchor(s.rgb) {
			continue
		}
		candidates = append(candidates, candidate{
			rgb:    s.rgb,
			origin: s.origin,
			score:  baseWeight[s.origin],
		})
	}

	kept := collapseSimilar(candidates)
	kept = injectCritical(kept, dom)

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	if len(kept) > maxFusedColours {
		kept = kept[:maxFusedColours]
	}

	out := make([]ScoredColour, len(kept))
	for i, c := range kept {
		out[i] = ScoredColour{
			RGB:    c.rgb,
			Hex:    c.rgb.Hex(),
			Origin: c.origin,
			Score:  c.score,
		}
	}
	return out
}

// IsThemeAnchor reports whether a colour is usable as a theme anchor.
// Grayscale and extreme colours (too dark, too light, or too desaturated)
// are excluded before any scoring.
func IsThemeAnchor(rgb colour.RGB) bool {
	_, s, l := colour.RGBToHSL(rgb)
	if l < minAnchorLightness || l > maxAnchorLightness {
		return false
	}
	return s >= minAnchorSaturation
}

// collectStructural flattens the DOM colour map and style variables into
// origin-tagged candidates, bounding each role's contribution.
func collectStructural(dom DOMColourMap, styleVars []colour.RGB) []candidate {
	var out []candidate
	for _, origin := range StructuralOrigins() {
		colours := dom[origin]
		if len(colours) > MaxColoursPerRole {
			colours = colours[:MaxColoursPerRole]
		}
		for _, c := range colours {
			out = append(out, candidate{rgb: c, origin: origin})
		}
	}
	for _, c := range styleVars {
		out = append(out, candidate{rgb: c, origin: OriginStyleVar})
	}
	return out
}

// bestMultiplier returns the strongest semantic multiplier earned by a
// pixel colour from structural or declared colours perceptually close to
// it, or 1.0 when nothing cross-validates it.
func bestMultiplier(rgb colour.RGB, structural []candidate) float64 {
	best := 1.0
	for _, s := range structural {
		if colour.DeltaE(rgb, s.rgb) > crossValidateDeltaE {
			continue
		}
		if m := semanticMultiplier[s.origin]; m > best {
			best = m
		}
	}
	return best
}

// collapseSimilar groups candidates whose RGB distance is below the
// similarity threshold and keeps only the highest-scoring member per group.
// Ties break by origin priority.
func collapseSimilar(candidates []candidate) []candidate {
	var kept []candidate
	for _, c := range candidates {
		merged := false
		for i, k := range kept {
			if c.rgb.Distance(k.rgb) >= similarityDistance {
				continue
			}
			if c.score > k.score ||
				(c.score == k.score && originPriority[c.origin] < originPriority[k.origin]) {
				kept[i] = c
			}
			merged = true
			break
		}
		if !merged {
			kept = append(kept, c)
		}
	}
	return kept
}

// injectCritical appends call-to-action and accent colours that are absent
// from the kept set, at a small fixed weight, so a tiny but brand-critical
// button colour can still reach the final palette.
func injectCritical(kept []candidate, dom DOMColourMap) []candidate {
	for _, origin := range []Origin{OriginCTA, OriginAccent} {
		for _, c := range dom[origin] {
			if !IsThemeAnchor(c) {
				continue
			}
			present := false
			for _, k := range kept {
				if c.Distance(k.rgb) < similarityDistance {
					present = true
					break
				}
			}
			if !present {
				kept = append(kept, candidate{rgb: c, origin: origin, score: injectionWeight})
			}
		}
	}
	return kept
}
