// Package theme maps a ranked colour palette to a named set of UI roles
// with a guaranteed minimum contrast between paired roles.
package theme

import (
	"encoding/json"

	"github.com/brandtint/brandtint/internal/colour"
)

// ThemeColours is the fixed set of named UI roles emitted by Synthesize.
// Every "-foreground" role achieves at least the WCAG AA contrast ratio
// against its paired role: 4.5:1 for text pairs, 3.0:1 for non-text roles
// such as borders.
type ThemeColours struct {
	Background        colour.RGB `json:"background"`
	Foreground        colour.RGB `json:"foreground"`
	Primary           colour.RGB `json:"primary"`
	PrimaryForeground colour.RGB `json:"primaryForeground"`
	Muted             colour.RGB `json:"muted"`
	MutedForeground   colour.RGB `json:"mutedForeground"`
	Border            colour.RGB `json:"border"`
	Input             colour.RGB `json:"input"`
	Card              colour.RGB `json:"card"`
	CardForeground    colour.RGB `json:"cardForeground"`
	Accent            colour.RGB `json:"accent"`
}

// Contrast requirements for the paired roles.
const (
	textContrastMin    = 4.5
	nonTextContrastMin = 3.0
)

// Fixed light and dark palette skeletons. The background/foreground pair is
// a fixed token pair rather than being derived by blending, which avoids
// compounding floating-point colour drift.
var (
	lightSkeleton = ThemeColours{
		Background:      mustHex("#ffffff"),
		Foreground:      mustHex("#0a0a0a"),
		Muted:           mustHex("#f5f5f5"),
		MutedForeground: mustHex("#737373"),
		Border:          mustHex("#e5e5e5"),
		Input:           mustHex("#e5e5e5"),
		Card:            mustHex("#ffffff"),
		CardForeground:  mustHex("#0a0a0a"),
	}

	darkSkeleton = ThemeColours{
		Background:      mustHex("#0a0a0a"),
		Foreground:      mustHex("#fafafa"),
		Muted:           mustHex("#262626"),
		MutedForeground: mustHex("#a3a3a3"),
		Border:          mustHex("#262626"),
		Input:           mustHex("#262626"),
		Card:            mustHex("#171717"),
		CardForeground:  mustHex("#fafafa"),
	}

	// defaultPrimary anchors themes synthesized from an empty palette.
	defaultPrimary = mustHex("#2563eb")

	// Mid-gray border replacements tuned to the background's lightness.
	borderOnLight = mustHex("#6b6b6b")
	borderOnDark  = mustHex("#9e9e9e")

	white = colour.RGB{R: 255, G: 255, B: 255}
	black = colour.RGB{R: 0, G: 0, B: 0}
)

// Synthesize maps a ranked palette to the fixed set of UI roles and repairs
// any role pair that fails its minimum contrast ratio.
//
// The top palette colour becomes primary and the second (or the first, if
// only one exists) becomes the auxiliary accent. The overall UI is light
// when primary is dark and vice versa. Synthesis is a two-stage design:
// assigning from a fixed skeleton and then verifying and substituting is
// simple and provably correct for the contrast invariant, where computing
// an always-compliant colour analytically for every primary hue is fragile.
func Synthesize(palette []colour.RGB) ThemeColours {
	primary := defaultPrimary
	if len(palette) > 0 {
		primary = palette[0]
	}

	accent := primary
	if len(palette) > 1 {
		accent = palette[1]
	}

	// Dark primary reads best on a light UI, and vice versa.
	var t ThemeColours
	if colour.Luminance(primary) < 0.5 {
		t = lightSkeleton
	} else {
		t = darkSkeleton
	}

	t.Primary = primary
	t.Accent = accent
	t.PrimaryForeground = bestTextOn(primary)

	return repair(t)
}

// repair checks every paired role and substitutes a compliant colour where
// the pair falls short of its minimum contrast ratio.
func repair(t ThemeColours) ThemeColours {
	t.Foreground = repairText(t.Foreground, t.Background)
	t.PrimaryForeground = repairText(t.PrimaryForeground, t.Primary)
	t.CardForeground = repairText(t.CardForeground, t.Card)
	t.MutedForeground = repairText(t.MutedForeground, t.Muted)

	if colour.ContrastRatio(t.Border, t.Background) < nonTextContrastMin {
		t.Border = borderFor(t.Background)
	}
	if colour.ContrastRatio(t.Input, t.Background) < nonTextContrastMin {
		t.Input = borderFor(t.Background)
	}

	return t
}

// repairText returns fg unchanged when it meets the text contrast minimum
// against bg, and otherwise whichever of pure black or pure white contrasts
// more. Black-or-white always achieves at least ~4.58:1 against any
// background, so the substitution is provably sufficient.
func repairText(fg, bg colour.RGB) colour.RGB {
	if colour.ContrastRatio(fg, bg) >= textContrastMin {
		return fg
	}
	return bestTextOn(bg)
}

// bestTextOn returns whichever of black or white contrasts more with bg.
func bestTextOn(bg colour.RGB) colour.RGB {
	if colour.ContrastRatio(white, bg) >= colour.ContrastRatio(black, bg) {
		return white
	}
	return black
}

// borderFor returns the mid-gray border token tuned to the background's
// lightness.
func borderFor(bg colour.RGB) colour.RGB {
	if colour.Luminance(bg) >= 0.5 {
		return borderOnLight
	}
	return borderOnDark
}

// ToJSON serialises the theme roles as a hex-string map.
func (t ThemeColours) ToJSON() ([]byte, error) {
	return json.MarshalIndent(map[string]string{
		"background":         t.Background.Hex(),
		"foreground":         t.Foreground.Hex(),
		"primary":            t.Primary.Hex(),
		"primary-foreground": t.PrimaryForeground.Hex(),
		"muted":              t.Muted.Hex(),
		"muted-foreground":   t.MutedForeground.Hex(),
		"border":             t.Border.Hex(),
		"input":              t.Input.Hex(),
		"card":               t.Card.Hex(),
		"card-foreground":    t.CardForeground.Hex(),
		"accent":             t.Accent.Hex(),
	}, "", "  ")
}

// mustHex parses a compile-time hex token.
func mustHex(hex string) colour.RGB {
	rgb, err := colour.ParseHex(hex)
	if err != nil {
		panic(err)
	}
	return rgb
}
