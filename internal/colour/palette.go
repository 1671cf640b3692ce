// Package colour provides colour extraction and palette analysis functionality.
package colour

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB represents a colour in 8-bit RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Distance returns the Euclidean distance between two colours in RGB space.
// This is cheap and suitable for similarity grouping; use DeltaE for
// perceptual comparisons.
func (rgb RGB) Distance(other RGB) float64 {
	dr := float64(rgb.R) - float64(other.R)
	dg := float64(rgb.G) - float64(other.G)
	db := float64(rgb.B) - float64(other.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// ParseHex parses a hex colour string into an RGB struct.
// Supports formats: #RRGGBB, RRGGBB, #RGB, RGB.
func ParseHex(hex string) (RGB, error) {
	hex = strings.TrimSpace(hex)
	hex = strings.TrimPrefix(hex, "#")

	// Expand shorthand format (RGB -> RRGGBB).
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour length: expected 6 characters, got %d", len(hex))
	}

	r, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid red component: %w", err)
	}

	g, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid green component: %w", err)
	}

	b, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid blue component: %w", err)
	}

	return RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// WeightedColour is a colour together with the fraction of sampled pixels it
// represents. A set of WeightedColours returned from extraction always sums
// to at most 1.0 and is sorted descending by area.
type WeightedColour struct {
	RGB  RGB     `json:"rgb"`
	Area float64 `json:"area"`
}

// Palette represents a ranked collection of colours extracted from pixels.
type Palette struct {
	Colours []WeightedColour
}

// NewPalette creates a new Palette with the given weighted colours.
func NewPalette(colours []WeightedColour) *Palette {
	return &Palette{Colours: colours}
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colours)
}

// ToHex converts the palette colours to hex strings in rank order.
func (p *Palette) ToHex() []string {
	hexColours := make([]string, len(p.Colours))
	for i, c := range p.Colours {
		hexColours[i] = c.RGB.Hex()
	}
	return hexColours
}

// ToRGBSlice returns the palette colours in rank order without their areas.
func (p *Palette) ToRGBSlice() []RGB {
	colours := make([]RGB, len(p.Colours))
	for i, c := range p.Colours {
		colours[i] = c.RGB
	}
	return colours
}

// TotalArea returns the sum of the colour area fractions.
func (p *Palette) TotalArea() float64 {
	total := 0.0
	for _, c := range p.Colours {
		total += c.Area
	}
	return total
}

// ColourJSON represents a colour in JSON output format.
type ColourJSON struct {
	Hex  string  `json:"hex"`
	RGB  RGB     `json:"rgb"`
	Area float64 `json:"area,omitempty"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count   int          `json:"count"`
	Colours []ColourJSON `json:"colours"`
}

// ToJSON converts the palette to JSON format.
func (p *Palette) ToJSON() ([]byte, error) {
	colours := make([]ColourJSON, len(p.Colours))
	for i, c := range p.Colours {
		colours[i] = ColourJSON{
			Hex:  c.RGB.Hex(),
			RGB:  c.RGB,
			Area: c.Area,
		}
	}

	paletteJSON := PaletteJSON{
		Count:   len(p.Colours),
		Colours: colours,
	}

	return json.MarshalIndent(paletteJSON, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Colours) == 0 {
		return "Empty palette"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Palette with %d colours:\n", len(p.Colours))
	for i, c := range p.Colours {
		fmt.Fprintf(&sb, "  %2d: %s (%.1f%%)\n", i+1, c.RGB.Hex(), c.Area*100)
	}
	return sb.String()
}
