package colour

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LiteralFormat identifies the recognised CSS colour-literal formats.
type LiteralFormat string

const (
	FormatHex   LiteralFormat = "hex"
	FormatRGB   LiteralFormat = "rgb"
	FormatHSL   LiteralFormat = "hsl"
	FormatOklch LiteralFormat = "oklch"
	FormatOklab LiteralFormat = "oklab"
)

// ErrUnrecognisedColour is returned by ParseCSSColour for values that match
// no recognised literal format.
type ErrUnrecognisedColour struct {
	Value string
}

func (e *ErrUnrecognisedColour) Error() string {
	return fmt.Sprintf("unrecognised colour literal: %q", e.Value)
}

var (
	hexRegex   = regexp.MustCompile(`^#([0-9a-fA-F]{6}|[0-9a-fA-F]{3})$`)
	rgbRegex   = regexp.MustCompile(`^rgba?\s*\(\s*([0-9.]+)\s*,?\s*([0-9.]+)\s*,?\s*([0-9.]+)`)
	hslRegex   = regexp.MustCompile(`^hsla?\s*\(\s*([0-9.]+)\s*,?\s*([0-9.]+)%?\s*,?\s*([0-9.]+)%?`)
	oklchRegex = regexp.MustCompile(`^oklch\s*\(\s*([0-9.]+%?)\s+([0-9.]+)\s+([0-9.]+)`)
	oklabRegex = regexp.MustCompile(`^oklab\s*\(\s*([0-9.-]+%?)\s+([0-9.-]+)\s+([0-9.-]+)`)
)

// ParseCSSColour parses a CSS colour literal into an RGB value together with
// the format it was recognised as. It is total: every input either maps to
// one of the tagged formats or fails with ErrUnrecognisedColour. Named
// colours and colour functions with variables are deliberately not
// supported.
func ParseCSSColour(value string) (RGB, LiteralFormat, error) {
	value = strings.TrimSpace(strings.ToLower(value))

	if m := hexRegex.FindStringSubmatch(value); m != nil {
		rgb, err := ParseHex(m[1])
		if err != nil {
			return RGB{}, FormatHex, err
		}
		return rgb, FormatHex, nil
	}

	if m := rgbRegex.FindStringSubmatch(value); m != nil {
		r := parseComponent(m[1])
		g := parseComponent(m[2])
		b := parseComponent(m[3])
		return RGB{
			R: clampChannel(r / 255.0),
			G: clampChannel(g / 255.0),
			B: clampChannel(b / 255.0),
		}, FormatRGB, nil
	}

	if m := hslRegex.FindStringSubmatch(value); m != nil {
		h := parseComponent(m[1])
		s := parseComponent(m[2])
		l := parseComponent(m[3])

		// Saturation and lightness may be given as percentages.
		if s > 1 {
			s /= 100.0
		}
		if l > 1 {
			l /= 100.0
		}
		return HSLToRGB(h, s, l), FormatHSL, nil
	}

	if m := oklchRegex.FindStringSubmatch(value); m != nil {
		l := parsePercentable(m[1])
		c := parseComponent(m[2])
		h := parseComponent(m[3])
		return OklchToRGB(Oklch{L: l, C: c, H: h}), FormatOklch, nil
	}

	if m := oklabRegex.FindStringSubmatch(value); m != nil {
		l := parsePercentable(m[1])
		a := parseComponent(m[2])
		b := parseComponent(m[3])
		return OklabToRGB(Oklab{L: l, A: a, B: b}), FormatOklab, nil
	}

	return RGB{}, "", &ErrUnrecognisedColour{Value: value}
}

// parseComponent parses a numeric component already vetted by a regex.
func parseComponent(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64) //nolint:errcheck // regex guarantees a valid float
	return v
}

// parsePercentable parses a component that may carry a percent sign
// (e.g. oklch lightness "62.8%").
func parsePercentable(s string) float64 {
	if strings.HasSuffix(s, "%") {
		return parseComponent(strings.TrimSuffix(s, "%")) / 100.0
	}
	return parseComponent(s)
}
