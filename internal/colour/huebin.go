package colour

import "fmt"

const (
	// hueBinCount is the number of fixed 30-degree hue partitions.
	hueBinCount = 12

	// neutralBin is the extra bin index for low-chroma pixels.
	neutralBin = hueBinCount

	// NeutralChromaThreshold is the normalised chroma below which a pixel
	// is considered neutral (grayscale-ish) and excluded from hue binning.
	// Chroma is normalised against maxSRGBChroma so the threshold reads as
	// a fraction of the most chromatic colour sRGB can express.
	NeutralChromaThreshold = 0.15

	// maxSRGBChroma is the approximate maximum Oklch chroma reachable
	// inside the sRGB gamut.
	maxSRGBChroma = 0.4

	// significantBinShare is the minimum pixel share a bin needs before it
	// contributes a colour to the palette.
	significantBinShare = 0.02
)

// HueBinExtractor extracts a palette by partitioning pixels into twelve
// fixed 30-degree Oklch hue bins plus a neutral bin.
//
// Unlike iterative clustering, hue binning guarantees that perceptually
// distinct hues (~128 degree lime vs ~168 degree cyan fall in different
// bins) can never be merged into a muddy average by unlucky cluster
// seeding. This is the primary extraction path for website screenshots.
type HueBinExtractor struct {
	chromaThreshold float64
	minShare        float64
}

// NewHueBinExtractor creates a HueBinExtractor with default thresholds.
func NewHueBinExtractor() *HueBinExtractor {
	return &HueBinExtractor{
		chromaThreshold: NeutralChromaThreshold,
		minShare:        significantBinShare,
	}
}

// Extract assigns every pixel to a hue bin and emits, for each bin whose
// pixel share exceeds the significance threshold, the bin's most saturated
// pixel with the bin's share as area. Output is sorted descending by area.
//
// A true grayscale input lands entirely in the neutral bin; the neutral
// bin itself is dropped, so the result may be empty.
func (e *HueBinExtractor) Extract(pixels []RGB) (*Palette, error) {
	if len(pixels) == 0 {
		return nil, fmt.Errorf("no pixels to extract from")
	}

	counts := make([]int, hueBinCount+1)
	best := make([]RGB, hueBinCount+1)
	bestSat := make([]float64, hueBinCount+1)

	for _, p := range pixels {
		bin := e.binFor(p)
		counts[bin]++
		if sat := HSVSaturation(p); counts[bin] == 1 || sat > bestSat[bin] {
			best[bin] = p
			bestSat[bin] = sat
		}
	}

	total := float64(len(pixels))
	colours := make([]WeightedColour, 0, hueBinCount)
	for bin := 0; bin < hueBinCount; bin++ {
		share := float64(counts[bin]) / total
		if share < e.minShare {
			continue
		}
		colours = append(colours, WeightedColour{RGB: best[bin], Area: share})
	}

	sortByArea(colours)
	return NewPalette(colours), nil
}

// IsNeutral reports whether a colour would land in the neutral bin.
func IsNeutral(rgb RGB) bool {
	return RGBToOklch(rgb).C/maxSRGBChroma < NeutralChromaThreshold
}

// binFor returns the bin index for a pixel: its 30-degree Oklch hue bin, or
// the neutral bin when chroma is below the threshold.
func (e *HueBinExtractor) binFor(p RGB) int {
	lch := RGBToOklch(p)
	if lch.C/maxSRGBChroma < e.chromaThreshold {
		return neutralBin
	}

	bin := int(lch.H / 30.0)
	if bin >= hueBinCount {
		bin = hueBinCount - 1
	}
	return bin
}
