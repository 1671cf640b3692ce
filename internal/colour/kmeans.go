package colour

import (
	"fmt"
	"math"
	"sort"
)

const (
	// SimplePaletteSize is the cluster count used for plain image palettes.
	SimplePaletteSize = 5

	// SaturatedPaletteSize is the cluster count used when area-weighted,
	// saturation-preserving extraction is required.
	SaturatedPaletteSize = 8
)

// KMeansExtractor implements colour extraction using iterative clustering
// in RGB space.
//
// Centroid seeding is a fixed stride over the input pixels rather than
// random or k-means++ selection. This is deterministic, which keeps
// extraction reproducible across runs for the same input.
type KMeansExtractor struct {
	maxIterations int
	convergence   float64
}

// NewKMeansExtractor creates a new KMeansExtractor with default settings.
func NewKMeansExtractor() *KMeansExtractor {
	return &KMeansExtractor{
		maxIterations: 20,
		convergence:   2.0,
	}
}

// Extract clusters the pixel sample into k groups and reports each cluster's
// mean colour with its pixel-count share. Output is sorted descending by area.
func (e *KMeansExtractor) Extract(pixels []RGB, k int) (*Palette, error) {
	return e.extract(pixels, k, false)
}

// ExtractSaturated clusters like Extract but reports each cluster's most
// saturated member pixel instead of the arithmetic mean. Averaging mixes a
// vivid colour with nearby near-white or near-black pixels and desaturates
// it, so once membership is fixed the representative colour is chosen, not
// computed.
func (e *KMeansExtractor) ExtractSaturated(pixels []RGB, k int) (*Palette, error) {
	return e.extract(pixels, k, true)
}

func (e *KMeansExtractor) extract(pixels []RGB, k int, saturated bool) (*Palette, error) {
	if len(pixels) == 0 {
		return nil, fmt.Errorf("no pixels to extract from")
	}
	if k < 1 {
		return nil, fmt.Errorf("colour count must be at least 1, got %d", k)
	}
	if k > 256 {
		return nil, fmt.Errorf("colour count too large: %d (maximum: 256)", k)
	}

	// If fewer unique colours exist than clusters requested, report the
	// unique colours with their frequencies directly.
	unique := uniqueColourAreas(pixels)
	if len(unique) <= k {
		sortByArea(unique)
		return NewPalette(unique), nil
	}

	centroids, assignments := e.cluster(pixels, k)

	// Tally cluster sizes and, when requested, the most saturated member.
	counts := make([]int, k)
	best := make([]RGB, k)
	bestSat := make([]float64, k)
	for i, p := range pixels {
		c := assignments[i]
		counts[c]++
		if sat := HSVSaturation(p); counts[c] == 1 || sat > bestSat[c] {
			best[c] = p
			bestSat[c] = sat
		}
	}

	total := float64(len(pixels))
	colours := make([]WeightedColour, 0, k)
	for i := range k {
		if counts[i] == 0 {
			continue
		}
		rgb := centroids[i].toRGB()
		if saturated {
			rgb = best[i]
		}
		colours = append(colours, WeightedColour{
			RGB:  rgb,
			Area: float64(counts[i]) / total,
		})
	}

	sortByArea(colours)
	return NewPalette(colours), nil
}

// point3D represents a point in 3D RGB colour space.
type point3D struct {
	R, G, B float64
}

// distance calculates the Euclidean distance between two points in RGB space.
func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func (p point3D) toRGB() RGB {
	return RGB{
		R: clampChannel(p.R / 255.0),
		G: clampChannel(p.G / 255.0),
		B: clampChannel(p.B / 255.0),
	}
}

// cluster runs the iterative clustering loop and returns the final centroids
// and per-pixel assignments. Each iteration works on an immutable snapshot of
// the previous centroids, which keeps the convergence condition testable.
func (e *KMeansExtractor) cluster(pixels []RGB, k int) ([]point3D, []int) {
	points := make([]point3D, len(pixels))
	for i, p := range pixels {
		points[i] = point3D{R: float64(p.R), G: float64(p.G), B: float64(p.B)}
	}

	centroids := seedCentroids(points, k)
	assignments := make([]int, len(points))

	for iter := 0; iter < e.maxIterations; iter++ {
		// Assign each point to its nearest centroid.
		for i, point := range points {
			assignments[i] = nearestCentroid(point, centroids)
		}

		// Recompute centroids as per-channel means of assigned points.
		next := recalculateCentroids(points, assignments, centroids)

		// Converged when centroids barely moved.
		totalMovement := 0.0
		for i := range centroids {
			totalMovement += centroids[i].distance(next[i])
		}
		centroids = next

		if totalMovement/float64(k) < e.convergence {
			break
		}
	}

	// Final assignment pass against the converged centroids.
	for i, point := range points {
		assignments[i] = nearestCentroid(point, centroids)
	}

	return centroids, assignments
}

// seedCentroids picks k initial centroids at a fixed stride over the input.
func seedCentroids(points []point3D, k int) []point3D {
	centroids := make([]point3D, k)
	stride := len(points) / k
	for i := range k {
		centroids[i] = points[i*stride]
	}
	return centroids
}

// nearestCentroid finds the index of the nearest centroid to a point.
func nearestCentroid(point point3D, centroids []point3D) int {
	minDist := math.MaxFloat64
	nearest := 0

	for i, centroid := range centroids {
		dist := point.distance(centroid)
		if dist < minDist {
			minDist = dist
			nearest = i
		}
	}

	return nearest
}

// recalculateCentroids recalculates centroid positions based on assigned
// points. A cluster that lost all members keeps its previous centroid.
func recalculateCentroids(points []point3D, assignments []int, previous []point3D) []point3D {
	k := len(previous)
	sums := make([]point3D, k)
	counts := make([]int, k)

	for i, point := range points {
		cluster := assignments[i]
		sums[cluster].R += point.R
		sums[cluster].G += point.G
		sums[cluster].B += point.B
		counts[cluster]++
	}

	centroids := make([]point3D, k)
	for i := range k {
		if counts[i] > 0 {
			centroids[i] = point3D{
				R: sums[i].R / float64(counts[i]),
				G: sums[i].G / float64(counts[i]),
				B: sums[i].B / float64(counts[i]),
			}
		} else {
			centroids[i] = previous[i]
		}
	}

	return centroids
}

// uniqueColourAreas tallies the distinct colours in a pixel sample.
func uniqueColourAreas(pixels []RGB) []WeightedColour {
	counts := make(map[RGB]int)
	order := make([]RGB, 0)
	for _, p := range pixels {
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}

	total := float64(len(pixels))
	colours := make([]WeightedColour, len(order))
	for i, rgb := range order {
		colours[i] = WeightedColour{RGB: rgb, Area: float64(counts[rgb]) / total}
	}
	return colours
}

// sortByArea sorts weighted colours descending by area, with hex order as a
// deterministic tie-break.
func sortByArea(colours []WeightedColour) {
	sort.SliceStable(colours, func(i, j int) bool {
		if colours[i].Area != colours[j].Area {
			return colours[i].Area > colours[j].Area
		}
		return colours[i].RGB.Hex() < colours[j].RGB.Hex()
	})
}
