package fuse

import (
	"math"
	"testing"

	"github.com/brandtint/brandtint/internal/colour"
)

func TestIsThemeAnchor(t *testing.T) {
	tests := []struct {
		name string
		rgb  colour.RGB
		want bool
	}{
		{name: "white", rgb: colour.RGB{R: 255, G: 255, B: 255}, want: false},
		{name: "black", rgb: colour.RGB{}, want: false},
		{name: "mid gray", rgb: colour.RGB{R: 128, G: 128, B: 128}, want: false},
		{name: "near white", rgb: colour.RGB{R: 250, G: 250, B: 250}, want: false},
		{name: "near black", rgb: colour.RGB{R: 10, G: 10, B: 10}, want: false},
		{name: "pure red", rgb: colour.RGB{R: 255}, want: true},
		{name: "pure green", rgb: colour.RGB{G: 255}, want: true},
		{name: "brand blue", rgb: colour.RGB{R: 37, G: 99, B: 235}, want: true},
		{name: "washed-out beige", rgb: colour.RGB{R: 210, G: 205, B: 200}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsThemeAnchor(tt.rgb); got != tt.want {
				t.Errorf("IsThemeAnchor(%v) = %v, want %v", tt.rgb, got, tt.want)
			}
		})
	}
}

func TestFuseFiltersGrayscale(t *testing.T) {
	pixels := []colour.WeightedColour{
		{RGB: colour.RGB{R: 255, G: 255, B: 255}, Area: 0.4},
		{RGB: colour.RGB{}, Area: 0.3},
		{RGB: colour.RGB{R: 128, G: 128, B: 128}, Area: 0.1},
		{RGB: colour.RGB{R: 255}, Area: 0.1},
		{RGB: colour.RGB{G: 255}, Area: 0.1},
	}

	scored := New().Fuse(pixels, nil, nil)

	if len(scored) != 2 {
		t.Fatalf("fused palette has %d colours, want 2: %v", len(scored), scored)
	}
	for _, sc := range scored {
		if sc.RGB != (colour.RGB{R: 255}) && sc.RGB != (colour.RGB{G: 255}) {
			t.Errorf("unexpected colour survived the anchor filter: %v", sc)
		}
	}
}

func TestFuseAreaIsBaseScore(t *testing.T) {
	pixels := []colour.WeightedColour{
		{RGB: colour.RGB{R: 255}, Area: 0.6},
	}

	scored := New().Fuse(pixels, nil, nil)
	if len(scored) != 1 {
		t.Fatalf("fused palette has %d colours, want 1", len(scored))
	}
	if math.Abs(scored[0].Score-0.6) > 1e-9 {
		t.Errorf("score = %f, want 0.6", scored[0].Score)
	}
	if scored[0].Origin != OriginPixel {
		t.Errorf("origin = %q, want %q", scored[0].Origin, OriginPixel)
	}
}

func TestFuseSemanticMultiplier(t *testing.T) {
	// A declared style variable matching a pixel colour boosts the pixel's
	// area score by the style-variable multiplier.
	red := colour.RGB{R: 255}
	pixels := []colour.WeightedColour{{RGB: red, Area: 0.6}}

	scored := New().Fuse(pixels, nil, []colour.RGB{red})
	if len(scored) != 1 {
		t.Fatalf("fused palette has %d colours, want 1: %v", len(scored), scored)
	}
	if math.Abs(scored[0].Score-0.66) > 1e-9 {
		t.Errorf("score = %f, want 0.66 (0.6 area x 1.1 declared match)", scored[0].Score)
	}
	if scored[0].Origin != OriginPixel {
		t.Errorf("origin = %q, want %q", scored[0].Origin, OriginPixel)
	}
}

func TestFuseStructuralOutranksArea(t *testing.T) {
	// A logo colour scores its full base weight and outranks even a
	// dominant pixel colour.
	blue := colour.RGB{R: 37, G: 99, B: 235}
	red := colour.RGB{R: 255}

	pixels := []colour.WeightedColour{{RGB: red, Area: 0.5}}
	dom := DOMColourMap{OriginLogo: {blue}}

	scored := New().Fuse(pixels, dom, nil)
	if len(scored) != 2 {
		t.Fatalf("fused palette has %d colours, want 2: %v", len(scored), scored)
	}
	if scored[0].RGB != blue || scored[0].Origin != OriginLogo {
		t.Errorf("top colour = %v (%s), want logo blue", scored[0].RGB, scored[0].Origin)
	}
	if math.Abs(scored[0].Score-1.0) > 1e-9 {
		t.Errorf("logo score = %f, want 1.0", scored[0].Score)
	}
}

func TestFuseCollapsesSimilarColours(t *testing.T) {
	// Two reds within the similarity distance collapse to the
	// higher-scoring member.
	red := colour.RGB{R: 255}
	nearRed := colour.RGB{R: 245, G: 10, B: 10}

	pixels := []colour.WeightedColour{
		{RGB: red, Area: 0.5},
		{RGB: nearRed, Area: 0.2},
	}

	scored := New().Fuse(pixels, nil, nil)
	if len(scored) != 1 {
		t.Fatalf("fused palette has %d colours, want 1: %v", len(scored), scored)
	}
	if scored[0].RGB != red {
		t.Errorf("kept colour = %v, want the higher-scoring %v", scored[0].RGB, red)
	}
}

func TestFuseCapsPalette(t *testing.T) {
	// Twelve mutually distinct hues: only the top eight survive.
	var pixels []colour.WeightedColour
	hues := []colour.RGB{
		{R: 255}, {R: 255, G: 128}, {R: 255, G: 255, B: 64}, {G: 200},
		{G: 200, B: 200}, {B: 255, G: 64}, {R: 128, B: 255}, {R: 255, B: 255},
		{R: 200, G: 64, B: 128}, {R: 64, G: 160, B: 64}, {R: 160, G: 96, B: 32}, {R: 96, G: 64, B: 200},
	}
	for i, rgb := range hues {
		pixels = append(pixels, colour.WeightedColour{RGB: rgb, Area: 0.08 - float64(i)*0.001})
	}

	scored := New().Fuse(pixels, nil, nil)
	if len(scored) != 8 {
		t.Fatalf("fused palette has %d colours, want 8", len(scored))
	}

	// Descending by score.
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Errorf("palette not sorted at %d: %f > %f", i, scored[i].Score, scored[i-1].Score)
		}
	}
}

func TestFuseInjectsCriticalColours(t *testing.T) {
	// Call-to-action colours beyond the per-role bound still reach the
	// palette at the small injection weight.
	ctas := []colour.RGB{
		{R: 255},
		{G: 200},
		{B: 255, G: 64},
		{R: 255, G: 128},
		{R: 128, B: 255},
		{R: 200, G: 64, B: 128}, // beyond the per-role bound
	}
	dom := DOMColourMap{OriginCTA: ctas}

	scored := New().Fuse(nil, dom, nil)
	if len(scored) != 6 {
		t.Fatalf("fused palette has %d colours, want 6: %v", len(scored), scored)
	}

	last := scored[len(scored)-1]
	if last.RGB != ctas[5] {
		t.Errorf("injected colour = %v, want %v", last.RGB, ctas[5])
	}
	if math.Abs(last.Score-0.05) > 1e-9 {
		t.Errorf("injected score = %f, want 0.05", last.Score)
	}
	if last.Origin != OriginCTA {
		t.Errorf("injected origin = %q, want %q", last.Origin, OriginCTA)
	}
}
