package colour

import "math"

// Oklab is a colour in the Oklab perceptually uniform colour space.
// L is lightness (0-1); A and B are the green-red and blue-yellow opponent
// axes (roughly -0.4 to 0.4).
// Reference: https://bottosson.github.io/posts/oklab/.
type Oklab struct {
	L float64
	A float64
	B float64
}

// Oklch is the cylindrical form of Oklab.
// L is lightness (0-1), C is chroma (>= 0), H is hue in degrees [0, 360).
type Oklch struct {
	L float64
	C float64
	H float64
}

// RGBToOklab converts an sRGB colour to Oklab.
func RGBToOklab(rgb RGB) Oklab {
	r := srgbToLinear(float64(rgb.R) / 255.0)
	g := srgbToLinear(float64(rgb.G) / 255.0)
	b := srgbToLinear(float64(rgb.B) / 255.0)

	// Linear sRGB to LMS cone response (D65 illuminant).
	l := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	m := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	s := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	// Cube-root compression.
	l = math.Cbrt(l)
	m = math.Cbrt(m)
	s = math.Cbrt(s)

	return Oklab{
		L: 0.2104542553*l + 0.7936177850*m - 0.0040720468*s,
		A: 1.9779984951*l - 2.4285922050*m + 0.4505937099*s,
		B: 0.0259040371*l + 0.7827717662*m - 0.8086757660*s,
	}
}

// OklabToRGB converts an Oklab colour back to sRGB.
// Channel values are clamped to [0, 255] and rounded; a round-trip through
// RGBToOklab reproduces the original channels within +-1.
func OklabToRGB(lab Oklab) RGB {
	l := lab.L + 0.3963377774*lab.A + 0.2158037573*lab.B
	m := lab.L - 0.1055613458*lab.A - 0.0638541728*lab.B
	s := lab.L - 0.0894841775*lab.A - 1.2914855480*lab.B

	l = l * l * l
	m = m * m * m
	s = s * s * s

	r := +4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	g := -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	b := -0.0041960863*l - 0.7034186147*m + 1.7076147010*s

	return RGB{
		R: clampChannel(linearToSRGB(r)),
		G: clampChannel(linearToSRGB(g)),
		B: clampChannel(linearToSRGB(b)),
	}
}

// OklabToOklch converts Oklab to its cylindrical Oklch form.
// Hue is atan2(B, A) normalised to [0, 360); chroma is sqrt(A^2+B^2).
func OklabToOklch(lab Oklab) Oklch {
	h := math.Atan2(lab.B, lab.A) * 180.0 / math.Pi
	if h < 0 {
		h += 360
	}
	return Oklch{
		L: lab.L,
		C: math.Sqrt(lab.A*lab.A + lab.B*lab.B),
		H: h,
	}
}

// OklchToOklab converts cylindrical Oklch back to Oklab.
func OklchToOklab(lch Oklch) Oklab {
	hRad := lch.H * math.Pi / 180.0
	return Oklab{
		L: lch.L,
		A: lch.C * math.Cos(hRad),
		B: lch.C * math.Sin(hRad),
	}
}

// RGBToOklch converts an sRGB colour directly to Oklch.
func RGBToOklch(rgb RGB) Oklch {
	return OklabToOklch(RGBToOklab(rgb))
}

// OklchToRGB converts Oklch directly to sRGB.
func OklchToRGB(lch Oklch) RGB {
	return OklabToRGB(OklchToOklab(lch))
}

// DeltaE returns the perceptual distance between two colours: Euclidean
// distance in Oklab scaled by 100 so it behaves like familiar difference
// scales (~0 imperceptible, >10 clearly different colours).
//
// Raw RGB/HSV hue is perceptually distorted (cyan and green can appear
// closer in HSV hue than they look); all hue-sensitive decisions must use
// this space instead.
func DeltaE(c1, c2 RGB) float64 {
	a := RGBToOklab(c1)
	b := RGBToOklab(c2)
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dl*dl+da*da+db*db) * 100.0
}

// srgbToLinear removes the sRGB gamma encoding from a channel in [0, 1].
func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// linearToSRGB applies sRGB gamma encoding to a linear channel.
func linearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1.0/2.4) - 0.055
}

// clampChannel scales a [0, 1] channel to 8 bits with rounding and clamping.
func clampChannel(v float64) uint8 {
	scaled := int(v*255 + 0.5)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
