package silhouette

import (
	"math"
)

// ContourConfig controls silhouette extraction.
type ContourConfig struct {
	// AlphaThreshold is the alpha value a pixel must exceed to count as opaque.
	AlphaThreshold uint8
	// Step is the sampling stride in pixels for the border scan and the
	// bounding-box scan.
	Step int
	// SimplifyTolerance is the Douglas-Peucker tolerance in pixels.
	SimplifyTolerance float64
	// NumRays is the number of rays cast from the seed pixel.
	NumRays int
	// MinPoints is the number of traced points below which detection falls
	// back to the bounding box. Values below 1 use the default of 6.
	MinPoints int
	// FallbackMargin is the inset of the rectangle returned when the raster
	// has no opaque pixel at all. Non-positive values use the default of 20.
	FallbackMargin float64
}

// DefaultContourConfig returns the stock detection settings.
func DefaultContourConfig() ContourConfig {
	return ContourConfig{
		AlphaThreshold:    127,
		Step:              5,
		SimplifyTolerance: 5.0,
		NumRays:           36,
		MinPoints:         6,
		FallbackMargin:    20,
	}
}

// ContourSource reports which path of DetectContour produced a polygon.
type ContourSource uint8

const (
	ContourTraced      ContourSource = iota // rays plus border scan, sorted and simplified
	ContourBoundingBox                      // bounding box of the opaque pixels
	ContourMargin                           // fixed inset rectangle, no opaque pixel found
)

func (s ContourSource) String() string {
	switch s {
	case ContourTraced:
		return "traced"
	case ContourBoundingBox:
		return "bounding-box"
	case ContourMargin:
		return "margin"
	default:
		return "unknown"
	}
}

// spiralSamples is the number of angular samples per ring of the seed search.
const spiralSamples = 16

// DetectContour extracts a closed polygon approximating the opaque
// silhouette of r, in raster pixel coordinates. It never returns an empty
// polygon: when too little silhouette is found it degrades to the bounding
// box of the opaque pixels, then to a fixed inset rectangle. The returned
// source says which path was taken.
func DetectContour(r *Raster, cfg ContourConfig) ([]Vec2, ContourSource) {
	if r == nil || r.Width < 0 || r.Height < 0 || len(r.Pix) < 4*r.Width*r.Height {
		r = NewRaster(0, 0)
	}
	cfg = cfg.sanitized()

	seedX, seedY, ok := findSeed(r, cfg.AlphaThreshold)
	if !ok {
		return boundingBoxFallback(r, cfg)
	}

	points := castRays(r, seedX, seedY, cfg, nil)
	points = scanBorders(r, cfg, points)

	if len(points) < cfg.MinPoints {
		return boundingBoxFallback(r, cfg)
	}

	sorted := SortClockwise(points, float64(seedX), float64(seedY))
	return SimplifyPolygon(sorted, cfg.SimplifyTolerance), ContourTraced
}

func (cfg ContourConfig) sanitized() ContourConfig {
	def := DefaultContourConfig()
	if cfg.MinPoints < 1 {
		cfg.MinPoints = def.MinPoints
	}
	if cfg.FallbackMargin <= 0 {
		cfg.FallbackMargin = def.FallbackMargin
	}
	if cfg.Step < 1 {
		cfg.Step = 1
	}
	if cfg.NumRays < 0 {
		cfg.NumRays = 0
	}
	return cfg
}

func isOpaque(r *Raster, x, y int, threshold uint8) bool {
	return r.Pix[(y*r.Width+x)*4+3] > threshold
}

// findSeed looks for an opaque pixel at the raster center, then on rings of
// growing radius around it, out to a quarter of the smaller dimension.
func findSeed(r *Raster, threshold uint8) (int, int, bool) {
	cx := r.Width / 2
	cy := r.Height / 2
	radius := float64(min(r.Width, r.Height)) / 4

	for ring := 0; float64(ring) < radius; ring++ {
		for k := 0; k < spiralSamples; k++ {
			angle := float64(k) * math.Pi / 8
			x := int(math.Floor(float64(cx) + float64(ring)*math.Cos(angle)))
			y := int(math.Floor(float64(cy) + float64(ring)*math.Sin(angle)))
			if x < 0 || x >= r.Width || y < 0 || y >= r.Height {
				continue
			}
			if isOpaque(r, x, y, threshold) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// castRays walks NumRays evenly spaced rays out of the seed and appends the
// last opaque pixel before each opaque-to-transparent transition. Rays that
// stay opaque up to the raster edge add nothing.
func castRays(r *Raster, seedX, seedY int, cfg ContourConfig, dst []Vec2) []Vec2 {
	maxDist := max(r.Width, r.Height)
	for i := 0; i < cfg.NumRays; i++ {
		angle := float64(i) / float64(cfg.NumRays) * 2 * math.Pi
		dirX, dirY := math.Cos(angle), math.Sin(angle)

		lastOpaque := false
		lastX, lastY := seedX, seedY
		for dist := 0; dist < maxDist; dist++ {
			x := int(math.Floor(float64(seedX) + dirX*float64(dist)))
			y := int(math.Floor(float64(seedY) + dirY*float64(dist)))
			if x < 0 || x >= r.Width || y < 0 || y >= r.Height {
				break
			}

			opaque := isOpaque(r, x, y, cfg.AlphaThreshold)
			if lastOpaque && !opaque {
				dst = append(dst, Vec2{X: float64(lastX), Y: float64(lastY)})
				break
			}
			lastOpaque = opaque
			lastX, lastY = x, y
		}
	}
	return dst
}

// scanBorders samples each raster edge every Step pixels and scans inward,
// appending the first opaque pixel met. This picks up concave regions and
// off-center blobs the rays miss.
func scanBorders(r *Raster, cfg ContourConfig, dst []Vec2) []Vec2 {
	w, h, t := r.Width, r.Height, cfg.AlphaThreshold

	// Top edge.
	for x := 0; x < w; x += cfg.Step {
		for y := 0; y < h; y++ {
			if isOpaque(r, x, y, t) {
				dst = append(dst, Vec2{X: float64(x), Y: float64(y)})
				break
			}
		}
	}
	// Bottom edge.
	for x := 0; x < w; x += cfg.Step {
		for y := h - 1; y >= 0; y-- {
			if isOpaque(r, x, y, t) {
				dst = append(dst, Vec2{X: float64(x), Y: float64(y)})
				break
			}
		}
	}
	// Left edge.
	for y := 0; y < h; y += cfg.Step {
		for x := 0; x < w; x++ {
			if isOpaque(r, x, y, t) {
				dst = append(dst, Vec2{X: float64(x), Y: float64(y)})
				break
			}
		}
	}
	// Right edge.
	for y := 0; y < h; y += cfg.Step {
		for x := w - 1; x >= 0; x-- {
			if isOpaque(r, x, y, t) {
				dst = append(dst, Vec2{X: float64(x), Y: float64(y)})
				break
			}
		}
	}
	return dst
}

// boundingBoxFallback returns the strided bounding box of the opaque pixels,
// or the inset margin rectangle when there are none.
func boundingBoxFallback(r *Raster, cfg ContourConfig) ([]Vec2, ContourSource) {
	minX, minY := r.Width, r.Height
	maxX, maxY := 0, 0
	found := false
	for y := 0; y < r.Height; y += cfg.Step {
		for x := 0; x < r.Width; x += cfg.Step {
			if isOpaque(r, x, y, cfg.AlphaThreshold) {
				minX = min(minX, x)
				minY = min(minY, y)
				maxX = max(maxX, x)
				maxY = max(maxY, y)
				found = true
			}
		}
	}

	if found {
		Logger().Debug("contour fallback",
			"source", ContourBoundingBox, "width", r.Width, "height", r.Height)
		return []Vec2{
			{X: float64(minX), Y: float64(minY)},
			{X: float64(maxX), Y: float64(minY)},
			{X: float64(maxX), Y: float64(maxY)},
			{X: float64(minX), Y: float64(maxY)},
		}, ContourBoundingBox
	}

	// The inset does not scale with the raster; rasters smaller than twice
	// the margin get an inverted rectangle.
	m := cfg.FallbackMargin
	w, h := float64(r.Width), float64(r.Height)
	Logger().Debug("contour fallback",
		"source", ContourMargin, "width", r.Width, "height", r.Height)
	return []Vec2{
		{X: m, Y: m},
		{X: w - m, Y: m},
		{X: w - m, Y: h - m},
		{X: m, Y: h - m},
	}, ContourMargin
}
