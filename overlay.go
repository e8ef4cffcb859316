package silhouette

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

var (
	overlayBackground = color.NRGBA{R: 35, G: 30, B: 45, A: 255}
	overlayFill       = color.NRGBA{R: 80, G: 200, B: 255, A: 70}
	overlayStroke     = color.NRGBA{R: 255, G: 60, B: 200, A: 255}
	overlayVertex     = color.NRGBA{R: 255, G: 230, B: 60, A: 255}
)

const (
	overlayStrokeWidth = 2.0
	overlayVertexSize  = 2
)

// RenderContourOverlay draws the raster over a dark background with the
// polygon filled translucently, its edges stroked and its vertices marked.
func RenderContourOverlay(r *Raster, points []Vec2) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(overlayBackground), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), r.NRGBA(), image.Point{}, draw.Over)

	if len(points) >= 3 {
		z := vector.NewRasterizer(r.Width, r.Height)
		z.DrawOp = draw.Over
		z.MoveTo(clampTo(points[0], r.Width, r.Height))
		for _, p := range points[1:] {
			z.LineTo(clampTo(p, r.Width, r.Height))
		}
		z.ClosePath()
		z.Draw(dst, dst.Bounds(), image.NewUniform(overlayFill), image.Point{})
	}

	for i := range points {
		strokeEdge(dst, points[i], points[(i+1)%len(points)])
	}

	vertex := image.NewUniform(overlayVertex)
	for _, p := range points {
		x, y := int(math.Round(p.X)), int(math.Round(p.Y))
		rect := image.Rect(x-overlayVertexSize, y-overlayVertexSize, x+overlayVertexSize+1, y+overlayVertexSize+1)
		draw.Draw(dst, rect.Intersect(dst.Bounds()), vertex, image.Point{}, draw.Over)
	}
	return dst
}

// strokeEdge fills the quad around segment a-b.
func strokeEdge(dst *image.NRGBA, a, b Vec2) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx := -dy / length * overlayStrokeWidth / 2
	ny := dx / length * overlayStrokeWidth / 2

	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	z.MoveTo(clampTo(Vec2{a.X + nx, a.Y + ny}, w, h))
	z.LineTo(clampTo(Vec2{b.X + nx, b.Y + ny}, w, h))
	z.LineTo(clampTo(Vec2{b.X - nx, b.Y - ny}, w, h))
	z.LineTo(clampTo(Vec2{a.X - nx, a.Y - ny}, w, h))
	z.ClosePath()
	z.Draw(dst, bounds, image.NewUniform(overlayStroke), image.Point{})
}

// clampTo keeps a path vertex inside the rasterizer bounds.
func clampTo(p Vec2, w, h int) (float32, float32) {
	x := math.Max(0, math.Min(p.X, float64(w)))
	y := math.Max(0, math.Min(p.Y, float64(h)))
	return float32(x), float32(y)
}

// WriteContourOverlay renders the overlay and writes it to dir as
// <label>.png, returning the file path.
func WriteContourOverlay(dir, label string, r *Raster, points []Vec2) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("overlay: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, sanitizeLabel(label)+".png")
	if err := writePNG(path, RenderContourOverlay(r, points)); err != nil {
		return "", err
	}
	return path, nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
