package silhouette

import (
	"math"
	"sort"
)

// Vec2 is a 2D point. Depending on the pipeline stage it holds raster pixel
// coordinates or viewport pixel coordinates; nothing tags which.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// SortClockwise returns a copy of points ordered by ascending angle around
// (centerX, centerY). With Y growing downward this is a clockwise walk.
// Points sharing an angle keep their input order.
func SortClockwise(points []Vec2, centerX, centerY float64) []Vec2 {
	out := make([]Vec2, len(points))
	copy(out, points)

	angles := make([]float64, len(out))
	for i, p := range out {
		angles[i] = math.Atan2(p.Y-centerY, p.X-centerX)
	}
	sort.Stable(byAngle{points: out, angles: angles})
	return out
}

// byAngle sorts points and their precomputed angles together.
type byAngle struct {
	points []Vec2
	angles []float64
}

func (s byAngle) Len() int           { return len(s.points) }
func (s byAngle) Less(i, j int) bool { return s.angles[i] < s.angles[j] }
func (s byAngle) Swap(i, j int) {
	s.points[i], s.points[j] = s.points[j], s.points[i]
	s.angles[i], s.angles[j] = s.angles[j], s.angles[i]
}

// SimplifyPolygon reduces points with the Douglas-Peucker algorithm. A point
// survives when it lies farther than tolerance from the chord of its segment.
// Inputs of two points or fewer are returned unchanged. The result always
// ends with the last input point.
func SimplifyPolygon(points []Vec2, tolerance float64) []Vec2 {
	if len(points) <= 2 {
		return points
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	douglasPeucker(points, 0, len(points)-1, tolerance, keep)

	out := make([]Vec2, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

// douglasPeucker marks the points between start and end that must be kept.
// Ties on the maximum distance resolve to the lowest index.
func douglasPeucker(pts []Vec2, start, end int, tolerance float64, keep []bool) {
	if end <= start+1 {
		return
	}

	maxDist := 0.0
	index := -1
	a, b := pts[start], pts[end]
	for i := start + 1; i < end; i++ {
		d := segmentDistance(pts[i], a, b)
		if d > maxDist {
			maxDist = d
			index = i
		}
	}

	if index < 0 || maxDist <= tolerance {
		return
	}
	keep[index] = true
	douglasPeucker(pts, start, index, tolerance, keep)
	douglasPeucker(pts, index, end, tolerance, keep)
}

// segmentDistance returns the distance from p to the segment a-b. A
// degenerate segment measures the distance to its shared vertex.
func segmentDistance(p, a, b Vec2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	switch {
	case t < 0:
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	case t > 1:
		return math.Hypot(p.X-b.X, p.Y-b.Y)
	}
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// Polygon is a closed polygon; the last point connects back to the first.
type Polygon []Vec2

// Contains reports whether (x, y) lies inside the polygon using the even-odd
// rule. Works for concave outlines. Polygons with fewer than 3 points
// contain nothing.
func (p Polygon) Contains(x, y float64) bool {
	n := len(p)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := p[i], p[j]
		if (pi.Y > y) != (pj.Y > y) &&
			x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// Bounds returns the axis-aligned bounding rectangle of the polygon.
// An empty polygon has a zero Rect.
func (p Polygon) Bounds() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	minX, minY := p[0].X, p[0].Y
	maxX, maxY := minX, minY
	for _, v := range p[1:] {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
