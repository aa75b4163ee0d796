package geometry

import (
	"math"

	"cad-editor/internal/cad/models"
)

const (
	// centroidEpsilon is the smallest |2A| that still has a centroid.
	centroidEpsilon = 1e-12
	bulgeEpsilon    = 1e-12
)

// Perimeter sums the edge lengths of a ring, closing edge included.
func Perimeter(pts []models.Point) float64 {
	n := len(pts)
	var per float64
	for i := range pts {
		per += Distance(pts[i], pts[(i+1)%n])
	}
	return per
}

// Centroid returns the area-weighted centroid of a simple polygon. It is
// absent when the signed area collapses to zero.
func Centroid(pts []models.Point) (models.Point, bool) {
	n := len(pts)
	if n < 3 {
		return models.Point{}, false
	}
	var a2, cx, cy float64
	for i := range pts {
		x1, y1 := pts[i].X, pts[i].Y
		x2, y2 := pts[(i+1)%n].X, pts[(i+1)%n].Y
		cross := x1*y2 - x2*y1
		a2 += cross
		cx += (x1 + x2) * cross
		cy += (y1 + y2) * cross
	}
	if math.Abs(a2) < centroidEpsilon || math.IsNaN(a2) {
		return models.Point{}, false
	}
	return finitePoint(models.Point{X: cx / (3 * a2), Y: cy / (3 * a2)})
}

// Distance is the planar Euclidean distance; Z is ignored.
func Distance(p1, p2 models.Point) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Project measures p against the line through a and b. It returns the
// perpendicular distance to the infinite line and the signed scalar
// projection from a toward b. ok is false when a and b coincide.
func Project(p, a, b models.Point) (perp, along float64, ok bool) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return 0, 0, false
	}
	vx := p.X - a.X
	vy := p.Y - a.Y
	perp = math.Abs(dx*vy-dy*vx) / length
	along = (vx*dx + vy*dy) / length
	return perp, along, true
}

// SegmentBox is the axis-aligned box spanned by two points.
func SegmentBox(a, b models.Point) models.BBox {
	return models.BBox{
		XMin: math.Min(a.X, b.X),
		YMin: math.Min(a.Y, b.Y),
		XMax: math.Max(a.X, b.X),
		YMax: math.Max(a.Y, b.Y),
	}
}

// ============================================================
// Helpers
// ============================================================

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func finitePoint(p models.Point) (models.Point, bool) {
	if _, ok := finite(p.X); !ok {
		return models.Point{}, false
	}
	if _, ok := finite(p.Y); !ok {
		return models.Point{}, false
	}
	return p, true
}

func finiteBox(b models.BBox) (models.BBox, bool) {
	for _, v := range [...]float64{b.XMin, b.YMin, b.XMax, b.YMax} {
		if _, ok := finite(v); !ok {
			return models.BBox{}, false
		}
	}
	return b, true
}
