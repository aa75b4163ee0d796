package geometry

import (
	"math"

	"cad-editor/internal/cad/models"
)

// ============================================================
// Area
// ============================================================

// Area returns the enclosed area of a closed polyline (arc segments
// included), a circle, or a hatch carrying a precomputed area.
func Area(e *models.Entity) (float64, bool) {
	if e == nil {
		return 0, false
	}
	switch e.Kind {
	case models.KindPolyline:
		return polylineArea(e.Polyline)
	case models.KindCircle:
		if e.Circle == nil || !(e.Circle.Radius > 0) {
			return 0, false
		}
		r := e.Circle.Radius
		return finite(math.Pi * r * r)
	case models.KindHatch:
		if e.Hatch == nil || e.Hatch.Area == nil {
			return 0, false
		}
		return finite(*e.Hatch.Area)
	case models.KindLine, models.KindText, models.KindOther:
		return 0, false
	}
	return 0, false
}

func polylineArea(p *models.PolylineGeom) (float64, bool) {
	if p == nil || !p.Closed || len(p.Vertices) < 3 {
		return 0, false
	}
	vs := p.Vertices
	n := len(vs)

	var cross float64
	for i := range vs {
		a, b := vs[i], vs[(i+1)%n]
		cross += a.X*b.Y - b.X*a.Y
	}
	signed := cross / 2

	for i, v := range vs {
		if math.Abs(v.Bulge) <= bulgeEpsilon {
			continue
		}
		signed += arcSegmentArea(v, vs[(i+1)%n], v.Bulge)
	}
	return finite(math.Abs(signed))
}

// arcSegmentArea is the signed area between the chord a→b and the arc with
// the given bulge. The sign follows the bulge, so a counter-clockwise arc on
// a counter-clockwise ring adds area and a clockwise one removes it.
func arcSegmentArea(a, b models.Vertex, bulge float64) float64 {
	chord := math.Hypot(b.X-a.X, b.Y-a.Y)
	if chord == 0 {
		return 0
	}
	theta := 4 * math.Atan(bulge)
	r := chord / (2 * math.Sin(theta/2))
	return r * r / 2 * (theta - math.Sin(theta))
}

// ============================================================
// Bounding box
// ============================================================

// BoundingBox returns the axis-aligned extents of lines, polylines and
// circles. Polyline boxes cover the vertices only; arc sag beyond a chord
// is not included.
func BoundingBox(e *models.Entity) (models.BBox, bool) {
	if e == nil {
		return models.BBox{}, false
	}
	switch e.Kind {
	case models.KindLine:
		if e.Line == nil {
			return models.BBox{}, false
		}
		s, t := e.Line.Start, e.Line.End
		return finiteBox(models.BBox{
			XMin: math.Min(s.X, t.X),
			YMin: math.Min(s.Y, t.Y),
			XMax: math.Max(s.X, t.X),
			YMax: math.Max(s.Y, t.Y),
		})
	case models.KindPolyline:
		if e.Polyline == nil || len(e.Polyline.Vertices) == 0 {
			return models.BBox{}, false
		}
		vs := e.Polyline.Vertices
		box := models.BBox{XMin: vs[0].X, YMin: vs[0].Y, XMax: vs[0].X, YMax: vs[0].Y}
		for _, v := range vs[1:] {
			box.XMin = math.Min(box.XMin, v.X)
			box.YMin = math.Min(box.YMin, v.Y)
			box.XMax = math.Max(box.XMax, v.X)
			box.YMax = math.Max(box.YMax, v.Y)
		}
		return finiteBox(box)
	case models.KindCircle:
		if e.Circle == nil || !(e.Circle.Radius > 0) {
			return models.BBox{}, false
		}
		c, r := e.Circle.Center, e.Circle.Radius
		return finiteBox(models.BBox{XMin: c.X - r, YMin: c.Y - r, XMax: c.X + r, YMax: c.Y + r})
	case models.KindText, models.KindHatch, models.KindOther:
		return models.BBox{}, false
	}
	return models.BBox{}, false
}

// ============================================================
// Center
// ============================================================

// Center returns the representative position used by spatial queries.
// Hatches and other kinds have no center and are left out of queries.
func Center(e *models.Entity) (models.Point, bool) {
	if e == nil {
		return models.Point{}, false
	}
	switch e.Kind {
	case models.KindText:
		if e.Text == nil {
			return models.Point{}, false
		}
		return finitePoint(models.Point{X: e.Text.Insert.X, Y: e.Text.Insert.Y})
	case models.KindPolyline:
		if e.Polyline == nil || len(e.Polyline.Vertices) == 0 {
			return models.Point{}, false
		}
		var sumX, sumY float64
		for _, v := range e.Polyline.Vertices {
			sumX += v.X
			sumY += v.Y
		}
		n := float64(len(e.Polyline.Vertices))
		return finitePoint(models.Point{X: sumX / n, Y: sumY / n})
	case models.KindLine:
		if e.Line == nil {
			return models.Point{}, false
		}
		s, t := e.Line.Start, e.Line.End
		return finitePoint(models.Point{X: (s.X + t.X) / 2, Y: (s.Y + t.Y) / 2})
	case models.KindCircle:
		if e.Circle == nil {
			return models.Point{}, false
		}
		return finitePoint(models.Point{X: e.Circle.Center.X, Y: e.Circle.Center.Y})
	case models.KindHatch, models.KindOther:
		return models.Point{}, false
	}
	return models.Point{}, false
}

// PolygonVertices returns the XY ring of a closed, straight-edged polyline
// with at least three vertices. Arc polylines are refused because
// perimeter and centroid over their chords would be wrong.
func PolygonVertices(e *models.Entity) ([]models.Point, bool) {
	if e == nil || e.Kind != models.KindPolyline || e.Polyline == nil {
		return nil, false
	}
	p := e.Polyline
	if !p.Closed || p.HasArcs() || len(p.Vertices) < 3 {
		return nil, false
	}
	pts := make([]models.Point, len(p.Vertices))
	for i, v := range p.Vertices {
		pts[i] = models.Point{X: v.X, Y: v.Y}
	}
	return pts, true
}
