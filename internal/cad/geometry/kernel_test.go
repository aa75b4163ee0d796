package geometry

import (
	"math"
	"testing"

	"cad-editor/internal/cad/models"
)

func rectPolyline(closed bool) *models.Entity {
	return &models.Entity{
		Handle: "A1",
		Type:   "LWPOLYLINE",
		Kind:   models.KindPolyline,
		Polyline: &models.PolylineGeom{
			Closed: closed,
			Vertices: []models.Vertex{
				{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 0, Y: 5},
			},
		},
	}
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestArea_ClosedRectangle(t *testing.T) {
	area, ok := Area(rectPolyline(true))
	if !ok {
		t.Fatal("expected area for closed rectangle")
	}
	if !almost(area, 50) {
		t.Fatalf("area = %v, want 50", area)
	}

	pts, ok := PolygonVertices(rectPolyline(true))
	if !ok {
		t.Fatal("expected straight polygon vertices")
	}
	if per := Perimeter(pts); !almost(per, 30) {
		t.Fatalf("perimeter = %v, want 30", per)
	}
}

func TestArea_OpenPolylineIsAbsent(t *testing.T) {
	if _, ok := Area(rectPolyline(false)); ok {
		t.Fatal("open polyline must not have an area")
	}
	if _, ok := PolygonVertices(rectPolyline(false)); ok {
		t.Fatal("open polyline must not yield polygon vertices")
	}
}

func TestArea_ClockwiseOrderIsPositive(t *testing.T) {
	e := rectPolyline(true)
	vs := e.Polyline.Vertices
	for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
		vs[i], vs[j] = vs[j], vs[i]
	}
	area, ok := Area(e)
	if !ok || !almost(area, 50) {
		t.Fatalf("area = %v, %v; want 50, true", area, ok)
	}
}

func TestArea_TooFewVertices(t *testing.T) {
	e := &models.Entity{Kind: models.KindPolyline, Polyline: &models.PolylineGeom{
		Closed:   true,
		Vertices: []models.Vertex{{X: 0, Y: 0}, {X: 1, Y: 1}},
	}}
	if _, ok := Area(e); ok {
		t.Fatal("two-vertex polyline must not have an area")
	}
}

func TestArea_BulgeAddsSemicircle(t *testing.T) {
	// 10x10 square whose bottom edge is replaced by a semicircle bulging
	// outward (counter-clockwise ring, bulge 1 on the first segment).
	e := &models.Entity{Kind: models.KindPolyline, Polyline: &models.PolylineGeom{
		Closed: true,
		Vertices: []models.Vertex{
			{X: 0, Y: 0, Bulge: 1}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
		},
	}}
	area, ok := Area(e)
	if !ok {
		t.Fatal("expected arc-aware area")
	}
	want := 100 + math.Pi*25/2
	if math.Abs(area-want) > 1e-9 {
		t.Fatalf("area = %v, want %v", area, want)
	}

	// Negative bulge on the same segment cuts the semicircle out instead.
	e.Polyline.Vertices[0].Bulge = -1
	area, ok = Area(e)
	want = 100 - math.Pi*25/2
	if !ok || math.Abs(area-want) > 1e-9 {
		t.Fatalf("area = %v, %v; want %v", area, ok, want)
	}

	if _, ok := PolygonVertices(e); ok {
		t.Fatal("arc polyline must not be treated as a straight polygon")
	}
}

func TestArea_CircleAndHatch(t *testing.T) {
	c := &models.Entity{Kind: models.KindCircle, Circle: &models.CircleGeom{Radius: 2}}
	if a, ok := Area(c); !ok || !almost(a, 4*math.Pi) {
		t.Fatalf("circle area = %v, %v", a, ok)
	}

	zero := &models.Entity{Kind: models.KindCircle, Circle: &models.CircleGeom{Radius: 0}}
	if _, ok := Area(zero); ok {
		t.Fatal("zero radius circle must not have an area")
	}

	v := 12.5
	h := &models.Entity{Kind: models.KindHatch, Hatch: &models.HatchGeom{Area: &v}}
	if a, ok := Area(h); !ok || a != 12.5 {
		t.Fatalf("hatch area = %v, %v", a, ok)
	}

	inf := math.Inf(1)
	h.Hatch.Area = &inf
	if _, ok := Area(h); ok {
		t.Fatal("non-finite hatch area must be absent")
	}

	h.Hatch.Area = nil
	h.Hatch.Loops = 3
	if _, ok := Area(h); ok {
		t.Fatal("hatch without precomputed area must be absent")
	}
}

func TestArea_MissingPayloadIsAbsent(t *testing.T) {
	for _, k := range []models.Kind{models.KindPolyline, models.KindCircle, models.KindHatch, models.KindLine, models.KindText, models.KindOther} {
		e := &models.Entity{Kind: k}
		if _, ok := Area(e); ok {
			t.Errorf("kind %s without payload returned an area", k)
		}
		if _, ok := BoundingBox(e); ok {
			t.Errorf("kind %s without payload returned a bbox", k)
		}
		if _, ok := Center(e); ok {
			t.Errorf("kind %s without payload returned a center", k)
		}
	}
}

func TestCentroid(t *testing.T) {
	square := []models.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	c, ok := Centroid(square)
	if !ok || !almost(c.X, 5) || !almost(c.Y, 5) {
		t.Fatalf("centroid = %+v, %v; want (5,5)", c, ok)
	}

	collinear := []models.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}
	if _, ok := Centroid(collinear); ok {
		t.Fatal("collinear polygon must not have a centroid")
	}
}

func TestCentroidDiffersFromCenter(t *testing.T) {
	// An L-shaped room: mean of vertices and area centroid disagree.
	e := &models.Entity{Kind: models.KindPolyline, Polyline: &models.PolylineGeom{
		Closed: true,
		Vertices: []models.Vertex{
			{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 20}, {X: 0, Y: 20},
		},
	}}
	center, ok := Center(e)
	if !ok {
		t.Fatal("expected center")
	}
	pts, _ := PolygonVertices(e)
	centroid, ok := Centroid(pts)
	if !ok {
		t.Fatal("expected centroid")
	}
	if almost(center.X, centroid.X) && almost(center.Y, centroid.Y) {
		t.Fatalf("center %+v and centroid %+v should differ", center, centroid)
	}
}

func TestBoundingBox(t *testing.T) {
	tests := []struct {
		name string
		e    *models.Entity
		want models.BBox
		ok   bool
	}{
		{
			name: "line",
			e:    &models.Entity{Kind: models.KindLine, Line: &models.LineGeom{Start: models.Point{X: 5, Y: -1}, End: models.Point{X: -2, Y: 3}}},
			want: models.BBox{XMin: -2, YMin: -1, XMax: 5, YMax: 3},
			ok:   true,
		},
		{
			name: "polyline",
			e:    rectPolyline(false),
			want: models.BBox{XMin: 0, YMin: 0, XMax: 10, YMax: 5},
			ok:   true,
		},
		{
			name: "circle",
			e:    &models.Entity{Kind: models.KindCircle, Circle: &models.CircleGeom{Center: models.Point{X: 1, Y: 2}, Radius: 3}},
			want: models.BBox{XMin: -2, YMin: -1, XMax: 4, YMax: 5},
			ok:   true,
		},
		{
			name: "text",
			e:    &models.Entity{Kind: models.KindText, Text: &models.TextGeom{Value: "A"}},
		},
		{
			name: "hatch",
			e:    &models.Entity{Kind: models.KindHatch, Hatch: &models.HatchGeom{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BoundingBox(tt.e)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("bbox = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		name string
		e    *models.Entity
		want models.Point
		ok   bool
	}{
		{
			name: "text uses insertion point",
			e:    &models.Entity{Kind: models.KindText, Text: &models.TextGeom{Insert: models.Point{X: 3, Y: 4, Z: 9}}},
			want: models.Point{X: 3, Y: 4},
			ok:   true,
		},
		{
			name: "polyline uses vertex mean",
			e:    rectPolyline(true),
			want: models.Point{X: 5, Y: 2.5},
			ok:   true,
		},
		{
			name: "line uses midpoint",
			e:    &models.Entity{Kind: models.KindLine, Line: &models.LineGeom{Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 4, Y: 2}}},
			want: models.Point{X: 2, Y: 1},
			ok:   true,
		},
		{
			name: "circle uses its center",
			e:    &models.Entity{Kind: models.KindCircle, Circle: &models.CircleGeom{Center: models.Point{X: -1, Y: 7}, Radius: 1}},
			want: models.Point{X: -1, Y: 7},
			ok:   true,
		},
		{
			name: "hatch has no center",
			e:    &models.Entity{Kind: models.KindHatch, Hatch: &models.HatchGeom{}},
		},
		{
			name: "insert has no center",
			e:    &models.Entity{Kind: models.KindOther, Insert: &models.InsertGeom{Block: "DOOR"}},
		},
		{
			name: "nan coordinates are absent",
			e:    &models.Entity{Kind: models.KindLine, Line: &models.LineGeom{Start: models.Point{X: math.NaN()}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Center(tt.e)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (!almost(got.X, tt.want.X) || !almost(got.Y, tt.want.Y)) {
				t.Fatalf("center = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProject(t *testing.T) {
	a := models.Point{X: 0, Y: 0}
	b := models.Point{X: 100, Y: 0}

	perp, along, ok := Project(models.Point{X: 50, Y: 5}, a, b)
	if !ok || !almost(perp, 5) || !almost(along, 50) {
		t.Fatalf("Project = %v, %v, %v; want 5, 50, true", perp, along, ok)
	}

	_, along, _ = Project(models.Point{X: 120, Y: 0}, a, b)
	if !almost(along, 120) {
		t.Fatalf("along = %v, want 120", along)
	}

	if _, _, ok := Project(a, a, a); ok {
		t.Fatal("degenerate line must not project")
	}
}
