package spatial

import (
	"math"
	"sort"

	"cad-editor/internal/cad/collect"
	"cad-editor/internal/cad/geometry"
	"cad-editor/internal/cad/models"
)

// ============================================================
// Defaults
// ============================================================

const (
	// DefaultCorridorWidth is the default maximum perpendicular distance
	// from the centerline for Between.
	DefaultCorridorWidth = 100.0
	// DefaultAdjacentDistance is the default search radius for Adjacent.
	DefaultAdjacentDistance = 200.0

	// degenerateLength is the shortest centerline Between accepts.
	degenerateLength = 1e-3
)

// ============================================================
// Results & filters
// ============================================================

// Match is one entity returned by a query, with query-specific fields set.
type Match struct {
	models.EntityInfo
	Center                 models.Point `json:"center"`
	Distance               *float64     `json:"distance,omitempty"`
	DistanceFromCenterline *float64     `json:"distance_from_centerline,omitempty"`
	ProjectionAlongLine    *float64     `json:"projection_along_line,omitempty"`
}

// Filter restricts a scan by exact layer name and exact entity type
// (e.g. "LWPOLYLINE"). Empty fields match everything.
type Filter struct {
	Layer string `json:"layer,omitempty"`
	Type  string `json:"entity_type,omitempty"`
}

func (f Filter) match(e *models.Entity) bool {
	if f.Layer != "" && e.Layer != f.Layer {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	return true
}

// scan yields a Match for every model-space entity that passes the filter
// and has a center. Filters run before center computation.
func scan(doc *models.Document, f Filter, keep func(models.Point) bool) []Match {
	if doc == nil {
		return nil
	}
	return collect.All(doc.Entities, func(e *models.Entity) (Match, bool) {
		if !e.InModelSpace() || !f.match(e) {
			return Match{}, false
		}
		c, ok := geometry.Center(e)
		if !ok || !keep(c) {
			return Match{}, false
		}
		return Match{EntityInfo: e.Info(), Center: c}, true
	})
}

// ============================================================
// Queries
// ============================================================

// CenterOf resolves a handle and returns its center.
func CenterOf(doc *models.Document, handle string) (models.Point, bool) {
	if doc == nil {
		return models.Point{}, false
	}
	e, ok := doc.Entity(handle)
	if !ok {
		return models.Point{}, false
	}
	return geometry.Center(e)
}

// InRegion returns the entities whose center lies inside rect, edges included.
func InRegion(doc *models.Document, rect models.BBox, f Filter) []Match {
	return scan(doc, f, rect.Contains)
}

// NearPoint returns the entities whose center is within radius of p,
// nearest first. Ties keep document order.
func NearPoint(doc *models.Document, p models.Point, radius float64, f Filter) []Match {
	matches := scan(doc, f, func(c models.Point) bool {
		return geometry.Distance(c, p) <= radius
	})
	for i := range matches {
		d := geometry.Distance(matches[i].Center, p)
		matches[i].Distance = &d
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return *matches[i].Distance < *matches[j].Distance
	})
	return matches
}

// Adjacent is NearPoint around the reference entity's own center. The
// reference itself is never returned.
func Adjacent(doc *models.Document, handle string, maxDistance float64, f Filter) []Match {
	c, ok := CenterOf(doc, handle)
	if !ok {
		return nil
	}
	near := NearPoint(doc, c, maxDistance, f)
	out := near[:0]
	for _, m := range near {
		if m.Handle != handle {
			out = append(out, m)
		}
	}
	return out
}

// Between returns the entities inside the corridor joining the centers of
// a and b: lengthwise between the two centers and no further than maxPerp
// from the centerline. Results are sorted by distance from the centerline.
func Between(doc *models.Document, a, b, layer string, maxPerp float64) []Match {
	p1, ok1 := CenterOf(doc, a)
	p2, ok2 := CenterOf(doc, b)
	if !ok1 || !ok2 {
		return nil
	}
	length := geometry.Distance(p1, p2)
	if length < degenerateLength || math.IsNaN(length) {
		return nil
	}

	corridor := geometry.SegmentBox(p1, p2).Expand(maxPerp)
	candidates := InRegion(doc, corridor, Filter{Layer: layer})

	var out []Match
	for _, m := range candidates {
		if m.Handle == a || m.Handle == b {
			continue
		}
		perp, along, ok := geometry.Project(m.Center, p1, p2)
		if !ok || perp > maxPerp || along < 0 || along > length {
			continue
		}
		m.DistanceFromCenterline = &perp
		m.ProjectionAlongLine = &along
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceFromCenterline < *out[j].DistanceFromCenterline
	})
	return out
}

// Distance is the distance between two entity centers. It is absent when
// either handle is unknown or has no center.
func Distance(doc *models.Document, a, b string) (float64, bool) {
	p1, ok1 := CenterOf(doc, a)
	p2, ok2 := CenterOf(doc, b)
	if !ok1 || !ok2 {
		return 0, false
	}
	return geometry.Distance(p1, p2), true
}
