package models

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Vertex is a polyline vertex. Bulge describes the segment that starts at
// this vertex: 0 is a straight edge, anything else a circular arc whose
// included angle is 4*atan(bulge), positive meaning counter-clockwise.
type Vertex struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Bulge float64 `json:"bulge,omitempty"`
}

type BBox struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

func (b BBox) Width() float64  { return b.XMax - b.XMin }
func (b BBox) Height() float64 { return b.YMax - b.YMin }

func (b BBox) Center() Point {
	return Point{X: (b.XMin + b.XMax) / 2, Y: (b.YMin + b.YMax) / 2}
}

// Contains is inclusive on all four edges.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Union returns the smallest box covering both.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		XMin: min(b.XMin, o.XMin),
		YMin: min(b.YMin, o.YMin),
		XMax: max(b.XMax, o.XMax),
		YMax: max(b.YMax, o.YMax),
	}
}

// Expand grows the box by d on every side.
func (b BBox) Expand(d float64) BBox {
	return BBox{XMin: b.XMin - d, YMin: b.YMin - d, XMax: b.XMax + d, YMax: b.YMax + d}
}

// ============================================================
// Layers
// ============================================================

type Layer struct {
	Name       string `json:"name"`
	Color      int    `json:"color"`
	TrueColor  *int   `json:"true_color,omitempty"`
	Linetype   string `json:"linetype,omitempty"`
	Lineweight *int   `json:"lineweight,omitempty"`
	Plot       *bool  `json:"plot,omitempty"`
	Off        bool   `json:"is_off"`
	Frozen     bool   `json:"is_frozen"`
	Locked     bool   `json:"is_locked"`
}

// ============================================================
// Entities
// ============================================================

// Kind is the closed set of entity variants the geometry code knows about.
type Kind string

const (
	KindLine     Kind = "line"
	KindPolyline Kind = "polyline"
	KindCircle   Kind = "circle"
	KindText     Kind = "text"
	KindHatch    Kind = "hatch"
	KindOther    Kind = "other"
)

// ACI color values with special meaning.
const (
	ColorByBlock = 0
	ColorByLayer = 256
)

// ModelSpace is the layout name of the drawing's model space.
const ModelSpace = "Model"

type LineGeom struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

type PolylineGeom struct {
	Vertices []Vertex `json:"vertices"`
	Closed   bool     `json:"closed"`
}

// HasArcs reports whether any segment is an arc.
func (p *PolylineGeom) HasArcs() bool {
	for _, v := range p.Vertices {
		if v.Bulge > 1e-12 || v.Bulge < -1e-12 {
			return true
		}
	}
	return false
}

type CircleGeom struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// TextGeom covers single-line TEXT and formatted MTEXT. Rich marks a value
// that may contain inline formatting codes.
type TextGeom struct {
	Insert   Point    `json:"insert"`
	Value    string   `json:"value"`
	Rich     bool     `json:"rich,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
}

// Plain returns the display text with formatting codes removed.
func (t *TextGeom) Plain() string {
	if t.Rich {
		return PlainText(t.Value)
	}
	return t.Value
}

// HatchGeom keeps only what the codec precomputed; boundary paths are opaque.
type HatchGeom struct {
	Area  *float64 `json:"area,omitempty"`
	Loops int      `json:"loops,omitempty"`
}

type InsertGeom struct {
	Block string `json:"block"`
	Point Point  `json:"point"`
}

// Entity is a tagged variant: Kind selects which payload is set.
type Entity struct {
	Handle   string `json:"handle"`
	Type     string `json:"type"`
	Kind     Kind   `json:"kind"`
	Layer    string `json:"layer"`
	Color    int    `json:"color"`
	Linetype string `json:"linetype,omitempty"`
	Layout   string `json:"layout,omitempty"`

	Line     *LineGeom     `json:"line,omitempty"`
	Polyline *PolylineGeom `json:"polyline,omitempty"`
	Circle   *CircleGeom   `json:"circle,omitempty"`
	Text     *TextGeom     `json:"text,omitempty"`
	Hatch    *HatchGeom    `json:"hatch,omitempty"`
	Insert   *InsertGeom   `json:"insert,omitempty"`
}

// InModelSpace reports whether the entity belongs to model space.
func (e *Entity) InModelSpace() bool {
	return e.Layout == "" || e.Layout == ModelSpace
}

type Block struct {
	Name     string   `json:"name"`
	Entities []Entity `json:"entities"`
}

// ============================================================
// Document
// ============================================================

type Document struct {
	Version  string   `json:"version,omitempty"`
	Units    int      `json:"units,omitempty"`
	Layers   []Layer  `json:"layers"`
	Entities []Entity `json:"entities"`
	Blocks   []Block  `json:"blocks,omitempty"`
}

// Entity looks up an entity by handle.
func (d *Document) Entity(handle string) (*Entity, bool) {
	for i := range d.Entities {
		if d.Entities[i].Handle == handle {
			return &d.Entities[i], true
		}
	}
	return nil, false
}

// Layer looks up a layer by exact name.
func (d *Document) Layer(name string) (*Layer, bool) {
	for i := range d.Layers {
		if d.Layers[i].Name == name {
			return &d.Layers[i], true
		}
	}
	return nil, false
}

// Remove deletes the entity with the given handle and reports whether it existed.
func (d *Document) Remove(handle string) bool {
	for i := range d.Entities {
		if d.Entities[i].Handle == handle {
			d.Entities = append(d.Entities[:i], d.Entities[i+1:]...)
			return true
		}
	}
	return false
}

// KindOf maps a record type name to its geometry kind.
func KindOf(recordType string) Kind {
	switch recordType {
	case "LINE":
		return KindLine
	case "LWPOLYLINE", "POLYLINE":
		return KindPolyline
	case "CIRCLE":
		return KindCircle
	case "TEXT", "MTEXT":
		return KindText
	case "HATCH":
		return KindHatch
	}
	return KindOther
}
