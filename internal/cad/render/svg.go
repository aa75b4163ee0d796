// Package render draws a document as an SVG preview.
package render

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"cad-editor/internal/cad/models"
	"cad-editor/internal/cad/summary"
)

// ============================================================
// Renderer
// ============================================================

const (
	defaultMargin = 10.0
	fallbackSize  = 1000.0
	fallbackColor = "#888888"
	defaultTextH  = 2.5
)

// aci maps the standard AutoCAD colors. 7 draws black on a white canvas.
var aci = map[int]string{
	1: "#FF0000",
	2: "#FFFF00",
	3: "#00FF00",
	4: "#00FFFF",
	5: "#0000FF",
	6: "#FF00FF",
	7: "#000000",
	8: "#808080",
	9: "#C0C0C0",
}

type Renderer struct {
	Margin            float64
	IncludePaperspace bool
}

func NewRenderer() *Renderer {
	return &Renderer{Margin: defaultMargin}
}

// Render собирает SVG из документа. Drawing coordinates are y-up; the
// content group flips them so the preview is not mirrored.
func (r *Renderer) Render(doc *models.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	entities := make([]models.Entity, 0, len(doc.Entities))
	for _, e := range doc.Entities {
		if r.IncludePaperspace || e.InModelSpace() {
			entities = append(entities, e)
		}
	}

	layerColors := make(map[string]int, len(doc.Layers))
	for _, l := range doc.Layers {
		layerColors[l.Name] = l.Color
	}

	var elements []string
	for i := range entities {
		e := &entities[i]
		if el, ok := r.element(e, stroke(e, layerColors)); ok {
			elements = append(elements, el)
		}
	}

	minX, minY, width, height := 0.0, 0.0, fallbackSize, fallbackSize
	if box := summary.Extents(entities); box != nil {
		minX, minY = box.XMin-r.Margin, box.YMin-r.Margin
		width, height = box.Width()+2*r.Margin, box.Height()+2*r.Margin
	}
	// Inside the flipped group y maps to -y, so the top edge of the view
	// is the negated maximum y.
	top := -(minY + height)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(minX), formatFloat(top), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")
	builder.WriteString(`  <g transform="scale(1,-1)" fill="none" stroke-width="1">` + "\n")

	for _, elem := range elements {
		builder.WriteString("    ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString("  </g>\n")
	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) element(e *models.Entity, color string) (string, bool) {
	id := html.EscapeString(e.Handle)
	switch e.Kind {
	case models.KindLine:
		if e.Line == nil {
			return "", false
		}
		return fmt.Sprintf(`<line id="%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" vector-effect="non-scaling-stroke" />`,
			id, formatFloat(e.Line.Start.X), formatFloat(e.Line.Start.Y),
			formatFloat(e.Line.End.X), formatFloat(e.Line.End.Y), color), true
	case models.KindPolyline:
		if e.Polyline == nil || len(e.Polyline.Vertices) < 2 {
			return "", false
		}
		return fmt.Sprintf(`<path id="%s" d="%s" stroke="%s" vector-effect="non-scaling-stroke" />`,
			id, polylinePath(e.Polyline), color), true
	case models.KindCircle:
		if e.Circle == nil || !(e.Circle.Radius > 0) {
			return "", false
		}
		return fmt.Sprintf(`<circle id="%s" cx="%s" cy="%s" r="%s" stroke="%s" vector-effect="non-scaling-stroke" />`,
			id, formatFloat(e.Circle.Center.X), formatFloat(e.Circle.Center.Y), formatFloat(e.Circle.Radius), color), true
	case models.KindText:
		if e.Text == nil {
			return "", false
		}
		content := models.CleanText(e.Text.Plain())
		if content == "" {
			return "", false
		}
		h := defaultTextH
		if e.Text.Height != nil && *e.Text.Height > 0 {
			h = *e.Text.Height
		}
		// Text is flipped back so glyphs read upright.
		return fmt.Sprintf(`<text id="%s" x="%s" y="%s" font-size="%s" fill="%s" transform="scale(1,-1)">%s</text>`,
			id, formatFloat(e.Text.Insert.X), formatFloat(-e.Text.Insert.Y), formatFloat(h), color,
			html.EscapeString(content)), true
	case models.KindHatch, models.KindOther:
		return "", false
	}
	return "", false
}

// polylinePath emits straight segments as L and bulged segments as SVG
// arcs. A positive bulge turns counter-clockwise, which is the positive
// sweep direction in drawing coordinates.
func polylinePath(p *models.PolylineGeom) string {
	vs := p.Vertices
	var path strings.Builder
	path.WriteString("M ")
	path.WriteString(formatVertex(vs[0]))

	segments := len(vs) - 1
	if p.Closed {
		segments = len(vs)
	}
	for i := 0; i < segments; i++ {
		a, b := vs[i], vs[(i+1)%len(vs)]
		path.WriteString(segment(a, b))
	}
	if p.Closed {
		path.WriteString(" Z")
	}
	return path.String()
}

func segment(a, b models.Vertex) string {
	chord := math.Hypot(b.X-a.X, b.Y-a.Y)
	if math.Abs(a.Bulge) < 1e-12 || chord == 0 {
		return " L " + formatVertex(b)
	}
	theta := 4 * math.Atan(a.Bulge)
	radius := chord / (2 * math.Abs(math.Sin(theta/2)))
	large, sweep := 0, 0
	if math.Abs(theta) > math.Pi {
		large = 1
	}
	if a.Bulge > 0 {
		sweep = 1
	}
	return fmt.Sprintf(" A %s %s 0 %d %d %s", formatFloat(radius), formatFloat(radius), large, sweep, formatVertex(b))
}

// ============================================================
// Formatting helpers
// ============================================================

// stroke resolves BYLAYER and BYBLOCK to a concrete color.
func stroke(e *models.Entity, layerColors map[string]int) string {
	c := e.Color
	switch c {
	case models.ColorByLayer:
		c = layerColors[e.Layer]
	case models.ColorByBlock:
		c = 7
	}
	if hex, ok := aci[c]; ok {
		return hex
	}
	return fallbackColor
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatVertex(v models.Vertex) string {
	return formatFloat(v.X) + " " + formatFloat(v.Y)
}
