package summary

import (
	"sort"
	"strings"
	"time"

	"cad-editor/internal/cad/collect"
	"cad-editor/internal/cad/geometry"
	"cad-editor/internal/cad/models"
)

const (
	DefaultMaxTextItems          = 5000
	DefaultMaxBoundaryCandidates = 5000

	unknownLayer = "UNKNOWN"
)

// housekeeping record types never contribute to drawing extents.
var housekeeping = map[string]struct{}{
	"XRECORD":           {},
	"DICTIONARY":        {},
	"ACAD_PROXY_ENTITY": {},
}

type Options struct {
	IncludePaperspace     bool
	MaxTextItems          int
	MaxBoundaryCandidates int

	// Source and Digest only feed the Meta block.
	Source string
	Digest string
	Now    func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxTextItems <= 0 {
		o.MaxTextItems = DefaultMaxTextItems
	}
	if o.MaxBoundaryCandidates <= 0 {
		o.MaxBoundaryCandidates = DefaultMaxBoundaryCandidates
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// ============================================================
// Builder
// ============================================================

// Build summarizes the document in a single pass. Entities whose attributes
// or geometry cannot be read are skipped; the summary is best-effort.
func Build(doc *models.Document, opts Options) *Summary {
	opts = opts.withDefaults()
	if doc == nil {
		doc = &models.Document{}
	}

	entities := selectEntities(doc.Entities, opts.IncludePaperspace)

	byType := map[string]int{}
	byLayer := map[string]map[string]int{}
	inserts := map[string]int{}
	texts := Index[TextItem]{Items: []TextItem{}}
	candidates := Index[Candidate]{Items: []Candidate{}}

	collect.Each(entities, func(e *models.Entity) bool {
		if e.Type == "" {
			return false
		}
		byType[e.Type]++
		layer := layerName(e)
		if byLayer[layer] == nil {
			byLayer[layer] = map[string]int{}
		}
		byLayer[layer][e.Type]++

		if e.Insert != nil && e.Insert.Block != "" {
			inserts[e.Insert.Block]++
		}
		if e.Kind == models.KindText && len(texts.Items) < opts.MaxTextItems {
			if item, ok := textItem(e); ok {
				texts.Items = append(texts.Items, item)
			}
		}
		if len(candidates.Items) < opts.MaxBoundaryCandidates {
			if c, ok := candidate(e); ok {
				candidates.Items = append(candidates.Items, c)
			}
		}
		return true
	})

	texts.Count = len(texts.Items)
	texts.Truncated = texts.Count >= opts.MaxTextItems
	candidates.Count = len(candidates.Items)
	candidates.Truncated = candidates.Count >= opts.MaxBoundaryCandidates

	total := 0
	for _, n := range byType {
		total += n
	}

	return &Summary{
		Meta: Meta{
			Source:            opts.Source,
			GeneratedAt:       opts.Now().UTC(),
			Version:           doc.Version,
			Units:             doc.Units,
			IncludePaperspace: opts.IncludePaperspace,
			Digest:            opts.Digest,
		},
		Drawing: Drawing{
			BBox:               Extents(entities),
			Layouts:            layoutNames(entities, opts.IncludePaperspace),
			EntityCountsByType: sortedCounts(byType),
			TotalEntities:      total,
		},
		Layers:             mergeLayers(byLayer, doc.Layers),
		Blocks:             blockInventory(doc.Blocks, inserts),
		TextIndex:          texts,
		BoundaryCandidates: candidates,
		Notes: []string{
			"Areas are computed only for closed polylines, circles and HATCH entities with a stored area.",
			"Polyline bounding boxes cover vertices only; arc sag is not included.",
			"This is a read-only summary - no modifications are performed.",
		},
	}
}

// Layers returns the model-space layer inventory: every layer that carries
// at least one entity, merged with its layer-table properties.
func Layers(doc *models.Document) []LayerSummary {
	if doc == nil {
		return []LayerSummary{}
	}
	byLayer := map[string]map[string]int{}
	for _, e := range selectEntities(doc.Entities, false) {
		if e.Type == "" {
			continue
		}
		layer := layerName(&e)
		if byLayer[layer] == nil {
			byLayer[layer] = map[string]int{}
		}
		byLayer[layer][e.Type]++
	}
	return mergeLayers(byLayer, doc.Layers)
}

// Extents aggregates the bounding boxes of all entities that have one.
func Extents(entities []models.Entity) *models.BBox {
	var box *models.BBox
	for i := range entities {
		e := &entities[i]
		if _, skip := housekeeping[e.Type]; skip {
			continue
		}
		b, ok := geometry.BoundingBox(e)
		if !ok {
			continue
		}
		if box == nil {
			box = &b
			continue
		}
		u := box.Union(b)
		box = &u
	}
	return box
}

// ============================================================
// Per-entity extraction
// ============================================================

func textItem(e *models.Entity) (TextItem, bool) {
	if e.Text == nil {
		return TextItem{}, false
	}
	content := models.CleanText(e.Text.Plain())
	if content == "" {
		return TextItem{}, false
	}
	return TextItem{
		EntityInfo: e.Info(),
		Text:       content,
		Insert:     e.Text.Insert,
		Height:     e.Text.Height,
		Rotation:   e.Text.Rotation,
		Layout:     layoutOf(e),
	}, true
}

func candidate(e *models.Entity) (Candidate, bool) {
	switch e.Kind {
	case models.KindPolyline:
		if e.Polyline == nil || !e.Polyline.Closed {
			return Candidate{}, false
		}
		c := Candidate{EntityInfo: e.Info(), Layout: layoutOf(e), Closed: true}
		c.Area = optional(geometry.Area(e))
		c.BBox = optional(geometry.BoundingBox(e))
		if pts, ok := geometry.PolygonVertices(e); ok {
			n := len(pts)
			per := geometry.Perimeter(pts)
			c.VertexCount = &n
			c.Perimeter = &per
			c.Centroid = optional(geometry.Centroid(pts))
		}
		return c, true
	case models.KindHatch:
		c := Candidate{EntityInfo: e.Info(), Layout: layoutOf(e)}
		c.Area = optional(geometry.Area(e))
		c.BBox = optional(geometry.BoundingBox(e))
		return c, true
	case models.KindLine, models.KindCircle, models.KindText, models.KindOther:
		return Candidate{}, false
	}
	return Candidate{}, false
}

func optional[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}

// ============================================================
// Aggregation helpers
// ============================================================

func selectEntities(all []models.Entity, includePaperspace bool) []models.Entity {
	if includePaperspace {
		return all
	}
	out := make([]models.Entity, 0, len(all))
	for _, e := range all {
		if e.InModelSpace() {
			out = append(out, e)
		}
	}
	return out
}

func layerName(e *models.Entity) string {
	if e.Layer == "" {
		return unknownLayer
	}
	return e.Layer
}

func layoutOf(e *models.Entity) string {
	if e.Layout == "" {
		return models.ModelSpace
	}
	return e.Layout
}

func layoutNames(entities []models.Entity, includePaperspace bool) []string {
	names := []string{models.ModelSpace}
	if !includePaperspace {
		return names
	}
	seen := map[string]bool{models.ModelSpace: true}
	for i := range entities {
		l := layoutOf(&entities[i])
		if !seen[l] {
			seen[l] = true
			names = append(names, l)
		}
	}
	return names
}

// sortedCounts orders a histogram by descending count, then type name.
func sortedCounts(counts map[string]int) []TypeCount {
	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

func mergeLayers(byLayer map[string]map[string]int, table []models.Layer) []LayerSummary {
	props := make(map[string]models.Layer, len(table))
	for _, l := range table {
		props[l.Name] = l
	}

	names := make([]string, 0, len(byLayer))
	for name := range byLayer {
		names = append(names, name)
	}
	sortFold(names)

	out := make([]LayerSummary, 0, len(names))
	for _, name := range names {
		counts := sortedCounts(byLayer[name])
		total := 0
		for _, c := range counts {
			total += c.Count
		}
		ls := LayerSummary{Name: name, EntityCounts: counts, TotalEntities: total}
		if l, ok := props[name]; ok {
			color := l.Color
			ls.Defined = true
			ls.Color = &color
			ls.Linetype = l.Linetype
			ls.Off = l.Off
			ls.Frozen = l.Frozen
			ls.Locked = l.Locked
		}
		out = append(out, ls)
	}
	return out
}

func blockInventory(blocks []models.Block, inserts map[string]int) []BlockSummary {
	defs := map[string]int{}
	for _, b := range blocks {
		if strings.HasPrefix(b.Name, "*") {
			continue
		}
		defs[b.Name] = len(b.Entities)
	}

	seen := map[string]bool{}
	var names []string
	for name := range defs {
		seen[name] = true
		names = append(names, name)
	}
	for name := range inserts {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sortFold(names)

	out := make([]BlockSummary, 0, len(names))
	for _, name := range names {
		b := BlockSummary{Name: name, InsertCount: inserts[name]}
		if n, ok := defs[name]; ok {
			b.DefinitionEntityCount = &n
		}
		out = append(out, b)
	}
	return out
}

// sortFold sorts case-insensitively with a case-sensitive tiebreak so the
// order is deterministic.
func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
}
