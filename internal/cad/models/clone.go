package models

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Version:  d.Version,
		Units:    d.Units,
		Layers:   make([]Layer, len(d.Layers)),
		Entities: cloneEntities(d.Entities),
	}
	for i, l := range d.Layers {
		l.TrueColor = clonePtr(l.TrueColor)
		l.Lineweight = clonePtr(l.Lineweight)
		l.Plot = clonePtr(l.Plot)
		out.Layers[i] = l
	}
	if d.Blocks != nil {
		out.Blocks = make([]Block, len(d.Blocks))
		for i, b := range d.Blocks {
			out.Blocks[i] = Block{Name: b.Name, Entities: cloneEntities(b.Entities)}
		}
	}
	return out
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	if e.Line != nil {
		g := *e.Line
		e.Line = &g
	}
	if e.Polyline != nil {
		g := PolylineGeom{Closed: e.Polyline.Closed}
		g.Vertices = append([]Vertex(nil), e.Polyline.Vertices...)
		e.Polyline = &g
	}
	if e.Circle != nil {
		g := *e.Circle
		e.Circle = &g
	}
	if e.Text != nil {
		g := *e.Text
		g.Height = clonePtr(g.Height)
		g.Rotation = clonePtr(g.Rotation)
		e.Text = &g
	}
	if e.Hatch != nil {
		g := *e.Hatch
		g.Area = clonePtr(g.Area)
		e.Hatch = &g
	}
	if e.Insert != nil {
		g := *e.Insert
		e.Insert = &g
	}
	return e
}

func cloneEntities(src []Entity) []Entity {
	if src == nil {
		return nil
	}
	out := make([]Entity, len(src))
	for i, e := range src {
		out[i] = e.Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
