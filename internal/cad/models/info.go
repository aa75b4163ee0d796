package models

// EntityInfo is the common record returned by every listing or query.
type EntityInfo struct {
	Handle   string `json:"handle"`
	Type     string `json:"dxftype"`
	Layer    string `json:"layer"`
	Color    int    `json:"color"`
	Linetype string `json:"linetype,omitempty"`
}

// Info extracts the common record from an entity.
func (e *Entity) Info() EntityInfo {
	return EntityInfo{
		Handle:   e.Handle,
		Type:     e.Type,
		Layer:    e.Layer,
		Color:    e.Color,
		Linetype: e.Linetype,
	}
}
