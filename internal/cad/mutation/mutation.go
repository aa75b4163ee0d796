// Package mutation applies the three supported edits to an in-memory
// document. Persisting the result is the caller's job; every function here
// either changes the document and returns nil or leaves it untouched and
// returns an error.
package mutation

import (
	"fmt"

	"cad-editor/internal/cad/models"
)

const (
	minColor = 1
	maxColor = 255
)

// LayerColorResult records a completed recolor.
type LayerColorResult struct {
	Layer             string `json:"layer"`
	Color             int    `json:"color"`
	EntitiesRecolored int    `json:"entities_recolored"`
	OutputPath        string `json:"output_path,omitempty"`
}

// TextEdit is the audit record of a text replacement.
type TextEdit struct {
	Handle     string `json:"handle"`
	OldText    string `json:"old_text"`
	NewText    string `json:"new_text"`
	OutputPath string `json:"output_path"`
}

// SetLayerColor sets the layer's color and forces the same color onto every
// entity on that exact layer, including ones that were BYLAYER. Entities
// inside block definitions are left alone.
func SetLayerColor(doc *models.Document, layer string, color int) (*LayerColorResult, error) {
	if color < minColor || color > maxColor {
		return nil, fmt.Errorf("color %d outside %d..%d: %w", color, minColor, maxColor, models.ErrInvalidArgument)
	}
	l, ok := doc.Layer(layer)
	if !ok {
		return nil, fmt.Errorf("layer %q: %w", layer, models.ErrNotFound)
	}
	l.Color = color

	n := 0
	for i := range doc.Entities {
		if doc.Entities[i].Layer == layer {
			doc.Entities[i].Color = color
			n++
		}
	}
	return &LayerColorResult{Layer: layer, Color: color, EntitiesRecolored: n}, nil
}

// DeleteEntity removes the entity with the given handle.
func DeleteEntity(doc *models.Document, handle string) error {
	if !doc.Remove(handle) {
		return fmt.Errorf("entity %s: %w", handle, models.ErrNotFound)
	}
	return nil
}

// EditText replaces the content of a TEXT or MTEXT entity. The old text in
// the audit record is the plain text with formatting codes removed; the new
// value is stored verbatim and marked as plain.
func EditText(doc *models.Document, handle, text string) (*TextEdit, error) {
	e, ok := doc.Entity(handle)
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", handle, models.ErrNotFound)
	}
	if e.Kind != models.KindText || e.Text == nil {
		return nil, fmt.Errorf("entity %s is %s: %w", handle, e.Type, models.ErrWrongEntityKind)
	}

	old := e.Text.Plain()
	e.Text.Value = text
	e.Text.Rich = false
	return &TextEdit{Handle: handle, OldText: old, NewText: text}, nil
}
