package summary

import (
	"time"

	"cad-editor/internal/cad/models"
)

// ============================================================
// Summary record
// ============================================================

type Summary struct {
	Meta               Meta              `json:"meta"`
	Drawing            Drawing           `json:"drawing"`
	Layers             []LayerSummary    `json:"layers"`
	Blocks             []BlockSummary    `json:"blocks"`
	TextIndex          Index[TextItem]   `json:"text_index"`
	BoundaryCandidates Index[Candidate]  `json:"boundary_candidates"`
	Notes              []string          `json:"notes"`
}

type Meta struct {
	Source            string    `json:"source_file"`
	GeneratedAt       time.Time `json:"generated_at_utc"`
	Version           string    `json:"dxf_version,omitempty"`
	Units             int       `json:"insunits_header_code"`
	IncludePaperspace bool      `json:"include_paperspace"`
	Digest            string    `json:"blake3,omitempty"`
}

type Drawing struct {
	BBox               *models.BBox `json:"bbox_xy"`
	Layouts            []string     `json:"layout_names"`
	EntityCountsByType []TypeCount  `json:"entity_counts_by_type"`
	TotalEntities      int          `json:"total_entities"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// LayerSummary merges layer-table properties with entity counts. Layers
// referenced by entities but missing from the table carry only a name.
type LayerSummary struct {
	Name          string      `json:"name"`
	Defined       bool        `json:"defined"`
	Color         *int        `json:"color,omitempty"`
	Linetype      string      `json:"linetype,omitempty"`
	Off           bool        `json:"is_off"`
	Frozen        bool        `json:"is_frozen"`
	Locked        bool        `json:"is_locked"`
	EntityCounts  []TypeCount `json:"entity_counts"`
	TotalEntities int         `json:"total_entities"`
}

type BlockSummary struct {
	Name                  string `json:"name"`
	DefinitionEntityCount *int   `json:"definition_entity_count"`
	InsertCount           int    `json:"insert_count"`
}

// Index is a capped list. Truncated is set once Count reaches the cap.
type Index[T any] struct {
	Count     int  `json:"count"`
	Truncated bool `json:"truncated"`
	Items     []T  `json:"items"`
}

type TextItem struct {
	models.EntityInfo
	Text     string       `json:"text"`
	Insert   models.Point `json:"insert"`
	Height   *float64     `json:"height,omitempty"`
	Rotation *float64     `json:"rotation,omitempty"`
	Layout   string       `json:"layout"`
}

// Candidate is a closed polyline or hatch that may outline a room.
type Candidate struct {
	models.EntityInfo
	Layout      string        `json:"layout"`
	Closed      bool          `json:"is_closed"`
	VertexCount *int          `json:"vertex_count,omitempty"`
	Area        *float64      `json:"area"`
	Perimeter   *float64      `json:"perimeter,omitempty"`
	Centroid    *models.Point `json:"centroid_xy,omitempty"`
	BBox        *models.BBox  `json:"bbox"`
}
