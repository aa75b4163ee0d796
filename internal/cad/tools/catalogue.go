// Package tools exposes the CAD service as a catalogue of agent tools with
// JSON arguments and JSON-ready results.
package tools

type Property struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

type Schema struct {
	Type       string              `json:"type" yaml:"type"`
	Properties map[string]Property `json:"properties" yaml:"properties"`
	Required   []string            `json:"required" yaml:"required,omitempty"`
}

type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"input_schema"`
}

func object(required []string, props map[string]Property) Schema {
	if props == nil {
		props = map[string]Property{}
	}
	if required == nil {
		required = []string{}
	}
	return Schema{Type: "object", Properties: props, Required: required}
}

func str(desc string) Property { return Property{Type: "string", Description: desc} }
func num(desc string) Property { return Property{Type: "number", Description: desc} }
func integer(desc string) Property {
	return Property{Type: "integer", Description: desc}
}

var (
	layerFilter = str("Optional: filter by layer")
	typeFilter  = str("Optional: filter by entity type")
	outputPath  = str("Location to save the modified document; defaults to overwriting the source")
)

// Catalogue lists every tool in a stable order.
var Catalogue = []Tool{
	{
		Name:        "list_layers",
		Description: "List all layers in the drawing with their entity counts and properties.",
		InputSchema: object(nil, nil),
	},
	{
		Name:        "find_entities_by_layer",
		Description: "Find all entities on a specific layer, optionally filtered by entity type (LINE, LWPOLYLINE, TEXT, etc.).",
		InputSchema: object([]string{"layer_pattern"}, map[string]Property{
			"layer_pattern": str("Exact layer name"),
			"entity_type":   str("Optional: filter by entity type (LINE, LWPOLYLINE, TEXT, MTEXT, HATCH, etc.)"),
		}),
	},
	{
		Name:        "get_entity_info",
		Description: "Get detailed information about a specific entity by its handle.",
		InputSchema: object([]string{"handle"}, map[string]Property{
			"handle": str("Entity handle (hex string like '88F')"),
		}),
	},
	{
		Name:        "get_area",
		Description: "Calculate the area of a closed entity (LWPOLYLINE, POLYLINE, HATCH, CIRCLE).",
		InputSchema: object([]string{"handle"}, map[string]Property{
			"handle": str("Entity handle"),
		}),
	},
	{
		Name:        "color_layer",
		Description: "Change the color of a layer and of every entity on it. Saves the document.",
		InputSchema: object([]string{"layer_name", "color"}, map[string]Property{
			"layer_name":  str("Layer name to recolor"),
			"color":       integer("ACI color number (1=red, 2=yellow, 3=green, 4=cyan, 5=blue, 6=magenta, 7=white/black)"),
			"output_path": outputPath,
		}),
	},
	{
		Name:        "delete_entity",
		Description: "Delete a specific entity from the drawing. Saves the document.",
		InputSchema: object([]string{"handle"}, map[string]Property{
			"handle":      str("Entity handle to delete"),
			"output_path": outputPath,
		}),
	},
	{
		Name:        "edit_text",
		Description: "Edit text content of a TEXT or MTEXT entity. Use this to rename room labels, change annotations, etc.",
		InputSchema: object([]string{"handle", "new_text"}, map[string]Property{
			"handle":      str("Entity handle of the TEXT or MTEXT entity to edit"),
			"new_text":    str("New text content to set"),
			"output_path": outputPath,
		}),
	},
	{
		Name:        "get_entity_center",
		Description: "Get the center point of an entity as (x, y) coordinates.",
		InputSchema: object([]string{"handle"}, map[string]Property{
			"handle": str("Entity handle"),
		}),
	},
	{
		Name:        "get_entity_bounds",
		Description: "Get the bounding box of an entity (xmin, ymin, xmax, ymax, width, height, center).",
		InputSchema: object([]string{"handle"}, map[string]Property{
			"handle": str("Entity handle"),
		}),
	},
	{
		Name:        "calculate_distance",
		Description: "Calculate the distance between the centers of two entities.",
		InputSchema: object([]string{"handle1", "handle2"}, map[string]Property{
			"handle1": str("First entity handle"),
			"handle2": str("Second entity handle"),
		}),
	},
	{
		Name:        "find_entities_near_point",
		Description: "Find all entities within a radius of a specific point. Useful for finding entities near a location.",
		InputSchema: object([]string{"x", "y", "radius"}, map[string]Property{
			"x":             num("X coordinate of center point"),
			"y":             num("Y coordinate of center point"),
			"radius":        num("Search radius"),
			"layer_pattern": layerFilter,
			"entity_type":   typeFilter,
		}),
	},
	{
		Name:        "find_entities_in_region",
		Description: "Find all entities within a rectangular region (top, bottom, left, right of the floor plan).",
		InputSchema: object([]string{"xmin", "ymin", "xmax", "ymax"}, map[string]Property{
			"xmin":          num("Left edge of region"),
			"ymin":          num("Bottom edge of region"),
			"xmax":          num("Right edge of region"),
			"ymax":          num("Top edge of region"),
			"layer_pattern": layerFilter,
			"entity_type":   typeFilter,
		}),
	},
	{
		Name:        "find_entities_between",
		Description: "Find entities spatially between two reference entities, such as the walls between two rooms.",
		InputSchema: object([]string{"handle1", "handle2"}, map[string]Property{
			"handle1":                str("First entity handle (e.g., first room)"),
			"handle2":                str("Second entity handle (e.g., second room)"),
			"layer_pattern":          str("Optional: filter by layer (e.g., 'A-WALL' for walls)"),
			"max_distance_from_line": num("Maximum perpendicular distance from centerline (default: 100)"),
		}),
	},
	{
		Name:        "find_adjacent_entities",
		Description: "Find entities adjacent to (near) a given entity. Useful for finding neighboring rooms.",
		InputSchema: object([]string{"handle"}, map[string]Property{
			"handle":        str("Reference entity handle"),
			"max_distance":  num("Maximum distance to consider adjacent (default: 200)"),
			"layer_pattern": layerFilter,
			"entity_type":   typeFilter,
		}),
	},
	{
		Name:        "drawing_overview",
		Description: "Short text overview of the drawing: extents, entity totals, busiest layers and sample labels.",
		InputSchema: object(nil, nil),
	},
}

// Has reports whether a tool with the given name exists.
func Has(name string) bool {
	_, ok := handlers[name]
	return ok
}
