package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cad-editor/internal/cad/models"
	"cad-editor/internal/cad/service"
	"cad-editor/internal/cad/spatial"
	"cad-editor/internal/common/logger"
	"cad-editor/internal/common/metrics"
)

const DefaultResultLimit = 20

type handler func(ctx context.Context, d *Dispatcher, src service.Source, args json.RawMessage) (any, error)

// Dispatcher routes tool calls to the service. List results longer than
// the limit are cut and end with a note saying how many items were dropped.
type Dispatcher struct {
	svc   *service.Service
	limit int
}

func NewDispatcher(svc *service.Service, limit int) *Dispatcher {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	return &Dispatcher{svc: svc, limit: limit}
}

var handlers = map[string]handler{
	"list_layers":              listLayers,
	"find_entities_by_layer":   findByLayer,
	"get_entity_info":          entityInfo,
	"get_area":                 area,
	"color_layer":              colorLayer,
	"delete_entity":            deleteEntity,
	"edit_text":                editText,
	"get_entity_center":        entityCenter,
	"get_entity_bounds":        entityBounds,
	"calculate_distance":       distance,
	"find_entities_near_point": nearPoint,
	"find_entities_in_region":  inRegion,
	"find_entities_between":    between,
	"find_adjacent_entities":   adjacent,
	"drawing_overview":         overview,
}

// Call runs one tool. It never fails: errors come back as {"error": msg}.
func (d *Dispatcher) Call(ctx context.Context, name string, src service.Source, args json.RawMessage) any {
	h, ok := handlers[name]
	if !ok {
		return errorResult(fmt.Errorf("unknown tool: %s", name))
	}

	start := time.Now()
	metrics.ToolCallsTotal.WithLabelValues(name).Inc()
	res, err := h(ctx, d, src, args)
	metrics.ToolDurationMs.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.ToolFailuresTotal.WithLabelValues(name).Inc()
		logger.L().Warn("tool_call_error", "tool", name, "err", err)
		return errorResult(err)
	}
	return res
}

func errorResult(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// truncate caps a list result at the dispatcher's limit.
func truncate[T any](items []T, limit int) any {
	if len(items) <= limit {
		return items
	}
	out := make([]any, 0, limit+1)
	for _, it := range items[:limit] {
		out = append(out, it)
	}
	return append(out, map[string]string{
		"note": fmt.Sprintf("... %d more items truncated", len(items)-limit),
	})
}

func decode[T any](args json.RawMessage) (T, error) {
	var v T
	if len(args) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(args, &v); err != nil {
		return v, fmt.Errorf("invalid arguments: %v: %w", err, models.ErrInvalidArgument)
	}
	return v, nil
}

func required(name, value string) error {
	if value == "" {
		return fmt.Errorf("missing %s: %w", name, models.ErrInvalidArgument)
	}
	return nil
}

func requiredNum(name string, value *float64) (float64, error) {
	if value == nil {
		return 0, fmt.Errorf("missing %s: %w", name, models.ErrInvalidArgument)
	}
	return *value, nil
}

func orDefault(value *float64, def float64) float64 {
	if value == nil {
		return def
	}
	return *value
}

// ============================================================
// Argument shapes
// ============================================================

type handleArgs struct {
	Handle string `json:"handle"`
}

type pairArgs struct {
	Handle1 string `json:"handle1"`
	Handle2 string `json:"handle2"`
}

type filterArgs struct {
	LayerPattern string `json:"layer_pattern"`
	EntityType   string `json:"entity_type"`
}

func (f filterArgs) filter() spatial.Filter {
	return spatial.Filter{Layer: f.LayerPattern, Type: f.EntityType}
}

// ============================================================
// Core tools
// ============================================================

func listLayers(ctx context.Context, d *Dispatcher, src service.Source, _ json.RawMessage) (any, error) {
	layers, err := d.svc.ListLayers(ctx, src)
	if err != nil {
		return nil, err
	}
	return truncate(layers, d.limit), nil
}

func findByLayer(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[filterArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("layer_pattern", a.LayerPattern); err != nil {
		return nil, err
	}
	found, err := d.svc.FindByLayer(ctx, src, a.LayerPattern, a.EntityType)
	if err != nil {
		return nil, err
	}
	return truncate(found, d.limit), nil
}

func entityInfo(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[handleArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("handle", a.Handle); err != nil {
		return nil, err
	}
	return d.svc.EntityInfo(ctx, src, a.Handle)
}

func area(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[handleArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("handle", a.Handle); err != nil {
		return nil, err
	}
	v, err := d.svc.Area(ctx, src, a.Handle)
	if err != nil {
		return nil, err
	}
	return map[string]any{"handle": a.Handle, "area": v}, nil
}

type colorArgs struct {
	LayerName  string `json:"layer_name"`
	Color      *int   `json:"color"`
	OutputPath string `json:"output_path"`
}

func colorLayer(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[colorArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("layer_name", a.LayerName); err != nil {
		return nil, err
	}
	if a.Color == nil {
		return nil, fmt.Errorf("missing color: %w", models.ErrInvalidArgument)
	}
	return d.svc.SetLayerColor(ctx, src, a.OutputPath, a.LayerName, *a.Color)
}

type deleteArgs struct {
	Handle     string `json:"handle"`
	OutputPath string `json:"output_path"`
}

func deleteEntity(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[deleteArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("handle", a.Handle); err != nil {
		return nil, err
	}
	out, err := d.svc.DeleteEntity(ctx, src, a.OutputPath, a.Handle)
	if err != nil {
		return nil, err
	}
	return map[string]any{"handle": a.Handle, "deleted": true, "output_path": out}, nil
}

type editArgs struct {
	Handle     string  `json:"handle"`
	NewText    *string `json:"new_text"`
	OutputPath string  `json:"output_path"`
}

func editText(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[editArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("handle", a.Handle); err != nil {
		return nil, err
	}
	if a.NewText == nil {
		return nil, fmt.Errorf("missing new_text: %w", models.ErrInvalidArgument)
	}
	return d.svc.EditText(ctx, src, a.OutputPath, a.Handle, *a.NewText)
}

// ============================================================
// Spatial tools
// ============================================================

func entityCenter(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[handleArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("handle", a.Handle); err != nil {
		return nil, err
	}
	return d.svc.Center(ctx, src, a.Handle)
}

// Bounds is a bounding box with its derived measures.
type Bounds struct {
	models.BBox
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Center models.Point `json:"center"`
}

func entityBounds(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[handleArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("handle", a.Handle); err != nil {
		return nil, err
	}
	box, err := d.svc.Bounds(ctx, src, a.Handle)
	if err != nil || box == nil {
		return nil, err
	}
	return &Bounds{BBox: *box, Width: box.Width(), Height: box.Height(), Center: box.Center()}, nil
}

func distance(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[pairArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("handle1", a.Handle1); err != nil {
		return nil, err
	}
	if err := required("handle2", a.Handle2); err != nil {
		return nil, err
	}
	v, err := d.svc.Distance(ctx, src, a.Handle1, a.Handle2)
	if err != nil {
		return nil, err
	}
	return map[string]any{"handle1": a.Handle1, "handle2": a.Handle2, "distance": v}, nil
}

type nearArgs struct {
	filterArgs
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Radius *float64 `json:"radius"`
}

func nearPoint(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[nearArgs](raw)
	if err != nil {
		return nil, err
	}
	var p models.Point
	if p.X, err = requiredNum("x", a.X); err != nil {
		return nil, err
	}
	if p.Y, err = requiredNum("y", a.Y); err != nil {
		return nil, err
	}
	radius, err := requiredNum("radius", a.Radius)
	if err != nil {
		return nil, err
	}
	found, err := d.svc.NearPoint(ctx, src, p, radius, a.filter())
	if err != nil {
		return nil, err
	}
	return truncate(found, d.limit), nil
}

type regionArgs struct {
	filterArgs
	XMin *float64 `json:"xmin"`
	YMin *float64 `json:"ymin"`
	XMax *float64 `json:"xmax"`
	YMax *float64 `json:"ymax"`
}

func inRegion(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[regionArgs](raw)
	if err != nil {
		return nil, err
	}
	var rect models.BBox
	for _, f := range []struct {
		name string
		in   *float64
		out  *float64
	}{
		{"xmin", a.XMin, &rect.XMin},
		{"ymin", a.YMin, &rect.YMin},
		{"xmax", a.XMax, &rect.XMax},
		{"ymax", a.YMax, &rect.YMax},
	} {
		if *f.out, err = requiredNum(f.name, f.in); err != nil {
			return nil, err
		}
	}
	found, err := d.svc.InRegion(ctx, src, rect, a.filter())
	if err != nil {
		return nil, err
	}
	return truncate(found, d.limit), nil
}

type betweenArgs struct {
	pairArgs
	LayerPattern        string   `json:"layer_pattern"`
	MaxDistanceFromLine *float64 `json:"max_distance_from_line"`
}

func between(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[betweenArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("handle1", a.Handle1); err != nil {
		return nil, err
	}
	if err := required("handle2", a.Handle2); err != nil {
		return nil, err
	}
	maxPerp := orDefault(a.MaxDistanceFromLine, spatial.DefaultCorridorWidth)
	found, err := d.svc.Between(ctx, src, a.Handle1, a.Handle2, a.LayerPattern, maxPerp)
	if err != nil {
		return nil, err
	}
	return truncate(found, d.limit), nil
}

type adjacentArgs struct {
	filterArgs
	Handle      string   `json:"handle"`
	MaxDistance *float64 `json:"max_distance"`
}

func adjacent(ctx context.Context, d *Dispatcher, src service.Source, raw json.RawMessage) (any, error) {
	a, err := decode[adjacentArgs](raw)
	if err != nil {
		return nil, err
	}
	if err := required("handle", a.Handle); err != nil {
		return nil, err
	}
	maxDist := orDefault(a.MaxDistance, spatial.DefaultAdjacentDistance)
	found, err := d.svc.Adjacent(ctx, src, a.Handle, maxDist, a.filter())
	if err != nil {
		return nil, err
	}
	return truncate(found, d.limit), nil
}

func overview(ctx context.Context, d *Dispatcher, src service.Source, _ json.RawMessage) (any, error) {
	brief, err := d.svc.Brief(ctx, src)
	if err != nil {
		return nil, err
	}
	return map[string]string{"overview": brief}, nil
}
