package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"cad-editor/internal/cad/models"
	"cad-editor/internal/cad/service"
	"cad-editor/internal/cad/spatial"
	"cad-editor/internal/cad/store"
	"cad-editor/internal/common/metrics"
)

// grid places n TEXT labels on layer LABELS along the x axis, 10 units apart.
func grid(n int) *models.Document {
	doc := &models.Document{Layers: []models.Layer{{Name: "LABELS", Color: 7}, {Name: "WALLS", Color: 1}}}
	for i := 0; i < n; i++ {
		doc.Entities = append(doc.Entities, models.Entity{
			Handle: fmt.Sprintf("T%d", i), Type: "TEXT", Kind: models.KindText, Layer: "LABELS",
			Text: &models.TextGeom{Insert: models.Point{X: float64(i * 10)}, Value: fmt.Sprintf("ROOM %d", i)},
		})
	}
	doc.Entities = append(doc.Entities, models.Entity{
		Handle: "W1", Type: "LINE", Kind: models.KindLine, Layer: "WALLS",
		Line: &models.LineGeom{Start: models.Point{X: 0, Y: -5}, End: models.Point{X: 100, Y: 5}},
	})
	return doc
}

func setup(t *testing.T, n, limit int) (*Dispatcher, service.Source) {
	t.Helper()
	fs := store.NewFileStore(t.TempDir())
	if err := fs.Save(context.Background(), "grid.json", grid(n)); err != nil {
		t.Fatal(err)
	}
	return NewDispatcher(service.New(fs, service.Options{}), limit), service.Source{Location: "grid.json"}
}

func call(t *testing.T, d *Dispatcher, src service.Source, name, args string) any {
	t.Helper()
	return d.Call(context.Background(), name, src, json.RawMessage(args))
}

func errorOf(v any) string {
	if m, ok := v.(map[string]string); ok {
		return m["error"]
	}
	return ""
}

func TestCatalogueMatchesHandlers(t *testing.T) {
	if len(Catalogue) != len(handlers) {
		t.Errorf("catalogue has %d tools, dispatcher %d", len(Catalogue), len(handlers))
	}
	seen := map[string]bool{}
	for _, tool := range Catalogue {
		if seen[tool.Name] {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		seen[tool.Name] = true
		if _, ok := handlers[tool.Name]; !ok {
			t.Errorf("tool %s has no handler", tool.Name)
		}
		for _, r := range tool.InputSchema.Required {
			if _, ok := tool.InputSchema.Properties[r]; !ok {
				t.Errorf("%s: required %q is not a property", tool.Name, r)
			}
		}
	}
	data, err := json.Marshal(Catalogue)
	if err != nil || !strings.Contains(string(data), `"input_schema"`) {
		t.Errorf("catalogue json: %v", err)
	}
}

func TestTruncation(t *testing.T) {
	d, src := setup(t, 25, 20)

	res, ok := call(t, d, src, "find_entities_by_layer", `{"layer_pattern": "LABELS"}`).([]any)
	if !ok {
		t.Fatalf("expected truncated []any result")
	}
	if len(res) != 21 {
		t.Fatalf("len = %d, want 21", len(res))
	}
	note, _ := res[20].(map[string]string)
	if note["note"] != "... 5 more items truncated" {
		t.Errorf("note = %v", res[20])
	}
	if first, _ := res[0].(models.EntityInfo); first.Handle != "T0" {
		t.Errorf("first = %+v", res[0])
	}
}

func TestNoTruncationAtLimit(t *testing.T) {
	d, src := setup(t, 20, 20)
	res, ok := call(t, d, src, "find_entities_by_layer", `{"layer_pattern": "LABELS"}`).([]models.EntityInfo)
	if !ok || len(res) != 20 {
		t.Errorf("result = %#v", res)
	}
}

func TestErrorsBecomeResults(t *testing.T) {
	d, src := setup(t, 3, 20)
	before := testutil.ToFloat64(metrics.ToolFailuresTotal.WithLabelValues("get_entity_info"))

	cases := []struct {
		tool, args, want string
	}{
		{"no_such_tool", `{}`, "unknown tool: no_such_tool"},
		{"get_entity_info", `{"handle": "ZZ"}`, "not found"},
		{"get_entity_info", `{}`, "missing handle"},
		{"get_entity_info", `[1,2]`, "invalid arguments"},
		{"edit_text", `{"handle": "W1", "new_text": "x"}`, "wrong entity kind"},
		{"color_layer", `{"layer_name": "WALLS"}`, "missing color"},
		{"color_layer", `{"layer_name": "WALLS", "color": 999}`, "invalid argument"},
		{"find_entities_near_point", `{"x": 1, "y": 2}`, "missing radius"},
		{"find_entities_in_region", `{"xmin": 0, "ymin": 0, "xmax": 1}`, "missing ymax"},
	}
	for _, tc := range cases {
		got := errorOf(call(t, d, src, tc.tool, tc.args))
		if !strings.Contains(got, tc.want) {
			t.Errorf("%s(%s) error = %q, want it to contain %q", tc.tool, tc.args, got, tc.want)
		}
	}

	if after := testutil.ToFloat64(metrics.ToolFailuresTotal.WithLabelValues("get_entity_info")); after-before != 3 {
		t.Errorf("failure counter moved by %v, want 3", after-before)
	}

	if got := errorOf(d.Call(context.Background(), "list_layers", service.Source{}, nil)); got == "" {
		t.Errorf("missing location must be reported")
	}
}

func TestSpatialTools(t *testing.T) {
	d, src := setup(t, 5, 20)

	near, ok := call(t, d, src, "find_entities_near_point", `{"x": 20, "y": 0, "radius": 10.5}`).([]spatial.Match)
	if !ok || len(near) != 3 || near[0].Handle != "T2" {
		t.Errorf("near = %#v", near)
	}

	region, ok := call(t, d, src, "find_entities_in_region",
		`{"xmin": 0, "ymin": -1, "xmax": 20, "ymax": 1, "entity_type": "TEXT"}`).([]spatial.Match)
	if !ok || len(region) != 3 {
		t.Errorf("region = %#v", region)
	}

	between, ok := call(t, d, src, "find_entities_between",
		`{"handle1": "T0", "handle2": "T4", "max_distance_from_line": 1}`).([]spatial.Match)
	if !ok || len(between) != 3 {
		t.Fatalf("between = %#v", between)
	}
	for i, want := range []string{"T1", "T2", "T3"} {
		if between[i].Handle != want {
			t.Errorf("between[%d] = %s, want %s", i, between[i].Handle, want)
		}
	}

	adj, ok := call(t, d, src, "find_adjacent_entities", `{"handle": "T0", "max_distance": 10}`).([]spatial.Match)
	if !ok || len(adj) != 1 || adj[0].Handle != "T1" {
		t.Errorf("adjacent = %#v", adj)
	}

	dist, _ := call(t, d, src, "calculate_distance", `{"handle1": "T0", "handle2": "T3"}`).(map[string]any)
	if v, _ := dist["distance"].(*float64); v == nil || *v != 30 {
		t.Errorf("distance = %v", dist)
	}

	b, ok := call(t, d, src, "get_entity_bounds", `{"handle": "W1"}`).(*Bounds)
	if !ok || b.Width != 100 || b.Height != 10 || b.Center.X != 50 {
		t.Errorf("bounds = %+v", b)
	}
	if v := call(t, d, src, "get_entity_bounds", `{"handle": "T0"}`); v != nil {
		t.Errorf("text bounds = %#v, want nil", v)
	}

	c, ok := call(t, d, src, "get_entity_center", `{"handle": "W1"}`).(*models.Point)
	if !ok || c == nil || c.X != 50 || c.Y != 0 {
		t.Errorf("center = %+v", c)
	}
}

func TestMutationTools(t *testing.T) {
	d, src := setup(t, 3, 20)

	res := call(t, d, src, "color_layer", `{"layer_name": "LABELS", "color": 4}`)
	data, _ := json.Marshal(res)
	if !strings.Contains(string(data), `"entities_recolored":3`) || !strings.Contains(string(data), `"output_path":"grid.json"`) {
		t.Errorf("color_layer = %s", data)
	}

	res = call(t, d, src, "edit_text", `{"handle": "T1", "new_text": "LOBBY", "output_path": "out.json"}`)
	data, _ = json.Marshal(res)
	if string(data) != `{"handle":"T1","old_text":"ROOM 1","new_text":"LOBBY","output_path":"out.json"}` {
		t.Errorf("edit_text = %s", data)
	}

	res = call(t, d, src, "delete_entity", `{"handle": "T2"}`)
	if m, _ := res.(map[string]any); m["deleted"] != true {
		t.Errorf("delete_entity = %#v", res)
	}
	if got := errorOf(call(t, d, src, "get_entity_info", `{"handle": "T2"}`)); !strings.Contains(got, "not found") {
		t.Errorf("deleted entity still visible: %q", got)
	}

	area := call(t, d, src, "get_area", `{"handle": "T0"}`).(map[string]any)
	if v, _ := area["area"].(*float64); v != nil {
		t.Errorf("text area = %v, want nil", *v)
	}

	over, _ := call(t, d, src, "drawing_overview", `{}`).(map[string]string)
	if !strings.Contains(over["overview"], "Total Entities: 3") {
		t.Errorf("overview = %q", over["overview"])
	}
}
