package summary

import (
	"fmt"
	"sort"
	"strings"
)

const (
	briefTopLayers   = 10
	briefTextSamples = 10
)

// Brief renders a short plain-text overview of a summary, suitable as
// context for an agent that is about to query the drawing.
func Brief(s *Summary, name string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "File: %s\n", name)
	if box := s.Drawing.BBox; box != nil {
		fmt.Fprintf(&b, "Bounding Box: [%.2f, %.2f, %.2f, %.2f]\n", box.XMin, box.YMin, box.XMax, box.YMax)
	} else {
		b.WriteString("Bounding Box: unknown\n")
	}
	fmt.Fprintf(&b, "Total Entities: %d\n", s.Drawing.TotalEntities)
	fmt.Fprintf(&b, "Layers: %d total\n", len(s.Layers))
	fmt.Fprintf(&b, "Rooms/Boundaries: %d candidates\n", s.BoundaryCandidates.Count)

	layers := make([]LayerSummary, len(s.Layers))
	copy(layers, s.Layers)
	sort.SliceStable(layers, func(i, j int) bool {
		return layers[i].TotalEntities > layers[j].TotalEntities
	})
	if len(layers) > briefTopLayers {
		layers = layers[:briefTopLayers]
	}
	b.WriteString("\nTop Layers:\n")
	for _, l := range layers {
		fmt.Fprintf(&b, "  - %s: %d entities\n", l.Name, l.TotalEntities)
	}

	texts := s.TextIndex.Items
	if len(texts) > briefTextSamples {
		texts = texts[:briefTextSamples]
	}
	b.WriteString("\nSample Text Labels:\n")
	for _, t := range texts {
		fmt.Fprintf(&b, "  - %q (handle: %s)\n", t.Text, t.Handle)
	}

	return b.String()
}
