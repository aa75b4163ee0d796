package codec

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"cad-editor/internal/cad/models"
)

// JSON reads JSON documents that may carry // comments, /* block comments */
// and trailing commas, and writes indented plain JSON.
type JSON struct{}

func (JSON) Decode(data []byte) (*models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("decode json document: %w", err)
	}
	return normalize(&doc), nil
}

func (JSON) Encode(doc *models.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json document: %w", err)
	}
	return append(data, '\n'), nil
}
