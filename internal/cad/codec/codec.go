// Package codec turns persisted bytes into documents and back. Formats are
// registered by file extension; a trailing ".zst" wraps any registered
// format in a zstd stream.
package codec

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"cad-editor/internal/cad/models"
)

var ErrUnknownFormat = errors.New("unknown document format")

// Codec converts between a document and its persisted bytes.
type Codec interface {
	Decode(data []byte) (*models.Document, error)
	Encode(doc *models.Document) ([]byte, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Codec{}
)

// Register makes a codec available for the given extension (".json").
func Register(ext string, c Codec) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(ext)] = c
}

func init() {
	Register(".json", JSON{})
	Register(".cadjson", JSON{})
	Register(".cadb", CBOR{})
}

// For returns the codec for a location, chosen by its extension.
func For(location string) (Codec, error) {
	name := strings.ToLower(location)
	compressed := strings.HasSuffix(name, zstdExt)
	if compressed {
		name = strings.TrimSuffix(name, zstdExt)
	}

	ext := path.Ext(name)
	mu.RLock()
	c, ok := registry[ext]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", location, ErrUnknownFormat)
	}
	if compressed {
		return Zstd{Inner: c}, nil
	}
	return c, nil
}

// normalize fills in the kind of entities that only carry a record type.
func normalize(doc *models.Document) *models.Document {
	fill := func(es []models.Entity) {
		for i := range es {
			if es[i].Kind == "" {
				es[i].Kind = models.KindOf(es[i].Type)
			}
		}
	}
	fill(doc.Entities)
	for i := range doc.Blocks {
		fill(doc.Blocks[i].Entities)
	}
	return doc
}
