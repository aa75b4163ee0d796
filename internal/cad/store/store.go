// Package store loads and saves whole documents. Every backend reads and
// writes a complete document; there is no partial patching.
package store

import (
	"context"
	"errors"

	"cad-editor/internal/cad/models"
)

// ErrBackendDisabled is returned for locations routed to a backend that
// was not configured.
var ErrBackendDisabled = errors.New("store backend not configured")

type Store interface {
	Load(ctx context.Context, location string) (*models.Document, error)
	Save(ctx context.Context, location string, doc *models.Document) error
}

// RawReader is implemented by stores that can hand out the persisted bytes
// of a document, used for content digests.
type RawReader interface {
	Raw(ctx context.Context, location string) ([]byte, error)
}
