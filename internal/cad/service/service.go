// Package service is the public entry point of the CAD engine. Every call
// names its document with a Source: a location reloaded from the store on
// each call, or an open session that keeps the document in memory.
package service

import (
	"context"
	"fmt"

	"cad-editor/internal/cad/codec"
	"cad-editor/internal/cad/geometry"
	"cad-editor/internal/cad/models"
	"cad-editor/internal/cad/mutation"
	"cad-editor/internal/cad/spatial"
	"cad-editor/internal/cad/store"
	"cad-editor/internal/cad/summary"
	"cad-editor/internal/common/logger"
)

// Source selects the document an operation runs against. Session wins when
// both are set.
type Source struct {
	Location string `json:"location,omitempty"`
	Session  string `json:"session,omitempty"`
}

type Options struct {
	MaxTextItems          int
	MaxBoundaryCandidates int
}

type Service struct {
	store    store.Store
	sessions *SessionManager
	opts     Options
}

func New(st store.Store, opts Options) *Service {
	return &Service{store: st, sessions: NewSessionManager(), opts: opts}
}

func (s *Service) Sessions() *SessionManager { return s.sessions }

// ============================================================
// Sessions
// ============================================================

func (s *Service) OpenSession(ctx context.Context, location string) (SessionInfo, error) {
	doc, err := s.load(ctx, location)
	if err != nil {
		return SessionInfo{}, err
	}
	info := s.sessions.Open(location, doc)
	logger.L().Info("session_open", "session", info.Token, "location", location)
	return info, nil
}

func (s *Service) CloseSession(token string) error {
	if !s.sessions.Close(token) {
		return fmt.Errorf("session %s: %w", token, models.ErrNotFound)
	}
	logger.L().Info("session_close", "session", token)
	return nil
}

// ============================================================
// Document access
// ============================================================

func (s *Service) load(ctx context.Context, location string) (*models.Document, error) {
	if location == "" {
		return nil, fmt.Errorf("no document location given: %w", models.ErrInvalidArgument)
	}
	doc, err := s.store.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	return doc, nil
}

// acquire resolves a source to a document. The returned release func must
// be called once the caller is done with the document.
func (s *Service) acquire(ctx context.Context, src Source) (*models.Document, string, *session, func(), error) {
	if src.Session != "" {
		sess, ok := s.sessions.get(src.Session)
		if !ok {
			return nil, "", nil, nil, fmt.Errorf("session %s: %w", src.Session, models.ErrNotFound)
		}
		sess.mu.Lock()
		return sess.doc, sess.location, sess, sess.mu.Unlock, nil
	}
	doc, err := s.load(ctx, src.Location)
	if err != nil {
		return nil, "", nil, nil, err
	}
	return doc, src.Location, nil, func() {}, nil
}

// read runs fn against the source document.
func read[T any](ctx context.Context, s *Service, src Source, fn func(*models.Document) (T, error)) (T, error) {
	doc, _, _, release, err := s.acquire(ctx, src)
	if err != nil {
		var zero T
		return zero, err
	}
	defer release()
	return fn(doc)
}

// mutate applies fn to the document and writes the whole result to output,
// or back to the source location when output is empty. Nothing is written
// when fn fails. A session sees the change only when it was written to the
// session's own location, matching what a reload would show.
func (s *Service) mutate(ctx context.Context, src Source, output string, fn func(*models.Document) error) (string, error) {
	doc, location, sess, release, err := s.acquire(ctx, src)
	if err != nil {
		return "", err
	}
	defer release()

	work := doc
	if sess != nil {
		work = doc.Clone()
	}
	if err := fn(work); err != nil {
		return "", err
	}

	dest := output
	if dest == "" {
		dest = location
	}
	if err := s.store.Save(ctx, dest, work); err != nil {
		return "", fmt.Errorf("save %s: %w", dest, err)
	}
	if sess != nil && dest == sess.location {
		sess.doc = work
	}
	logger.L().Info("mutation_write", "source", location, "output", dest)
	return dest, nil
}

// ============================================================
// Read-only operations
// ============================================================

// Document returns a private copy of the source document.
func (s *Service) Document(ctx context.Context, src Source) (*models.Document, error) {
	return read(ctx, s, src, func(doc *models.Document) (*models.Document, error) {
		return doc.Clone(), nil
	})
}

func (s *Service) ListLayers(ctx context.Context, src Source) ([]summary.LayerSummary, error) {
	return read(ctx, s, src, func(doc *models.Document) ([]summary.LayerSummary, error) {
		return summary.Layers(doc), nil
	})
}

func (s *Service) EntityInfo(ctx context.Context, src Source, handle string) (*models.EntityInfo, error) {
	return read(ctx, s, src, func(doc *models.Document) (*models.EntityInfo, error) {
		e, err := lookup(doc, handle)
		if err != nil {
			return nil, err
		}
		info := e.Info()
		return &info, nil
	})
}

// FindByLayer lists model-space entities on the exact layer, optionally
// restricted to one record type.
func (s *Service) FindByLayer(ctx context.Context, src Source, layer, entityType string) ([]models.EntityInfo, error) {
	return read(ctx, s, src, func(doc *models.Document) ([]models.EntityInfo, error) {
		out := []models.EntityInfo{}
		for i := range doc.Entities {
			e := &doc.Entities[i]
			if e.InModelSpace() && e.Layer == layer && (entityType == "" || e.Type == entityType) {
				out = append(out, e.Info())
			}
		}
		return out, nil
	})
}

// Area returns nil when the entity exists but has no defined area.
func (s *Service) Area(ctx context.Context, src Source, handle string) (*float64, error) {
	return read(ctx, s, src, func(doc *models.Document) (*float64, error) {
		e, err := lookup(doc, handle)
		if err != nil {
			return nil, err
		}
		return present(geometry.Area(e)), nil
	})
}

func (s *Service) Center(ctx context.Context, src Source, handle string) (*models.Point, error) {
	return read(ctx, s, src, func(doc *models.Document) (*models.Point, error) {
		e, err := lookup(doc, handle)
		if err != nil {
			return nil, err
		}
		return present(geometry.Center(e)), nil
	})
}

func (s *Service) Bounds(ctx context.Context, src Source, handle string) (*models.BBox, error) {
	return read(ctx, s, src, func(doc *models.Document) (*models.BBox, error) {
		e, err := lookup(doc, handle)
		if err != nil {
			return nil, err
		}
		return present(geometry.BoundingBox(e)), nil
	})
}

// Distance returns nil when either center is undefined.
func (s *Service) Distance(ctx context.Context, src Source, a, b string) (*float64, error) {
	return read(ctx, s, src, func(doc *models.Document) (*float64, error) {
		return present(spatial.Distance(doc, a, b)), nil
	})
}

func (s *Service) NearPoint(ctx context.Context, src Source, p models.Point, radius float64, f spatial.Filter) ([]spatial.Match, error) {
	return read(ctx, s, src, func(doc *models.Document) ([]spatial.Match, error) {
		return spatial.NearPoint(doc, p, radius, f), nil
	})
}

func (s *Service) InRegion(ctx context.Context, src Source, rect models.BBox, f spatial.Filter) ([]spatial.Match, error) {
	return read(ctx, s, src, func(doc *models.Document) ([]spatial.Match, error) {
		return spatial.InRegion(doc, rect, f), nil
	})
}

func (s *Service) Between(ctx context.Context, src Source, a, b, layer string, maxPerp float64) ([]spatial.Match, error) {
	return read(ctx, s, src, func(doc *models.Document) ([]spatial.Match, error) {
		return spatial.Between(doc, a, b, layer, maxPerp), nil
	})
}

func (s *Service) Adjacent(ctx context.Context, src Source, handle string, maxDistance float64, f spatial.Filter) ([]spatial.Match, error) {
	return read(ctx, s, src, func(doc *models.Document) ([]spatial.Match, error) {
		return spatial.Adjacent(doc, handle, maxDistance, f), nil
	})
}

// Summarize builds the document summary. Outside a session the digest of
// the persisted bytes is included when the store can provide them.
func (s *Service) Summarize(ctx context.Context, src Source, includePaperspace bool) (*summary.Summary, error) {
	doc, location, sess, release, err := s.acquire(ctx, src)
	if err != nil {
		return nil, err
	}
	defer release()

	opts := summary.Options{
		IncludePaperspace:     includePaperspace,
		MaxTextItems:          s.opts.MaxTextItems,
		MaxBoundaryCandidates: s.opts.MaxBoundaryCandidates,
		Source:                location,
	}
	if raw, ok := s.store.(store.RawReader); ok && sess == nil {
		data, err := raw.Raw(ctx, location)
		if err != nil {
			logger.L().Warn("digest_unavailable", "location", location, "err", err)
		} else if data != nil {
			opts.Digest = codec.Digest(data)
		}
	}
	return summary.Build(doc, opts), nil
}

func (s *Service) Brief(ctx context.Context, src Source) (string, error) {
	sum, err := s.Summarize(ctx, src, false)
	if err != nil {
		return "", err
	}
	return summary.Brief(sum, sum.Meta.Source), nil
}

// ============================================================
// Mutations
// ============================================================

func (s *Service) SetLayerColor(ctx context.Context, src Source, output, layer string, color int) (*mutation.LayerColorResult, error) {
	var res *mutation.LayerColorResult
	dest, err := s.mutate(ctx, src, output, func(doc *models.Document) error {
		var err error
		res, err = mutation.SetLayerColor(doc, layer, color)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.OutputPath = dest
	return res, nil
}

func (s *Service) DeleteEntity(ctx context.Context, src Source, output, handle string) (string, error) {
	return s.mutate(ctx, src, output, func(doc *models.Document) error {
		return mutation.DeleteEntity(doc, handle)
	})
}

func (s *Service) EditText(ctx context.Context, src Source, output, handle, text string) (*mutation.TextEdit, error) {
	var edit *mutation.TextEdit
	dest, err := s.mutate(ctx, src, output, func(doc *models.Document) error {
		var err error
		edit, err = mutation.EditText(doc, handle, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	edit.OutputPath = dest
	return edit, nil
}

// ============================================================
// Helpers
// ============================================================

func lookup(doc *models.Document, handle string) (*models.Entity, error) {
	e, ok := doc.Entity(handle)
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", handle, models.ErrNotFound)
	}
	return e, nil
}

func present[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}
