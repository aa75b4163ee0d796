package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"cad-editor/internal/cad/models"
)

func sampleDoc() *models.Document {
	h := 2.5
	return &models.Document{
		Version: "AC1027",
		Units:   4,
		Layers:  []models.Layer{{Name: "0", Color: 7}, {Name: "WALLS", Color: 1, Locked: true}},
		Entities: []models.Entity{
			{Handle: "10", Type: "LINE", Kind: models.KindLine, Layer: "WALLS", Color: 256,
				Line: &models.LineGeom{Start: models.Point{X: 1, Y: 2}, End: models.Point{X: 3, Y: 4}}},
			{Handle: "11", Type: "TEXT", Kind: models.KindText, Layer: "0", Color: 256,
				Text: &models.TextGeom{Insert: models.Point{X: 5, Y: 5}, Value: "HALL", Height: &h}},
		},
		Blocks: []models.Block{{Name: "DOOR", Entities: []models.Entity{}}},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	for _, loc := range []string{"plan.json", "nested/dir/plan.cadb", "plan.cadjson.zst"} {
		if err := s.Save(ctx, loc, sampleDoc()); err != nil {
			t.Fatalf("save %s: %v", loc, err)
		}
		got, err := s.Load(ctx, loc)
		if err != nil {
			t.Fatalf("load %s: %v", loc, err)
		}
		if !reflect.DeepEqual(got, sampleDoc()) {
			t.Errorf("%s round trip mismatch:\n got %+v", loc, got)
		}
	}
}

func TestFileStoreNoTempLeftovers(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)
	if err := s.Save(context.Background(), "a.json", sampleDoc()); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), "a.json", sampleDoc()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory = %v", names)
	}
}

func TestFileStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	if _, err := s.Load(ctx, "missing.json"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
	for _, loc := range []string{"../escape.json", "/etc/passwd.json", ""} {
		if _, err := s.Load(ctx, loc); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("Load(%q) err = %v", loc, err)
		}
	}
	if err := s.Save(ctx, "plan.dwg", sampleDoc()); err == nil {
		t.Errorf("unknown extension accepted")
	}
}

func TestFileStoreNoRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abs.json")
	s := NewFileStore("")
	if err := s.Save(context.Background(), path, sampleDoc()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written at plain path: %v", err)
	}
}

func openTestSQL(t *testing.T) *SQLStore {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "cad.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	s := NewSQLStore(db, SQLite)
	t.Cleanup(func() { s.Close() })
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func TestSQLStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestSQL(t)

	if err := s.Save(ctx, "floor1", sampleDoc()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "floor1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, sampleDoc()) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, sampleDoc())
	}

	// A second save replaces the whole document.
	smaller := sampleDoc()
	smaller.Entities = smaller.Entities[:1]
	smaller.Blocks = nil
	if err := s.Save(ctx, "floor1", smaller); err != nil {
		t.Fatal(err)
	}
	got, err = s.Load(ctx, "floor1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, smaller) {
		t.Errorf("replace mismatch:\n got %+v\nwant %+v", got, smaller)
	}

	if err := s.Init(ctx); err != nil {
		t.Errorf("init must be repeatable: %v", err)
	}
}

func TestSQLStoreNotFound(t *testing.T) {
	s := openTestSQL(t)
	if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?, ?)"
	if got := (&SQLStore{dialect: SQLite}).rebind(q); got != q {
		t.Errorf("sqlite rebind = %q", got)
	}
	if got := (&SQLStore{dialect: Postgres}).rebind(q); got != "INSERT INTO t (a, b) VALUES ($1, $2)" {
		t.Errorf("postgres rebind = %q", got)
	}
}

func TestRouter(t *testing.T) {
	ctx := context.Background()
	r := &Router{Files: NewFileStore(t.TempDir()), SQL: openTestSQL(t)}

	if err := r.Save(ctx, "sql:plan", sampleDoc()); err != nil {
		t.Fatalf("sql save: %v", err)
	}
	if err := r.Save(ctx, "plan.json", sampleDoc()); err != nil {
		t.Fatalf("file save: %v", err)
	}
	for _, loc := range []string{"sql:plan", "plan.json"} {
		if _, err := r.Load(ctx, loc); err != nil {
			t.Errorf("load %s: %v", loc, err)
		}
	}

	raw, err := r.Raw(ctx, "plan.json")
	if err != nil || !strings.Contains(string(raw), `"HALL"`) {
		t.Errorf("file raw = %q, %v", raw, err)
	}
	if raw, err := r.Raw(ctx, "sql:plan"); err != nil || raw != nil {
		t.Errorf("sql raw = %v, %v", raw, err)
	}

	if _, err := r.Load(ctx, "redis:plan"); !errors.Is(err, ErrBackendDisabled) {
		t.Errorf("redis err = %v", err)
	}
	if _, err := (&Router{}).Load(ctx, "plan.json"); !errors.Is(err, ErrBackendDisabled) {
		t.Errorf("no file store err = %v", err)
	}
}

func TestRedisStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewRedisStore(client, "")
	defer s.Close()

	if s.key("a") != "cad:doc:a" {
		t.Errorf("key = %q", s.key("a"))
	}
	ctx := context.Background()
	if _, err := s.Load(ctx, "a"); err == nil || errors.Is(err, models.ErrNotFound) {
		t.Errorf("load err = %v, want connection error", err)
	}
	if err := s.Save(ctx, "a", sampleDoc()); err == nil {
		t.Errorf("save against unreachable server succeeded")
	}
}

func TestOpenRedisEmptyAddr(t *testing.T) {
	if OpenRedis("", "", 0) != nil {
		t.Errorf("empty address must disable redis")
	}
}

func TestRouterPing(t *testing.T) {
	r := &Router{Files: NewFileStore(t.TempDir()), SQL: openTestSQL(t)}
	if err := r.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}
