package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CAD_CONFIG", "")
	t.Setenv("PORT", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "3003" || cfg.Limits.ResultLimit != 20 || cfg.Storage.DocumentRoot != "data/documents" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "cad.yaml")
	yml := `
port: "4000"
storage:
  document_root: /srv/plans
  redis_addr: localhost:6379
limits:
  result_limit: 50
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAD_CONFIG", path)
	t.Setenv("RESULT_LIMIT", "7")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "4000" || cfg.Storage.DocumentRoot != "/srv/plans" || cfg.Storage.RedisAddr != "localhost:6379" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Limits.ResultLimit != 7 {
		t.Errorf("env must override file: result limit = %d", cfg.Limits.ResultLimit)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %q", cfg.CORSOrigins)
	}
	if cfg.Storage.RedisDB != 0 || cfg.Limits.MaxTextItems != 5000 {
		t.Errorf("untouched values changed: %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CAD_CONFIG", "")
	t.Setenv("MAX_TEXT_ITEMS", "")
	os.Unsetenv("MAX_TEXT_ITEMS")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MAX_TEXT_ITEMS=12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Limits.MaxTextItems != 12 {
		t.Errorf("max text items = %d, want 12 from .env", cfg.Limits.MaxTextItems)
	}
}

func TestLoadBadFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CAD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Errorf("expected error for missing config file")
	}
}
