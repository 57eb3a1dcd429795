package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Defaults())
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zstow.yaml")
	content := `
zstd:
  level: 3
  threads: 8
archive:
  retries: 5
  retry_sleep: 500ms
  skip_existing: false
buckets:
  start: "1-10 GB"
  max: "50-200 GB"
scan:
  tool: du
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Level != 3 {
		t.Errorf("Level = %d, want 3", cfg.Level)
	}
	if cfg.Threads != 8 {
		t.Errorf("Threads = %d, want 8", cfg.Threads)
	}
	if cfg.Retries != 5 {
		t.Errorf("Retries = %d, want 5", cfg.Retries)
	}
	if cfg.RetrySleep != 500*time.Millisecond {
		t.Errorf("RetrySleep = %v, want 500ms", cfg.RetrySleep)
	}
	if cfg.SkipExisting {
		t.Error("SkipExisting = true, want false")
	}
	if cfg.StartBucket != "1-10 GB" || cfg.MaxBucket != "50-200 GB" {
		t.Errorf("bucket range = %q..%q", cfg.StartBucket, cfg.MaxBucket)
	}
	if cfg.SizeTool != "du" {
		t.Errorf("SizeTool = %q, want du", cfg.SizeTool)
	}
	// Unset keys keep their defaults.
	if cfg.DeleteAfter {
		t.Error("DeleteAfter = true, want default false")
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing explicit file expected error, got nil")
	}
}

func TestLoadBadRetrySleep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zstow.yaml")
	os.WriteFile(path, []byte("archive:\n  retry_sleep: banana\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid duration expected error, got nil")
	}
}
