package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsDefaultWhenFileAbsent(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("want default config, got %+v", cfg)
	}
}

func TestLoadParsesPresentFile(t *testing.T) {
	dir := t.TempDir()
	content := "outDir: build\npersistBackend: sqlite\nminify: true\nforceWebSocket: true\n"
	if err := os.WriteFile(filepath.Join(dir, "loom.config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Config{OutDir: "build", PersistBackend: "sqlite", Minify: true, ForceWebSocket: true}
	if cfg != want {
		t.Fatalf("want %+v, got %+v", want, cfg)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "loom.config.yaml"), []byte("outDir: [unterminated"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("want error for malformed yaml")
	}
}
