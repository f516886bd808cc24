// Package config loads the optional loom.config.yaml sitting next to a
// compiled entry file: output directory, default @persist backend, CSS
// minification, and whether the splitter should force WebSocket server
// bootstrap regardless of what static analysis detects.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Config is the parsed shape of loom.config.yaml. Every field has a
// usable zero value, so a missing file is equivalent to Default().
type Config struct {
	OutDir          string `yaml:"outDir"`
	PersistBackend  string `yaml:"persistBackend"`
	Minify          bool   `yaml:"minify"`
	ForceWebSocket  bool   `yaml:"forceWebSocket"`
}

// Default returns the configuration used when no loom.config.yaml is
// present next to the entry file.
func Default() Config {
	return Config{
		OutDir:         "dist",
		PersistBackend: "localStorage",
		Minify:         false,
		ForceWebSocket: false,
	}
}

// Load looks for loom.config.yaml in dir and parses it, falling back to
// Default() when the file does not exist. A present-but-malformed file is
// an error — unlike a missing file, which is not.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(dir, "loom.config.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("loom.config.yaml: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("loom.config.yaml: %w", err)
	}
	return cfg, nil
}
