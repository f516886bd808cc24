// Package loomc is the public embedding API: a thin, stable wrapper
// around internal/driver for programs that want to compile Loom source
// without shelling out to the CLI.
package loomc

import (
	"os"
	"path/filepath"

	"github.com/loomlang/loomc/internal/config"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/driver"
)

// Artifacts mirrors driver.Artifacts: the four mandated outputs
// (client.js, server.js, styles.css, index.html) plus the manifest.
type Artifacts = driver.Artifacts

// Diagnostic mirrors diag.Diagnostic for callers that don't want to
// import internal/diag directly.
type Diagnostic = diag.Diagnostic

// Compiler compiles Loom source to the four mandated artifacts.
type Compiler struct {
	d *driver.Driver
}

// New builds a Compiler from an already-loaded config.Config.
func New(cfg config.Config) *Compiler {
	return &Compiler{d: driver.New(cfg)}
}

// Open loads loom.config.yaml (if present) from dir and builds a Compiler.
func Open(dir string) (*Compiler, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// CompileSource compiles in-memory source. file is the path `use`
// imports are resolved relative to, and also names the manifest's source
// and the HTML title.
func (c *Compiler) CompileSource(source, file string) (Artifacts, []Diagnostic, error) {
	res := c.d.Compile(source, file)
	if res.HasErrors {
		return Artifacts{}, res.Diagnostics, nil
	}
	return res.Artifacts, res.Diagnostics, nil
}

// OutDir returns the output directory from the Compiler's configuration.
func (c *Compiler) OutDir() string {
	return c.d.Config.OutDir
}

// CompileFile reads path and compiles it.
func (c *Compiler) CompileFile(path string) (Artifacts, []Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifacts{}, nil, err
	}
	return c.CompileSource(string(data), path)
}

// WriteArtifacts writes the four mandated artifacts plus manifest.json
// into outDir, creating it if necessary.
func WriteArtifacts(outDir string, a Artifacts) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	files := map[string]string{
		"client.js":     a.ClientJS,
		"server.js":     a.ServerJS,
		"styles.css":    a.StylesCSS,
		"index.html":    a.IndexHTML,
		"manifest.json": a.ManifestJS,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}
