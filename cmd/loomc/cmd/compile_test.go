package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunCompileWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.loom")
	if err := os.WriteFile(src, []byte(`component Hello() { return <div>Hi</div> }`), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	dest := filepath.Join(dir, "out")
	outDir = dest
	defer func() { outDir = "" }()

	if err := runCompile(nil, []string{src}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"client.js", "server.js", "styles.css", "index.html", "manifest.json"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestRunCompileReturnsErrorForMissingFile(t *testing.T) {
	outDir = t.TempDir()
	defer func() { outDir = "" }()

	if err := runCompile(nil, []string{filepath.Join(t.TempDir(), "missing.loom")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestRunCompileReturnsErrorOnDiagnostics(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.loom")
	// reassigning a reactive binding directly is rejected by the type
	// checker (E_TYP_007), so this source must fail to compile.
	if err := os.WriteFile(src, []byte(`fn f() {
	let count = signal(0)
	count = count + 1
}`), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	outDir = t.TempDir()
	defer func() { outDir = "" }()

	if err := runCompile(nil, []string{src}); err == nil {
		t.Fatalf("expected compile error for reactive reassignment")
	}
}
