package semantic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loomlang/loomc/internal/parser"
)

func analyze(t *testing.T, src string) []string {
	t.Helper()
	return analyzeNamed(t, "test.loom", src)
}

// analyzeNamed analyzes src as if it were file. It never touches disk, so
// it's only valid for sources with no `use` imports (real imports need
// analyzeFile, below, to resolve sibling files).
func analyzeNamed(t *testing.T, file, src string) []string {
	t.Helper()
	p := parser.New(src, file)
	prog := p.ParseProgram()
	if diags := p.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics for %q: %+v", src, diags)
	}
	a := NewAnalyzer(file)
	items := a.Analyze(prog)
	codes := make([]string, len(items))
	for i, d := range items {
		codes[i] = string(d.Code)
	}
	return codes
}

// analyzeFile parses and analyzes the file at path, which must exist on
// disk so that any `use` imports it names resolve against real sibling
// files, the same way the driver's own compile does.
func analyzeFile(t *testing.T, path string) []string {
	t.Helper()
	src, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return analyzeNamed(t, path, string(src))
}

func writeLoomFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestAnalyzeResolvesParamsAndLocals(t *testing.T) {
	codes := analyze(t, `fn add(a: int, b: int): int {
		let c = a + b
		return c
	}`)
	if len(codes) != 0 {
		t.Fatalf("want no diagnostics, got %v", codes)
	}
}

func TestAnalyzeReportsUndefinedName(t *testing.T) {
	codes := analyze(t, `fn f(): int { return missing }`)
	if len(codes) != 1 || codes[0] != "E_SEM_001" {
		t.Fatalf("want one E_SEM_001, got %v", codes)
	}
}

func TestAnalyzeReportsDuplicateTopLevelBinding(t *testing.T) {
	codes := analyze(t, `fn f() { }
fn f() { }`)
	if len(codes) != 1 || codes[0] != "E_SEM_002" {
		t.Fatalf("want one E_SEM_002, got %v", codes)
	}
}

func TestAnalyzeAllowsShadowingInNestedScope(t *testing.T) {
	codes := analyze(t, `fn f(x: int): int {
		if x > 0 {
			let x = x + 1
			return x
		}
		return x
	}`)
	if len(codes) != 0 {
		t.Fatalf("want no diagnostics, got %v", codes)
	}
}

func TestAnalyzeResolvesComponentAndElementChild(t *testing.T) {
	codes := analyze(t, `component Greeting(name: string) {
		return <div>{name}</div>
	}
	component Page() {
		return <Greeting name="world" />
	}`)
	if len(codes) != 0 {
		t.Fatalf("want no diagnostics, got %v", codes)
	}
}

func TestAnalyzeReportsUndefinedComponentTag(t *testing.T) {
	codes := analyze(t, `component Page() {
		return <Missing />
	}`)
	if len(codes) != 1 || codes[0] != "E_SEM_001" {
		t.Fatalf("want one E_SEM_001, got %v", codes)
	}
}

func TestAnalyzeResolvesForLoopBindingAndMatchArmPattern(t *testing.T) {
	codes := analyze(t, `fn sum(xs: [int]): int {
		let mut total = 0
		for x in xs {
			total += x
		}
		return match total {
			0 => 0,
			n => n,
		}
	}`)
	if len(codes) != 0 {
		t.Fatalf("want no diagnostics, got %v", codes)
	}
}

func TestAnalyzeResolvesAliasedImportAcrossSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	writeLoomFile(t, dir, "a.loom", `pub fn greet(): int { return 1 }`)
	b := writeLoomFile(t, dir, "b.loom", `use ./a::{greet as hello}
fn main(): int {
	return hello()
}`)
	codes := analyzeFile(t, b)
	if len(codes) != 0 {
		t.Fatalf("want no diagnostics, got %v", codes)
	}
}

func TestAnalyzeResolvesGlobImport(t *testing.T) {
	dir := t.TempDir()
	writeLoomFile(t, dir, "a.loom", `pub fn greet(): int { return 1 }
fn helper(): int { return 2 }`)
	b := writeLoomFile(t, dir, "b.loom", `use ./a::*
fn main(): int {
	return greet()
}`)
	codes := analyzeFile(t, b)
	if len(codes) != 0 {
		t.Fatalf("want no diagnostics, got %v", codes)
	}
}

func TestAnalyzeGlobImportDoesNotBindNonPubNames(t *testing.T) {
	dir := t.TempDir()
	writeLoomFile(t, dir, "a.loom", `fn helper(): int { return 2 }`)
	b := writeLoomFile(t, dir, "b.loom", `use ./a::*
fn main(): int {
	return helper()
}`)
	codes := analyzeFile(t, b)
	if len(codes) != 1 || codes[0] != "E_SEM_001" {
		t.Fatalf("want one E_SEM_001 (helper not pub, so not bound), got %v", codes)
	}
}

func TestAnalyzeRejectsImportOfNonPubName(t *testing.T) {
	dir := t.TempDir()
	writeLoomFile(t, dir, "a.loom", `fn greet(): int { return 1 }`)
	b := writeLoomFile(t, dir, "b.loom", `use ./a::{greet}
fn main() { }`)
	codes := analyzeFile(t, b)
	if len(codes) != 1 || codes[0] != "E_SEM_003" {
		t.Fatalf("want one E_SEM_003, got %v", codes)
	}
}

func TestAnalyzeRejectsUnknownExportName(t *testing.T) {
	dir := t.TempDir()
	writeLoomFile(t, dir, "a.loom", `pub fn other(): int { return 1 }`)
	b := writeLoomFile(t, dir, "b.loom", `use ./a::{missing}
fn main() { }`)
	codes := analyzeFile(t, b)
	if len(codes) != 1 || codes[0] != "E_SEM_001" {
		t.Fatalf("want one E_SEM_001, got %v", codes)
	}
}

func TestAnalyzeRejectsUnknownModulePath(t *testing.T) {
	dir := t.TempDir()
	b := writeLoomFile(t, dir, "b.loom", `use ./missing::{thing}
fn main() { }`)
	codes := analyzeFile(t, b)
	if len(codes) != 1 || codes[0] != "E_SEM_005" {
		t.Fatalf("want one E_SEM_005, got %v", codes)
	}
}

func TestAnalyzeRejectsNonRelativeModulePath(t *testing.T) {
	dir := t.TempDir()
	b := writeLoomFile(t, dir, "b.loom", `use ui::{Button}
fn main() { }`)
	codes := analyzeFile(t, b)
	if len(codes) != 1 || codes[0] != "E_SEM_005" {
		t.Fatalf("want one E_SEM_005 for a non-relative module path, got %v", codes)
	}
}

// TestAnalyzeDetectsImportCycle grounds property law #6: an import cycle
// must produce a diagnostic naming every module on the cycle. b imports a,
// a imports b right back.
func TestAnalyzeDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeLoomFile(t, dir, "a.loom", `use ./b::{thing}
pub fn fromA(): int { return 1 }`)
	b := writeLoomFile(t, dir, "b.loom", `use ./a::{fromA}
pub fn thing(): int { return 2 }`)

	codes := analyzeFile(t, b)
	found := false
	for _, c := range codes {
		if c == "E_SEM_004" {
			found = true
		}
	}
	if !found {
		t.Fatalf("want E_SEM_004 (cyclic import) among diagnostics, got %v", codes)
	}
}

func TestAnalyzeDetectsSelfImportCycle(t *testing.T) {
	dir := t.TempDir()
	a := writeLoomFile(t, dir, "a.loom", `use ./a::{fromA}
pub fn fromA(): int { return 1 }`)

	codes := analyzeFile(t, a)
	if len(codes) != 1 || codes[0] != "E_SEM_004" {
		t.Fatalf("want one E_SEM_004 (self-import cycle), got %v", codes)
	}
}
