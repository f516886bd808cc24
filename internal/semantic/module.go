package semantic

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/parser"
	"github.com/loomlang/loomc/internal/token"
)

// ModuleLoader resolves a `use` path, relative to the file that names it,
// to that module's source text and a canonical path used as its cache
// key — so two imports of what's really the same file, spelled
// differently by two different importers, collide on one cached module.
type ModuleLoader interface {
	Load(fromFile, path string) (source, resolvedPath string, err error)
}

// FileLoader resolves `use ./name` or `use ../name` to the sibling file
// name+Ext on disk, relative to fromFile's own directory. Ext defaults to
// ".loom".
type FileLoader struct {
	Ext string
}

func (l FileLoader) Load(fromFile, path string) (string, string, error) {
	if !strings.HasPrefix(path, "./") && !strings.HasPrefix(path, "../") {
		return "", "", fmt.Errorf("module path %q is not relative (must start with ./ or ../)", path)
	}
	ext := l.Ext
	if ext == "" {
		ext = ".loom"
	}
	resolved := filepath.Clean(filepath.Join(filepath.Dir(fromFile), path+ext))
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", "", err
	}
	return string(data), resolved, nil
}

// moduleInfo is the result of fully analyzing one module: every
// top-level symbol it declares, pub or not — keeping non-pub symbols
// around lets a named import of one be told apart from a name that
// doesn't exist in the module at all. hasErrors records whether the
// module itself failed to parse or analyze; diags holds the combined
// parse+analysis diagnostics so every importer (not just the first) can
// surface the real underlying errors instead of a bare "failed to
// compile".
type moduleInfo struct {
	symbols   map[string]*Symbol
	hasErrors bool
	diags     []diag.Diagnostic
}

// moduleGraph loads and analyzes the modules a compile reaches through
// `use` imports. It memoizes each module by its resolved path so a
// diamond-shaped import graph analyzes every module once, and it detects
// cycles via an explicit visiting stack threaded through recursive
// resolve calls.
type moduleGraph struct {
	loader   ModuleLoader
	modules  map[string]*moduleInfo
	visiting []string
}

func newModuleGraph(loader ModuleLoader) *moduleGraph {
	return &moduleGraph{loader: loader, modules: make(map[string]*moduleInfo)}
}

func (g *moduleGraph) push(path string) { g.visiting = append(g.visiting, path) }
func (g *moduleGraph) pop()             { g.visiting = g.visiting[:len(g.visiting)-1] }

// cycleFrom returns the visiting stack starting at path's first
// occurrence, with path appended again to close the loop — e.g.
// ["a.loom", "b.loom", "a.loom"] — or nil if path isn't currently being
// visited.
func (g *moduleGraph) cycleFrom(path string) []string {
	for i, v := range g.visiting {
		if v == path {
			cycle := append([]string{}, g.visiting[i:]...)
			return append(cycle, path)
		}
	}
	return nil
}

// resolve loads and analyzes the module that path (named from fromFile)
// refers to, returning its full top-level symbol table. On any failure —
// an unresolvable path, a load error, or an import cycle — it reports a
// diagnostic to bag and returns ok=false.
func (g *moduleGraph) resolve(bag *diag.Bag, fromFile, path string, span token.Span) (*moduleInfo, bool) {
	source, resolved, err := g.loader.Load(fromFile, path)
	if err != nil {
		bag.Errorf(diag.CodeUnknownModulePath, span, "cannot resolve module %q: %v", path, err)
		return nil, false
	}
	if cycle := g.cycleFrom(resolved); cycle != nil {
		bag.Errorf(diag.CodeCyclicImport, span, "import cycle: %s", strings.Join(cycle, " -> "))
		return nil, false
	}
	info, cached := g.modules[resolved]
	if !cached {
		p := parser.New(source, resolved)
		prog := p.ParseProgram()

		child := &Analyzer{bag: &diag.Bag{}, global: NewSymbolTable(), file: resolved, graph: g}
		childDiags := child.Analyze(prog)

		var diags []diag.Diagnostic
		diags = append(diags, p.Diagnostics()...)
		diags = append(diags, childDiags...)

		info = &moduleInfo{
			symbols:   child.global.symbols,
			hasErrors: hasErrorSeverity(diags),
			diags:     diags,
		}
		g.modules[resolved] = info
	}

	if info.hasErrors {
		// Surface the module's own errors (a cycle found further down the
		// chain, a syntax error, an undefined name) to the importer that
		// reached it, rather than masking them behind a generic message.
		for _, d := range info.diags {
			bag.Add(d)
		}
		return info, false
	}
	return info, true
}

func hasErrorSeverity(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}
