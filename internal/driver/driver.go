// Package driver orchestrates the full pipeline: lexer → parser →
// semantic analyzer → type checker → reactive analyzer → code splitter →
// {client emitter, server emitter, style generator, HTML}. It is the one
// place that wires every pass together, the way the established
// cmd/dwscript/cmd/run.go wires lexer→parser→semantic→interp for a single
// source file.
package driver

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/cache"
	"github.com/loomlang/loomc/internal/config"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/emitter"
	"github.com/loomlang/loomc/internal/metrics"
	"github.com/loomlang/loomc/internal/parser"
	"github.com/loomlang/loomc/internal/reactive"
	"github.com/loomlang/loomc/internal/semantic"
	"github.com/loomlang/loomc/internal/split"
	"github.com/loomlang/loomc/internal/style"
	"github.com/loomlang/loomc/internal/typecheck"
)

// Artifacts is the four mandated outputs plus the manifest the driver
// adds on top.
type Artifacts struct {
	ClientJS   string
	ServerJS   string
	StylesCSS  string
	IndexHTML  string
	ManifestJS string
	BuildID    string
}

// Result is what Compile returns: either a complete set of Artifacts
// (when Diagnostics has no errors) or a diagnostic list explaining why
// nothing was emitted. The "no partial artifacts on error" invariant means
// Artifacts is the zero value whenever HasErrors is true.
type Result struct {
	Artifacts   Artifacts
	Diagnostics []diag.Diagnostic
	HasErrors   bool
}

// Driver runs the pipeline for one or more source files, optionally
// sharing a parsed-AST cache across them.
type Driver struct {
	Config config.Config
	Cache  *cache.Cache
}

// New returns a Driver configured from cfg, with its own AST cache.
func New(cfg config.Config) *Driver {
	return &Driver{Config: cfg, Cache: cache.New()}
}

// Compile runs the full pipeline over one source file and returns its
// artifacts (or diagnostics explaining a failed compile). file is the
// path `use` imports are resolved relative to, the manifest's "source"
// entry, and the HTML <title> (its base name without extension).
func (d *Driver) Compile(source, file string) Result {
	start := time.Now()
	res := d.compile(source, file)
	metrics.CompileDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.RecordDiagnostics(res.Diagnostics)
	if res.HasErrors {
		metrics.CompilesTotal.WithLabelValues("error").Inc()
	} else {
		metrics.CompilesTotal.WithLabelValues("success").Inc()
	}
	return res
}

func (d *Driver) compile(source, file string) Result {
	var bag []diag.Diagnostic

	parseOnce := func() *ast.Program {
		p := parser.New(source, file)
		prog := p.ParseProgram()
		bag = append(bag, p.Diagnostics()...)
		return prog
	}
	var prog *ast.Program
	if d.Cache != nil {
		prog = d.Cache.GetOrParse(source, parseOnce)
	} else {
		prog = parseOnce()
	}
	if hasErrors(bag) {
		return Result{Diagnostics: bag, HasErrors: true}
	}

	sem := semantic.NewAnalyzer(file)
	bag = append(bag, sem.Analyze(prog)...)
	if hasErrors(bag) {
		return Result{Diagnostics: bag, HasErrors: true}
	}

	checker := typecheck.NewChecker()
	bag = append(bag, checker.Check(prog)...)
	if hasErrors(bag) {
		return Result{Diagnostics: bag, HasErrors: true}
	}

	flags := reactive.NewAnalyzer().Analyze(prog)

	splitRes, splitDiags := split.NewSplitter().Split(prog)
	bag = append(bag, splitDiags...)
	if hasErrors(bag) {
		return Result{Diagnostics: bag, HasErrors: true}
	}
	if d.Config.ForceWebSocket {
		splitRes.UsesWebSocket = true
	}

	sheets, classNames := style.NewGenerator().Generate(prog)

	buildID := uuid.NewString()
	em := emitter.New(flags, classNames)
	entry := entryComponent(prog)
	title := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	artifacts := Artifacts{
		ClientJS:  em.EmitClient(splitRes, entry, buildID),
		ServerJS:  em.EmitServer(splitRes, buildID),
		StylesCSS: renderSheets(sheets),
		IndexHTML: emitter.EmitHTML(title, buildID),
		BuildID:   buildID,
	}
	artifacts.ManifestJS = buildManifest(buildID, file, bag)

	return Result{Artifacts: artifacts, Diagnostics: bag, HasErrors: false}
}

func hasErrors(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

func entryComponent(prog *ast.Program) string {
	for _, d := range prog.Declarations {
		if c, ok := d.(*ast.ComponentDecl); ok {
			return c.Name
		}
	}
	return ""
}

func renderSheets(sheets []style.Sheet) string {
	out := ""
	for _, sh := range sheets {
		out += sh.CSS
	}
	return out
}

// buildManifest assembles the informational fifth artifact: build id,
// diagnostic counts by severity, and the source file compiled. Built with
// sjson rather than a tagged struct, matching the rest of the compiler's
// ad-hoc JSON construction.
func buildManifest(buildID, file string, diags []diag.Diagnostic) string {
	out, _ := sjson.Set("", "buildId", buildID)
	out, _ = sjson.Set(out, "source", file)
	counts := map[diag.Severity]int{}
	for _, d := range diags {
		counts[d.Severity]++
	}
	out, _ = sjson.Set(out, "diagnostics.errors", counts[diag.SeverityError])
	out, _ = sjson.Set(out, "diagnostics.warnings", counts[diag.SeverityWarning])
	out, _ = sjson.Set(out, "artifacts", []string{"client.js", "server.js", "styles.css", "index.html"})
	return out
}
