package driver

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/loomlang/loomc/internal/config"
)

func newDriver() *Driver {
	return New(config.Default())
}

func TestCompileCounterProducesReactiveTextBinding(t *testing.T) {
	src := `component Counter() {
	let c = signal(0)
	return <button onclick={() => c.value = c.value + 1}>Count: {c.value}</button>
}`
	res := newDriver().Compile(src, "counter.loom")
	if res.HasErrors {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	if !strings.Contains(res.Artifacts.ClientJS, "h(") {
		t.Fatalf("client.js missing element builder call:\n%s", res.Artifacts.ClientJS)
	}
	if !strings.Contains(res.Artifacts.ClientJS, "computed(") && !strings.Contains(res.Artifacts.ClientJS, "c.value") {
		t.Fatalf("client.js missing reactive text binding:\n%s", res.Artifacts.ClientJS)
	}
}

// TestCompilePipeLambdaComputedEffectBatch grounds the `|params| body`
// lambda form: computed/effect read signals through zero-parameter pipe
// lambdas, and batch coalesces two writes behind another zero-parameter
// pipe lambda with a block body.
func TestCompilePipeLambdaComputedEffectBatch(t *testing.T) {
	src := `component Counter() {
	let c = signal(1)
	let d = computed(|| c.value * 2)
	effect(|| console.log(d.value))
	let onClick = || {
		batch(|| {
			c.value = c.value + 1
			c.value = c.value + 1
		})
	}
	return <button onclick={onClick}>{d.value}</button>
}`
	res := newDriver().Compile(src, "counter_pipe.loom")
	if res.HasErrors {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	if !strings.Contains(res.Artifacts.ClientJS, "computed(") {
		t.Fatalf("client.js missing computed() call:\n%s", res.Artifacts.ClientJS)
	}
	if !strings.Contains(res.Artifacts.ClientJS, "effect(") {
		t.Fatalf("client.js missing effect() call:\n%s", res.Artifacts.ClientJS)
	}
	if !strings.Contains(res.Artifacts.ClientJS, "batch(") {
		t.Fatalf("client.js missing batch() call:\n%s", res.Artifacts.ClientJS)
	}
}

func TestCompileServerCallRegistersRPCAndStub(t *testing.T) {
	src := `@server fn add(a: int, b: int): int { return a + b }
component Page() {
	let r = await add(2, 3)
	return <div>{r}</div>
}`
	res := newDriver().Compile(src, "page.loom")
	if res.HasErrors {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	if !strings.Contains(res.Artifacts.ServerJS, `"add"`) {
		t.Fatalf("server.js missing /rpc/add registration:\n%s", res.Artifacts.ServerJS)
	}
	if !strings.Contains(res.Artifacts.ClientJS, "function add(") {
		t.Fatalf("client.js missing add stub:\n%s", res.Artifacts.ClientJS)
	}
	if !strings.Contains(res.Artifacts.ClientJS, "fetch(") {
		t.Fatalf("client.js stub does not use fetch:\n%s", res.Artifacts.ClientJS)
	}
}

func TestCompileStyleScopingAppliesHashedClassToComponentRoot(t *testing.T) {
	src := `component Card() {
	return <div><h2>T</h2></div>
}
style Card {
	h2 {
		color: red;
	}
}`
	res := newDriver().Compile(src, "card.loom")
	if res.HasErrors {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	if !strings.Contains(res.Artifacts.StylesCSS, "color: red") {
		t.Fatalf("styles.css missing rule:\n%s", res.Artifacts.StylesCSS)
	}
	if !strings.Contains(res.Artifacts.StylesCSS, "Card-") {
		t.Fatalf("styles.css missing hashed class:\n%s", res.Artifacts.StylesCSS)
	}
	if !strings.Contains(res.Artifacts.ClientJS, "Card-") {
		t.Fatalf("client.js does not apply hashed class to root element:\n%s", res.Artifacts.ClientJS)
	}
}

func TestCompileReactiveReassignmentProducesDiagnosticWithSuggestion(t *testing.T) {
	src := `fn f() {
	let count = signal(0)
	count = count + 1
}`
	res := newDriver().Compile(src, "bad.loom")
	if !res.HasErrors {
		t.Fatalf("expected a reactive-reassignment error, got none")
	}
	found := false
	for _, d := range res.Diagnostics {
		if string(d.Code) == "E_TYP_007" {
			found = true
			if d.Suggestion == "" {
				t.Fatalf("expected a suggested fix on the diagnostic")
			}
		}
	}
	if !found {
		t.Fatalf("want E_TYP_007 among diagnostics, got %+v", res.Diagnostics)
	}
	if res.Artifacts != (Artifacts{}) {
		t.Fatalf("expected no partial artifacts on error, got %+v", res.Artifacts)
	}
}

func TestCompileProducesManifestWithBuildIDAndArtifactList(t *testing.T) {
	src := `component Empty() { return <div></div> }`
	res := newDriver().Compile(src, "empty.loom")
	if res.HasErrors {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	if res.Artifacts.BuildID == "" {
		t.Fatalf("expected a non-empty build id")
	}
	if !strings.Contains(res.Artifacts.ManifestJS, res.Artifacts.BuildID) {
		t.Fatalf("manifest.json missing build id:\n%s", res.Artifacts.ManifestJS)
	}
	if !strings.Contains(res.Artifacts.ManifestJS, "client.js") {
		t.Fatalf("manifest.json missing artifact list:\n%s", res.Artifacts.ManifestJS)
	}
}

// TestCompileCardBundleMatchesSnapshot snapshots the full emitted bundle
// for a component with both client-only state and a style block, so a
// regression in any single pass (splitter, emitter, style generator)
// shows up as a snapshot diff rather than needing a bespoke assertion.
func TestCompileCardBundleMatchesSnapshot(t *testing.T) {
	src := `component Card(title: string) {
	let open = signal(false)
	return <div onclick={() => open.value = !open.value}>
		<h2>{title}</h2>
	</div>
}
style Card {
	h2 {
		color: red;
	}
}`
	res := newDriver().Compile(src, "card.loom")
	if res.HasErrors {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	snaps.MatchSnapshot(t, "client.js", dropBuildComment(res.Artifacts.ClientJS))
	snaps.MatchSnapshot(t, "server.js", dropBuildComment(res.Artifacts.ServerJS))
	snaps.MatchSnapshot(t, "styles.css", res.Artifacts.StylesCSS)
}

// dropBuildComment strips the leading "// Generated by loomc. Build
// <uuid>." line, the only part of an emitted bundle that legitimately
// varies between otherwise byte-identical compiles.
func dropBuildComment(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func TestCompileIsDeterministicAcrossIdenticalInput(t *testing.T) {
	src := `component Hello() { return <div>Hi</div> }`
	d := newDriver()
	first := d.Compile(src, "hello.loom")
	second := d.Compile(src, "hello.loom")
	if dropBuildComment(first.Artifacts.ClientJS) != dropBuildComment(second.Artifacts.ClientJS) {
		t.Fatalf("client.js differed across identical compiles")
	}
	if dropBuildComment(first.Artifacts.ServerJS) != dropBuildComment(second.Artifacts.ServerJS) {
		t.Fatalf("server.js differed across identical compiles")
	}
}
