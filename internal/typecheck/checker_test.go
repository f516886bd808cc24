package typecheck

import (
	"testing"

	"github.com/loomlang/loomc/internal/parser"
)

func checkSrc(t *testing.T, src string) []string {
	t.Helper()
	p := parser.New(src, "test.loom")
	prog := p.ParseProgram()
	if diags := p.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics for %q: %+v", src, diags)
	}
	diags := NewChecker().Check(prog)
	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = string(d.Code)
	}
	return codes
}

func hasCode(codes []string, want string) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}

func TestCheckAcceptsMatchingParamAndReturnTypes(t *testing.T) {
	codes := checkSrc(t, `fn add(a: int, b: int): int { return a + b }`)
	if len(codes) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", codes)
	}
}

func TestCheckRejectsReturnTypeMismatch(t *testing.T) {
	codes := checkSrc(t, `fn f(): int { return "hi" }`)
	if !hasCode(codes, "E_TYP_001") {
		t.Fatalf("want E_TYP_001, got %+v", codes)
	}
}

func TestCheckRejectsAwaitOutsideAsync(t *testing.T) {
	codes := checkSrc(t, `fn f(x: Future<int>): int { return await x }`)
	if !hasCode(codes, "E_TYP_003") {
		t.Fatalf("want E_TYP_003, got %+v", codes)
	}
}

func TestCheckAcceptsAwaitInsideAsyncFn(t *testing.T) {
	codes := checkSrc(t, `async fn f(x: Future<int>): int { return await x }`)
	if hasCode(codes, "E_TYP_003") {
		t.Fatalf("unexpected E_TYP_003: %+v", codes)
	}
}

func TestCheckRejectsAwaitInsideElementTree(t *testing.T) {
	codes := checkSrc(t, `async fn render(data: Future<int>) {
	let el = <div>{await data}</div>
}`)
	if !hasCode(codes, "E_TYP_005") {
		t.Fatalf("want E_TYP_005, got %+v", codes)
	}
}

func TestCheckRejectsValueOnNonReactive(t *testing.T) {
	codes := checkSrc(t, `fn f(n: int): int { return n.value }`)
	if !hasCode(codes, "E_TYP_001") {
		t.Fatalf("want E_TYP_001 for .value misuse, got %+v", codes)
	}
}

func TestCheckRejectsReactiveReassignment(t *testing.T) {
	codes := checkSrc(t, `fn f(count: Reactive<int>) {
	count = count
}`)
	if !hasCode(codes, "E_TYP_007") {
		t.Fatalf("want E_TYP_007, got %+v", codes)
	}
}

func TestCheckRejectsLengthCalledAsMethod(t *testing.T) {
	codes := checkSrc(t, `fn f(xs: [int]): int { return xs.length() }`)
	if !hasCode(codes, "E_TYP_008") {
		t.Fatalf("want E_TYP_008, got %+v", codes)
	}
}

func TestCheckRejectsNonExhaustiveEnumMatch(t *testing.T) {
	codes := checkSrc(t, `enum Status {
	Active(),
	Inactive(),
}
fn f(s: Status): int {
	return match s {
		Active() => 1,
	}
}`)
	if !hasCode(codes, "E_TYP_009") {
		t.Fatalf("want E_TYP_009, got %+v", codes)
	}
}

func TestCheckAcceptsExhaustiveEnumMatchWithWildcard(t *testing.T) {
	codes := checkSrc(t, `enum Status {
	Active(),
	Inactive(),
}
fn f(s: Status): int {
	return match s {
		Active() => 1,
		_ => 0,
	}
}`)
	if hasCode(codes, "E_TYP_009") {
		t.Fatalf("unexpected E_TYP_009: %+v", codes)
	}
}

func TestCheckRejectsPostfixAwait(t *testing.T) {
	codes := checkSrc(t, `async fn f(x: Future<int>): int { return x.await }`)
	if !hasCode(codes, "E_TYP_006") {
		t.Fatalf("want E_TYP_006, got %+v", codes)
	}
}

func TestCheckAcceptsAwaitOnServerCallFromComponentBody(t *testing.T) {
	codes := checkSrc(t, `@server fn add(a: int, b: int): int { return a + b }
component Page() {
	let r = await add(2, 3)
	return <div>{r}</div>
}`)
	for _, c := range codes {
		if c == "E_TYP_003" || c == "E_TYP_004" {
			t.Fatalf("unexpected await diagnostic: %+v", codes)
		}
	}
}

func TestCheckTryOperatorPropagatesResultErr(t *testing.T) {
	codes := checkSrc(t, `fn parse(s: string): Result<int, string> { return Ok(1) }
fn f(s: string): Result<int, string> {
	let n = parse(s)?
	return Ok(n)
}`)
	for _, c := range codes {
		if c == "E_TYP_001" {
			t.Fatalf("unexpected type mismatch: %+v", codes)
		}
	}
}
