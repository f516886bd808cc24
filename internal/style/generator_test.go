package style

import (
	"strings"
	"testing"

	"github.com/loomlang/loomc/internal/parser"
)

func TestGenerateScopesSelectorsUnderSynthesizedClass(t *testing.T) {
	p := parser.New(`component Card() {
	return <div><h2>T</h2></div>
}
style Card {
	h2 {
		color: red;
	}
}`, "test.loom")
	prog := p.ParseProgram()
	if diags := p.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	sheets, classNames := NewGenerator().Generate(prog)
	if len(sheets) != 1 {
		t.Fatalf("want 1 sheet, got %d", len(sheets))
	}
	cls, ok := classNames["Card"]
	if !ok || !strings.HasPrefix(cls, "Card-") {
		t.Fatalf("want a Card-<hash> class name, got %q", cls)
	}
	want := "." + cls + " h2 {"
	if !strings.Contains(sheets[0].CSS, want) {
		t.Fatalf("want CSS to contain %q, got:\n%s", want, sheets[0].CSS)
	}
}

func TestGenerateFlattensNestedRule(t *testing.T) {
	p := parser.New(`style Card {
	.title {
		color: red;
		.icon {
			color: blue;
		}
	}
}`, "test.loom")
	prog := p.ParseProgram()
	sheets, _ := NewGenerator().Generate(prog)
	css := sheets[0].CSS
	if !strings.Contains(css, " .title .icon {") {
		t.Fatalf("want flattened nested selector '.title .icon', got:\n%s", css)
	}
}

func TestHashIsDeterministic(t *testing.T) {
	src := `style Card { h2 { color: red; } }`
	p1 := parser.New(src, "a.loom")
	sheets1, _ := NewGenerator().Generate(p1.ParseProgram())
	p2 := parser.New(src, "b.loom")
	sheets2, _ := NewGenerator().Generate(p2.ParseProgram())
	if sheets1[0].ClassName != sheets2[0].ClassName {
		t.Fatalf("want identical class names for identical content, got %q vs %q", sheets1[0].ClassName, sheets2[0].ClassName)
	}
}
