package parser

import (
	"testing"

	"github.com/loomlang/loomc/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(src, "test.loom")
	prog := p.ParseProgram()
	if diags := p.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics for %q: %+v", src, diags)
	}
	return prog
}

func TestParseFnDecl(t *testing.T) {
	prog := parseOK(t, `fn add(a: int, b: int): int { return a + b }`)
	if len(prog.Declarations) != 1 {
		t.Fatalf("want 1 declaration, got %d", len(prog.Declarations))
	}
	fn, ok := prog.Declarations[0].(*ast.FnDecl)
	if !ok {
		t.Fatalf("want *ast.FnDecl, got %T", prog.Declarations[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("got %+v", fn)
	}
}

func TestParseComponentWithElement(t *testing.T) {
	prog := parseOK(t, `component Greeting(name: string) {
		return <div class="greeting">hello {name}</div>
	}`)
	comp, ok := prog.Declarations[0].(*ast.ComponentDecl)
	if !ok {
		t.Fatalf("want *ast.ComponentDecl, got %T", prog.Declarations[0])
	}
	if len(comp.Body.Statements) != 1 {
		t.Fatalf("want 1 statement, got %d", len(comp.Body.Statements))
	}
	ret, ok := comp.Body.Statements[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("want *ast.ReturnStmt, got %T", comp.Body.Statements[0])
	}
	el, ok := ret.Value.(*ast.ElementExpr)
	if !ok {
		t.Fatalf("want *ast.ElementExpr, got %T", ret.Value)
	}
	if el.Tag != "div" || el.IsComponent() {
		t.Fatalf("got tag %q isComponent %v", el.Tag, el.IsComponent())
	}
	if len(el.Attributes) != 1 || el.Attributes[0].Name != "class" {
		t.Fatalf("got attrs %+v", el.Attributes)
	}
	if len(el.Children) != 2 {
		t.Fatalf("want 2 children (text, expr), got %d: %+v", len(el.Children), el.Children)
	}
	text, ok := el.Children[0].(*ast.TextChild)
	if !ok || text.Text != "hello " {
		t.Fatalf("got first child %+v", el.Children[0])
	}
	exprChild, ok := el.Children[1].(*ast.ExprChild)
	if !ok {
		t.Fatalf("got second child %T", el.Children[1])
	}
	if _, ok := exprChild.Expr.(*ast.Identifier); !ok {
		t.Fatalf("want identifier in expr child, got %T", exprChild.Expr)
	}
}

func TestParseNestedElementsTwoLevelsDeep(t *testing.T) {
	prog := parseOK(t, `component Outer() {
		return <div><span><b>x</b></span></div>
	}`)
	comp := prog.Declarations[0].(*ast.ComponentDecl)
	ret := comp.Body.Statements[0].(*ast.ReturnStmt)
	outer := ret.Value.(*ast.ElementExpr)
	if outer.Tag != "div" || len(outer.Children) != 1 {
		t.Fatalf("got outer %+v", outer)
	}
	middle, ok := outer.Children[0].(*ast.ElementExpr)
	if !ok || middle.Tag != "span" || len(middle.Children) != 1 {
		t.Fatalf("got middle %+v", middle)
	}
	inner, ok := middle.Children[0].(*ast.ElementExpr)
	if !ok || inner.Tag != "b" || len(inner.Children) != 1 {
		t.Fatalf("got inner %+v", inner)
	}
	text, ok := inner.Children[0].(*ast.TextChild)
	if !ok || text.Text != "x" {
		t.Fatalf("got inner text %+v", inner.Children[0])
	}
}

func TestParseComponentTagIsComponentInvocation(t *testing.T) {
	prog := parseOK(t, `component Page() {
		return <Greeting name="world" />
	}`)
	comp := prog.Declarations[0].(*ast.ComponentDecl)
	ret := comp.Body.Statements[0].(*ast.ReturnStmt)
	el := ret.Value.(*ast.ElementExpr)
	if !el.IsComponent() || !el.SelfClosed {
		t.Fatalf("got %+v", el)
	}
}

func TestParseLessThanIsInfixOutsideExpressionStart(t *testing.T) {
	prog := parseOK(t, `fn cmp(a: int, b: int): bool { return a < b }`)
	fn := prog.Declarations[0].(*ast.FnDecl)
	ret := fn.Body.Statements[0].(*ast.ReturnStmt)
	infix, ok := ret.Value.(*ast.InfixExpr)
	if !ok || infix.Op != "<" {
		t.Fatalf("want less-than infix expr, got %T %+v", ret.Value, ret.Value)
	}
}

func TestParseLambdaVsGroupedExpr(t *testing.T) {
	prog := parseOK(t, `let add = (a, b) => a + b
let grouped = (1 + 2) * 3`)
	letAdd := prog.Declarations[0].(*ast.LetModuleDecl)
	lambda, ok := letAdd.Value.(*ast.LambdaExpr)
	if !ok || len(lambda.Params) != 2 {
		t.Fatalf("want 2-param lambda, got %T %+v", letAdd.Value, letAdd.Value)
	}

	letGrouped := prog.Declarations[1].(*ast.LetModuleDecl)
	infix, ok := letGrouped.Value.(*ast.InfixExpr)
	if !ok || infix.Op != "*" {
		t.Fatalf("want multiplication at top level, got %T %+v", letGrouped.Value, letGrouped.Value)
	}
	if _, ok := infix.Left.(*ast.InfixExpr); !ok {
		t.Fatalf("want grouped addition on the left, got %T", infix.Left)
	}
}

func TestParseStyleDecl(t *testing.T) {
	prog := parseOK(t, `style Card {
		.title {
			color: red;
			padding: 4px 8px;
		}
		.body {
			font-size: 14px
		}
	}`)
	sd, ok := prog.Declarations[0].(*ast.StyleDecl)
	if !ok {
		t.Fatalf("want *ast.StyleDecl, got %T", prog.Declarations[0])
	}
	if sd.Name != "Card" || len(sd.Rules) != 2 {
		t.Fatalf("got %+v", sd)
	}
	title := sd.Rules[0]
	if len(title.Selectors) != 1 || title.Selectors[0] != ".title" {
		t.Fatalf("got selectors %+v", title.Selectors)
	}
	if len(title.Declarations) != 2 {
		t.Fatalf("got declarations %+v", title.Declarations)
	}
	if title.Declarations[0].Property != "color" || title.Declarations[0].Value != "red" {
		t.Fatalf("got %+v", title.Declarations[0])
	}
	body := sd.Rules[1]
	if len(body.Declarations) != 1 || body.Declarations[0].Property != "font-size" {
		t.Fatalf("got %+v", body.Declarations)
	}
}

func TestParseStyleNestedRuleGroup(t *testing.T) {
	prog := parseOK(t, `style Card {
		.title {
			color: red;
			.icon {
				color: blue;
			}
		}
	}`)
	sd := prog.Declarations[0].(*ast.StyleDecl)
	title := sd.Rules[0]
	if len(title.Nested) != 1 {
		t.Fatalf("want 1 nested rule, got %+v", title.Nested)
	}
	if title.Nested[0].Selectors[0] != ".icon" {
		t.Fatalf("got nested selector %+v", title.Nested[0].Selectors)
	}
}

func TestParseUseDeclWithAliasAndGlob(t *testing.T) {
	prog := parseOK(t, `use ui::{Button as Btn, Card}
use util::*
fn f() { }`)
	if len(prog.Uses) != 2 {
		t.Fatalf("want 2 use decls, got %d", len(prog.Uses))
	}
	if prog.Uses[0].Items[0].Name != "Button" || prog.Uses[0].Items[0].Alias != "Btn" {
		t.Fatalf("got %+v", prog.Uses[0].Items)
	}
	if !prog.Uses[1].Glob {
		t.Fatalf("want glob import, got %+v", prog.Uses[1])
	}
}

func TestParseAnnotation(t *testing.T) {
	prog := parseOK(t, `@server
fn save(id: int) { }`)
	fn := prog.Declarations[0].(*ast.FnDecl)
	if len(fn.Annotations) != 1 || fn.Annotations[0].Name != "server" {
		t.Fatalf("got %+v", fn.Annotations)
	}
}

func TestSyntaxErrorRecoversAndContinuesParsing(t *testing.T) {
	p := New(`fn broken( {
fn ok() { }`, "test.loom")
	prog := p.ParseProgram()
	if len(p.Diagnostics()) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
	var foundOK bool
	for _, d := range prog.Declarations {
		if fn, ok := d.(*ast.FnDecl); ok && fn.Name == "ok" {
			foundOK = true
		}
	}
	if !foundOK {
		t.Fatalf("expected parser to recover and still parse 'ok', got %+v", prog.Declarations)
	}
}
