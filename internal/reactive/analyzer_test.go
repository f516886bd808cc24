package reactive

import (
	"testing"

	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/parser"
)

func parseProg(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(src, "test.loom")
	prog := p.ParseProgram()
	if diags := p.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics for %q: %+v", src, diags)
	}
	return prog
}

func TestAnalyzeFlagsDotValueRead(t *testing.T) {
	prog := parseProg(t, `component Counter() {
		return <button>{c.value}</button>
	}`)
	flags := NewAnalyzer().Analyze(prog)
	if flags.Count() == 0 {
		t.Fatalf("want at least one reactive expression flagged")
	}

	comp := prog.Declarations[0].(*ast.ComponentDecl)
	ret := comp.Body.Statements[0].(*ast.ReturnStmt)
	el := ret.Value.(*ast.ElementExpr)
	exprChild := el.Children[0].(*ast.ExprChild)
	field := exprChild.Expr.(*ast.FieldExpr)
	if !flags.IsReactive(field) {
		t.Fatalf("want c.value flagged reactive")
	}
}

func TestAnalyzePropagatesThroughInfix(t *testing.T) {
	prog := parseProg(t, `fn f() { let x = c.value + 1 }`)
	flags := NewAnalyzer().Analyze(prog)
	fn := prog.Declarations[0].(*ast.FnDecl)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	infix := let.Value.(*ast.InfixExpr)
	if !flags.IsReactive(infix) {
		t.Fatalf("want infix expression flagged reactive, transitively from c.value")
	}
}

func TestAnalyzeDoesNotFlagLambdaDefinitionSite(t *testing.T) {
	prog := parseProg(t, `fn f() { let cb = () => c.value }`)
	flags := NewAnalyzer().Analyze(prog)
	fn := prog.Declarations[0].(*ast.FnDecl)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	lambda := let.Value.(*ast.LambdaExpr)
	if flags.IsReactive(lambda) {
		t.Fatalf("lambda definition site should not itself be flagged reactive")
	}
	body := lambda.Body.(ast.Expression)
	if !flags.IsReactive(body) {
		t.Fatalf("lambda body's own .value read should still be flagged")
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	prog := parseProg(t, `fn f() { let x = c.value }`)
	a := NewAnalyzer()
	first := a.Analyze(prog)
	countAfterFirst := first.Count()
	second := a.Analyze(prog)
	if second.Count() != countAfterFirst {
		t.Fatalf("re-running Analyze changed the flagged count: %d -> %d", countAfterFirst, second.Count())
	}
}
