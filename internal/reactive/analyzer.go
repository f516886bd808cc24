// Package reactive marks every expression node that reads reactive state,
// so the Emitter knows which rendered-position expressions need the
// signal-wrapping transform. It runs after the type checker, which has
// already rejected any `.value` access on a non-reactive receiver — so by
// the time this pass sees a FieldExpr named "value", it is guaranteed to be
// a reactive-handle read and does not need its own copy of type info.
package reactive

import "github.com/loomlang/loomc/internal/ast"

// Analyzer marks reactive expressions into a FlagTable. It never mutates
// the AST itself, matching the immutable-AST invariant: the "is-reactive"
// fact is recorded out of band and looked up by node identity.
type Analyzer struct {
	flags *ast.FlagTable
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{flags: ast.NewFlagTable()}
}

// Analyze walks prog and returns the populated flag table. Re-running
// Analyze on the same program is idempotent: MarkReactive on an
// already-true key is a no-op write, satisfying the wrapper-idempotence
// property.
func (a *Analyzer) Analyze(prog *ast.Program) *ast.FlagTable {
	for _, d := range prog.Declarations {
		a.walkDecl(d)
	}
	return a.flags
}

func (a *Analyzer) walkDecl(d ast.Declaration) {
	switch decl := d.(type) {
	case *ast.FnDecl:
		a.walkBlock(decl.Body)
	case *ast.ComponentDecl:
		a.walkBlock(decl.Body)
	case *ast.ImplDecl:
		for _, m := range decl.Methods {
			a.walkBlock(m.Body)
		}
	case *ast.LetModuleDecl:
		if decl.Value != nil {
			a.walkExpr(decl.Value)
		}
	}
}

func (a *Analyzer) walkBlock(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		a.walkStmt(s)
	}
}

func (a *Analyzer) walkStmt(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.LetStmt:
		if stmt.Value != nil {
			a.walkExpr(stmt.Value)
		}
	case *ast.AssignStmt:
		a.walkExpr(stmt.Target)
		a.walkExpr(stmt.Value)
	case *ast.ExprStmt:
		a.walkExpr(stmt.Expr)
	case *ast.ReturnStmt:
		if stmt.Value != nil {
			a.walkExpr(stmt.Value)
		}
	case *ast.WhileStmt:
		a.walkExpr(stmt.Cond)
		a.walkBlock(stmt.Body)
	case *ast.ForStmt:
		a.walkExpr(stmt.Iterable)
		a.walkBlock(stmt.Body)
	case *ast.LoopStmt:
		a.walkBlock(stmt.Body)
	case *ast.BlockStmt:
		a.walkBlock(stmt)
	}
}

// walkExpr recurses into e's evaluated sub-expressions and returns whether
// e itself is reactive, marking the flag table as it goes. A lambda body
// is still walked (so its own reads get flagged for when it is later
// invoked), but the LambdaExpr node itself never reports as reactive to its
// caller — it is not evaluated at the definition site.
func (a *Analyzer) walkExpr(e ast.Expression) bool {
	if e == nil {
		return false
	}
	switch expr := e.(type) {
	case *ast.Identifier, *ast.IntegerLiteral, *ast.FloatLiteral, *ast.BoolLiteral, *ast.NilLiteral, *ast.StringLiteral:
		return false

	case *ast.TemplateStringExpr:
		reactive := false
		for _, sub := range expr.Exprs {
			if a.walkExpr(sub) {
				reactive = true
			}
		}
		return a.mark(expr, reactive)

	case *ast.PrefixExpr:
		return a.mark(expr, a.walkExpr(expr.Operand))

	case *ast.PostfixExpr:
		return a.mark(expr, a.walkExpr(expr.Operand))

	case *ast.InfixExpr:
		l := a.walkExpr(expr.Left)
		r := a.walkExpr(expr.Right)
		return a.mark(expr, l || r)

	case *ast.FieldExpr:
		targetReactive := a.walkExpr(expr.Target)
		selfReactive := expr.Name == "value"
		return a.mark(expr, targetReactive || selfReactive)

	case *ast.CallExpr:
		reactive := a.walkExpr(expr.Callee)
		for _, arg := range expr.Args {
			if a.walkExpr(arg) {
				reactive = true
			}
		}
		return a.mark(expr, reactive)

	case *ast.IndexExpr:
		t := a.walkExpr(expr.Target)
		i := a.walkExpr(expr.Index)
		return a.mark(expr, t || i)

	case *ast.IfExpr:
		reactive := a.walkExpr(expr.Cond)
		a.walkBlock(expr.Then)
		switch els := expr.Else.(type) {
		case *ast.BlockStmt:
			a.walkBlock(els)
		case ast.Expression:
			if a.walkExpr(els) {
				reactive = true
			}
		}
		return a.mark(expr, reactive)

	case *ast.MatchExpr:
		reactive := a.walkExpr(expr.Subject)
		for _, arm := range expr.Arms {
			if arm.Guard != nil && a.walkExpr(arm.Guard) {
				reactive = true
			}
			if a.walkExpr(arm.Body) {
				reactive = true
			}
		}
		return a.mark(expr, reactive)

	case *ast.TernaryExpr:
		c := a.walkExpr(expr.Cond)
		t := a.walkExpr(expr.Then)
		f := a.walkExpr(expr.Else)
		return a.mark(expr, c || t || f)

	case *ast.LambdaExpr:
		switch body := expr.Body.(type) {
		case *ast.BlockStmt:
			a.walkBlock(body)
		case ast.Expression:
			a.walkExpr(body)
		}
		// Not evaluated at definition site — never reactive to its caller.
		return false

	case *ast.RangeExpr:
		s := a.walkExpr(expr.Start)
		e2 := a.walkExpr(expr.End)
		return a.mark(expr, s || e2)

	case *ast.AwaitExpr:
		return a.mark(expr, a.walkExpr(expr.Operand))

	case *ast.ElementExpr:
		return a.walkElement(expr)
	}
	return false
}

// walkElement marks every rendered-position expression (attribute value,
// expression child) reactive if it reads reactive state; the element node
// itself is not flagged — the Emitter wraps the individual child/attribute
// expressions, not the element as a whole.
func (a *Analyzer) walkElement(el *ast.ElementExpr) bool {
	for _, attr := range el.Attributes {
		a.walkExpr(attr.Value)
	}
	for _, child := range el.Children {
		switch c := child.(type) {
		case *ast.ExprChild:
			a.walkExpr(c.Expr)
		case *ast.ElementExpr:
			a.walkElement(c)
		}
	}
	return false
}

func (a *Analyzer) mark(e ast.Expression, reactive bool) bool {
	if reactive {
		a.flags.MarkReactive(e)
	}
	return reactive
}
