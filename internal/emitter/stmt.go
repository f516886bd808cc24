package emitter

import (
	"fmt"
	"strings"

	"github.com/loomlang/loomc/internal/ast"
)

// emitStmt lowers one statement to zero or more JS source lines.
func (em *Emitter) emitStmt(s ast.Statement) []string {
	switch stmt := s.(type) {
	case *ast.LetStmt:
		kw := "const"
		if stmt.Mut {
			kw = "let"
		}
		return []string{fmt.Sprintf("%s %s = %s;", kw, stmt.Name, em.emitExpr(stmt.Value))}

	case *ast.AssignStmt:
		return []string{fmt.Sprintf("%s %s %s;", em.emitExpr(stmt.Target), assignOpStr(stmt.Op), em.emitExpr(stmt.Value))}

	case *ast.ExprStmt:
		return []string{em.emitExpr(stmt.Expr) + ";"}

	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return []string{"return;"}
		}
		return []string{"return " + em.emitExpr(stmt.Value) + ";"}

	case *ast.BreakStmt:
		return []string{"break;"}

	case *ast.ContinueStmt:
		return []string{"continue;"}

	case *ast.WhileStmt:
		return []string{fmt.Sprintf("while (%s) { %s }", em.emitExpr(stmt.Cond), em.emitBlockBody(stmt.Body))}

	case *ast.ForStmt:
		return []string{fmt.Sprintf("for (const %s of %s) { %s }", stmt.Binding, em.emitExpr(stmt.Iterable), em.emitBlockBody(stmt.Body))}

	case *ast.LoopStmt:
		return []string{fmt.Sprintf("while (true) { %s }", em.emitBlockBody(stmt.Body))}

	case *ast.ScriptStmt:
		return []string{stmt.Raw}

	case *ast.BlockStmt:
		return []string{"{ " + em.emitBlockBody(stmt) + " }"}
	}
	return nil
}

func assignOpStr(op ast.AssignOp) string {
	switch op {
	case ast.AssignAdd:
		return "+="
	case ast.AssignSub:
		return "-="
	case ast.AssignMul:
		return "*="
	case ast.AssignDiv:
		return "/="
	case ast.AssignOr:
		return "||="
	case ast.AssignAnd:
		return "&&="
	case ast.AssignCoalesce:
		return "??="
	default:
		return "="
	}
}

// emitBlockBody flattens a block's statements into one line sequence, with
// no implicit return on the final statement — used for loop/while bodies,
// where a trailing expression statement is just a side effect, not a
// value.
func (em *Emitter) emitBlockBody(b *ast.BlockStmt) string {
	if b == nil {
		return ""
	}
	var lines []string
	for _, s := range b.Statements {
		lines = append(lines, em.emitStmt(s)...)
	}
	return strings.Join(lines, " ")
}

// emitFnBody emits a function/component/lambda body as a braced block,
// turning its return statements through as-is. If the body uses the `?`
// try-propagation operator anywhere, the whole block is wrapped in a
// try/catch that turns a caught `__isPropagate` error into an early return
// — see expr.go's emitPostfix for the matching throw site.
func (em *Emitter) emitFnBody(b *ast.BlockStmt) string {
	body := em.emitBlockBody(b)
	if containsTryOperator(b) {
		return fmt.Sprintf("{ try { %s } catch (__e) { if (__e && __e.__isPropagate) return __e.value; throw __e; } }", body)
	}
	return "{ " + body + " }"
}

// emitComponentBody is emitFnBody specialized for a component: when the
// component has a synthesized style class, the final `return <element>`
// statement has that class merged onto its root element. Any other body
// shape falls back to the plain function-body lowering untouched.
func (em *Emitter) emitComponentBody(b *ast.BlockStmt, className string) string {
	if className == "" || b == nil || len(b.Statements) == 0 {
		return em.emitFnBody(b)
	}
	last, ok := b.Statements[len(b.Statements)-1].(*ast.ReturnStmt)
	if !ok || last.Value == nil {
		return em.emitFnBody(b)
	}
	el, ok := last.Value.(*ast.ElementExpr)
	if !ok {
		return em.emitFnBody(b)
	}

	var lines []string
	for _, s := range b.Statements[:len(b.Statements)-1] {
		lines = append(lines, em.emitStmt(s)...)
	}
	lines = append(lines, "return "+em.emitElementWithClass(el, className)+";")
	body := strings.Join(lines, " ")
	if containsTryOperator(b) {
		return fmt.Sprintf("{ try { %s } catch (__e) { if (__e && __e.__isPropagate) return __e.value; throw __e; } }", body)
	}
	return "{ " + body + " }"
}

func containsTryOperator(b *ast.BlockStmt) bool {
	found := false
	var walkExpr func(ast.Expression)
	var walkStmt func(ast.Statement)
	var walkBlock func(*ast.BlockStmt)

	walkExpr = func(e ast.Expression) {
		if e == nil || found {
			return
		}
		switch expr := e.(type) {
		case *ast.PostfixExpr:
			if expr.Op == "?" {
				found = true
				return
			}
			walkExpr(expr.Operand)
		case *ast.PrefixExpr:
			walkExpr(expr.Operand)
		case *ast.InfixExpr:
			walkExpr(expr.Left)
			walkExpr(expr.Right)
		case *ast.FieldExpr:
			walkExpr(expr.Target)
		case *ast.CallExpr:
			walkExpr(expr.Callee)
			for _, a := range expr.Args {
				walkExpr(a)
			}
		case *ast.IndexExpr:
			walkExpr(expr.Target)
			walkExpr(expr.Index)
		case *ast.TernaryExpr:
			walkExpr(expr.Cond)
			walkExpr(expr.Then)
			walkExpr(expr.Else)
		case *ast.AwaitExpr:
			walkExpr(expr.Operand)
		}
	}
	walkStmt = func(s ast.Statement) {
		if found {
			return
		}
		switch stmt := s.(type) {
		case *ast.LetStmt:
			walkExpr(stmt.Value)
		case *ast.AssignStmt:
			walkExpr(stmt.Value)
		case *ast.ExprStmt:
			walkExpr(stmt.Expr)
		case *ast.ReturnStmt:
			walkExpr(stmt.Value)
		case *ast.WhileStmt:
			walkExpr(stmt.Cond)
			walkBlock(stmt.Body)
		case *ast.ForStmt:
			walkExpr(stmt.Iterable)
			walkBlock(stmt.Body)
		case *ast.LoopStmt:
			walkBlock(stmt.Body)
		case *ast.BlockStmt:
			walkBlock(stmt)
		}
	}
	walkBlock = func(blk *ast.BlockStmt) {
		if blk == nil {
			return
		}
		for _, s := range blk.Statements {
			walkStmt(s)
		}
	}
	walkBlock(b)
	return found
}

// emitMatchExpr lowers `match subject { pattern [if guard] => body, ... }`
// to an IIFE testing each arm's pattern in order and returning the first
// matching arm's body; a non-exhaustive runtime match throws, the
// compile-time exhaustiveness check having already run in the type
// checker.
func (em *Emitter) emitMatchExpr(m *ast.MatchExpr) string {
	var b strings.Builder
	b.WriteString("(() => {\n")
	fmt.Fprintf(&b, "  const __subject = %s;\n", em.emitExpr(m.Subject))
	for _, arm := range m.Arms {
		test, binds := em.patternTest("__subject", arm.Pattern)
		if arm.Guard != nil {
			test = fmt.Sprintf("(%s) && (%s)", test, em.emitExpr(arm.Guard))
		}
		fmt.Fprintf(&b, "  if (%s) { %s return %s; }\n", test, strings.Join(binds, " "), em.emitExpr(arm.Body))
	}
	b.WriteString("  throw new Error(\"non-exhaustive match\");\n")
	b.WriteString("})()")
	return b.String()
}

// patternTest returns the boolean test expression and the `let`/`const`
// binding statements a pattern introduces, given a JS expression string
// naming the value being matched.
func (em *Emitter) patternTest(subject string, p ast.Pattern) (test string, binds []string) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return "true", nil
	case *ast.BindingPattern:
		return "true", []string{fmt.Sprintf("const %s = %s;", pat.Name, subject)}
	case *ast.LiteralPattern:
		return fmt.Sprintf("%s === %s", subject, em.emitExpr(pat.Value)), nil
	case *ast.VariantPattern:
		test = fmt.Sprintf("(%s && %s.tag === %q)", subject, subject, pat.Variant)
		for i, sub := range pat.Binds {
			valueExpr := fmt.Sprintf("%s.values[%d]", subject, i)
			subTest, subBinds := em.patternTest(valueExpr, sub)
			if subTest != "true" {
				test = fmt.Sprintf("%s && %s", test, subTest)
			}
			binds = append(binds, subBinds...)
		}
		return test, binds
	default:
		return "true", nil
	}
}
