// Package emitter lowers a type-checked, reactive-flagged AST to
// JavaScript: a client bundle, a server bundle, scoped CSS (delegated to
// internal/style), and an HTML entry. It follows the established code-
// generation texture — string-builder-based emission with small per-node-
// kind lowering functions — generalized from DWScript's Pascal-to-something
// lowering to AST-to-JavaScript lowering.
package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loomlang/loomc/internal/ast"
)

// Emitter holds the per-compilation-unit state the expression and
// statement lowerers need: the reactive flag table (for the wrapping
// transform) and the style class-name lookup (for root-element class
// injection).
type Emitter struct {
	Flags      *ast.FlagTable
	ClassNames map[string]string // StyleDecl.Name -> synthesized class
}

func New(flags *ast.FlagTable, classNames map[string]string) *Emitter {
	if flags == nil {
		flags = ast.NewFlagTable()
	}
	return &Emitter{Flags: flags, ClassNames: classNames}
}

// emitExpr lowers e to a single JS expression with no reactive wrapping —
// wrapping only ever happens at the two rendered-position call sites
// (element attribute value and element expression child), handled by
// emitRenderedExpr. Statements are never wrapped.
func (em *Emitter) emitExpr(e ast.Expression) string {
	if e == nil {
		return "undefined"
	}
	switch expr := e.(type) {
	case *ast.Identifier:
		return expr.Name
	case *ast.IntegerLiteral:
		return strconv.FormatInt(expr.Value, 10)
	case *ast.FloatLiteral:
		return strconv.FormatFloat(expr.Value, 'g', -1, 64)
	case *ast.BoolLiteral:
		return strconv.FormatBool(expr.Value)
	case *ast.NilLiteral:
		return "null"
	case *ast.StringLiteral:
		return strconv.Quote(expr.Value)
	case *ast.TemplateStringExpr:
		return em.emitTemplateString(expr)
	case *ast.PrefixExpr:
		return em.emitPrefix(expr)
	case *ast.PostfixExpr:
		return em.emitPostfix(expr)
	case *ast.InfixExpr:
		if expr.Op == "|>" {
			// `x |> f` lowers to a plain call: pipe has no JS operator
			// equivalent, so the right-hand side is applied as a function
			// to the left-hand value.
			return fmt.Sprintf("(%s)(%s)", em.emitExpr(expr.Right), em.emitExpr(expr.Left))
		}
		return fmt.Sprintf("(%s %s %s)", em.emitExpr(expr.Left), expr.Op, em.emitExpr(expr.Right))
	case *ast.FieldExpr:
		dot := "."
		if expr.Optional {
			dot = "?."
		}
		return em.emitExpr(expr.Target) + dot + expr.Name
	case *ast.CallExpr:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = em.emitExpr(a)
		}
		return fmt.Sprintf("%s(%s)", em.emitExpr(expr.Callee), strings.Join(args, ", "))
	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", em.emitExpr(expr.Target), em.emitExpr(expr.Index))
	case *ast.IfExpr:
		return em.emitIfExpr(expr)
	case *ast.MatchExpr:
		return em.emitMatchExpr(expr)
	case *ast.TernaryExpr:
		return fmt.Sprintf("(%s ? %s : %s)", em.emitExpr(expr.Cond), em.emitExpr(expr.Then), em.emitExpr(expr.Else))
	case *ast.LambdaExpr:
		return em.emitLambda(expr)
	case *ast.RangeExpr:
		return em.emitRange(expr)
	case *ast.AwaitExpr:
		return "(await " + em.emitExpr(expr.Operand) + ")"
	case *ast.ElementExpr:
		return em.emitElement(expr)
	default:
		return "/* unsupported expression */ undefined"
	}
}

// emitRenderedExpr is the reactive-wrapping entry point: an expression
// appearing in a rendered position (attribute value or element child)
// that the Reactive Analyzer flagged gets
// wrapped in a signal+effect pair so the runtime's `h` can subscribe to it
// directly, 
func (em *Emitter) emitRenderedExpr(e ast.Expression) string {
	plain := em.emitExpr(e)
	if e == nil || !em.Flags.IsReactive(e) {
		return plain
	}
	return fmt.Sprintf("(() => {\n  let __cell = signal(undefined);\n  effect(() => { __cell.value = %s; });\n  return __cell;\n})()", plain)
}

func (em *Emitter) emitTemplateString(t *ast.TemplateStringExpr) string {
	var b strings.Builder
	b.WriteString("`")
	for i, part := range t.Parts {
		b.WriteString(jsTemplateEscape(part))
		if i < len(t.Exprs) {
			b.WriteString("${")
			b.WriteString(em.emitExpr(t.Exprs[i]))
			b.WriteString("}")
		}
	}
	b.WriteString("`")
	return b.String()
}

func jsTemplateEscape(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "`", "\\`", "$", "\\$")
	return r.Replace(s)
}

func (em *Emitter) emitPrefix(p *ast.PrefixExpr) string {
	if p.Op == "await" {
		return "(await " + em.emitExpr(p.Operand) + ")"
	}
	return "(" + p.Op + em.emitExpr(p.Operand) + ")"
}

// emitPostfix lowers the try-propagation operator `?`. Because JavaScript
// has no source-level early-return-from-expression construct, `?` lowers
// to a call to `__tryUnwrap` (defined in the client bundle's preamble,
// see client.go), which throws an Error flagged `__isPropagate`;
// every function body containing a `?` anywhere is wrapped (see stmt.go's
// emitFnBody) in a try/catch that unwraps the sentinel into an early
// return, reproducing the same call-site-local control flow as a native
// early return without a generator or continuation-passing rewrite.
func (em *Emitter) emitPostfix(p *ast.PostfixExpr) string {
	if p.Op == "?" {
		return "__tryUnwrap(" + em.emitExpr(p.Operand) + ")"
	}
	return "(" + em.emitExpr(p.Operand) + p.Op + ")"
}

func (em *Emitter) emitLambda(l *ast.LambdaExpr) string {
	params := make([]string, len(l.Params))
	for i, p := range l.Params {
		params[i] = p.Name
	}
	async := ""
	if l.Async {
		async = "async "
	}
	switch body := l.Body.(type) {
	case ast.Expression:
		return fmt.Sprintf("(%s(%s) => %s)", async, strings.Join(params, ", "), em.emitExpr(body))
	case *ast.BlockStmt:
		return fmt.Sprintf("(%s(%s) => %s)", async, strings.Join(params, ", "), em.emitFnBody(body))
	default:
		return fmt.Sprintf("(%s(%s) => undefined)", async, strings.Join(params, ", "))
	}
}

func (em *Emitter) emitRange(r *ast.RangeExpr) string {
	op := "<"
	if r.Inclusive {
		op = "<="
	}
	start := em.emitExpr(r.Start)
	end := em.emitExpr(r.End)
	return fmt.Sprintf("(function*(){ for (let __i = %s; __i %s %s; __i++) yield __i; })()", start, op, end)
}

func (em *Emitter) emitIfExpr(i *ast.IfExpr) string {
	var b strings.Builder
	b.WriteString("(() => {\n")
	em.writeIfChain(&b, i)
	b.WriteString("})()")
	return b.String()
}

func (em *Emitter) writeIfChain(b *strings.Builder, i *ast.IfExpr) {
	fmt.Fprintf(b, "if (%s) { %s }", em.emitExpr(i.Cond), em.emitReturningBlock(i.Then))
	switch els := i.Else.(type) {
	case *ast.IfExpr:
		b.WriteString(" else ")
		em.writeIfChain(b, els)
	case *ast.BlockStmt:
		fmt.Fprintf(b, " else { %s }", em.emitReturningBlock(els))
	}
	b.WriteString("\n")
}

// emitReturningBlock emits a block's statements with its final expression
// statement (if any) turned into a `return`, so an IfExpr/MatchExpr arm
// used as an expression yields a value from its IIFE.
func (em *Emitter) emitReturningBlock(blk *ast.BlockStmt) string {
	if blk == nil || len(blk.Statements) == 0 {
		return ""
	}
	var lines []string
	for idx, s := range blk.Statements {
		if idx == len(blk.Statements)-1 {
			if exprStmt, ok := s.(*ast.ExprStmt); ok {
				lines = append(lines, "return "+em.emitExpr(exprStmt.Expr)+";")
				continue
			}
		}
		lines = append(lines, em.emitStmt(s)...)
	}
	return strings.Join(lines, " ")
}

