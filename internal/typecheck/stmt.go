package typecheck

import (
	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/types"
)

func (c *Checker) checkBlock(b *ast.BlockStmt, sc *scope) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		c.checkStmt(s, sc)
	}
}

func (c *Checker) checkStmt(s ast.Statement, sc *scope) {
	switch stmt := s.(type) {
	case *ast.LetStmt:
		valType := c.inferExpr(stmt.Value, sc)
		if stmt.Type != nil {
			declared := c.reg.resolveTypeExpr(stmt.Type)
			c.requireAssignable(declared, valType, stmt.Value)
			sc.define(stmt.Name, declared)
		} else {
			sc.define(stmt.Name, valType)
		}

	case *ast.AssignStmt:
		c.checkAssign(stmt, sc)

	case *ast.ExprStmt:
		c.inferExpr(stmt.Expr, sc)

	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return
		}
		valType := c.inferExpr(stmt.Value, sc)
		c.requireAssignable(c.fnResult, valType, stmt.Value)

	case *ast.WhileStmt:
		c.inferExpr(stmt.Cond, sc)
		c.checkBlock(stmt.Body, newScope(sc))

	case *ast.ForStmt:
		iterType := c.inferExpr(stmt.Iterable, sc)
		inner := newScope(sc)
		if arr, ok := iterType.(*types.ArrayType); ok {
			inner.define(stmt.Binding, arr.Elem)
		} else {
			inner.define(stmt.Binding, types.Unknown)
		}
		c.checkBlock(stmt.Body, inner)

	case *ast.LoopStmt:
		c.checkBlock(stmt.Body, newScope(sc))

	case *ast.BlockStmt:
		c.checkBlock(stmt, newScope(sc))
	}
}

// checkAssign validates a plain assignment and specifically rejects
// reassigning a reactive binding directly (`count = …` where `count` is
// Reactive<T>) — the binding's signal identity must be preserved; only
// `.value` may be written through.
func (c *Checker) checkAssign(stmt *ast.AssignStmt, sc *scope) {
	valType := c.inferExpr(stmt.Value, sc)

	if ident, ok := stmt.Target.(*ast.Identifier); ok {
		if targetType, found := sc.resolve(ident.Name); found {
			if _, isReactive := types.IsReactive(targetType); isReactive {
				c.bag.Add(diag.Diagnostic{
					Code:       diag.CodeReactiveReassign,
					Severity:   diag.SeverityError,
					Message:    "cannot reassign reactive binding " + ident.Name,
					Primary:    spanOf(stmt),
					Suggestion: "write " + ident.Name + ".value = … instead",
				})
				return
			}
			c.requireAssignable(targetType, valType, stmt.Value)
			return
		}
	}

	targetType := c.inferExpr(stmt.Target, sc)
	c.requireAssignable(targetType, valType, stmt.Value)
}
