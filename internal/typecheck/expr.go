package typecheck

import (
	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/types"
)

// requireAssignable reports a type mismatch unless val is structurally
// equal to want, widening numeric kinds only when explicitly requested at
// the call site (the design: "widening between numeric kinds is
// explicit") — so this never silently accepts int where float is wanted.
// Unknown never triggers a cascading error once one has already fired for
// this expression.
func (c *Checker) requireAssignable(want, val types.Type, at ast.Node) {
	if want == nil || val == nil || want == types.Unknown || val == types.Unknown {
		return
	}
	if types.Equal(want, val) {
		return
	}
	c.bag.Errorf(diag.CodeTypeMismatch, spanOf(at), "expected %s, got %s", want, val)
}

func (c *Checker) inferExpr(e ast.Expression, sc *scope) types.Type {
	if e == nil {
		return types.Unknown
	}
	switch expr := e.(type) {
	case *ast.IntegerLiteral:
		return types.Int
	case *ast.FloatLiteral:
		return types.Float
	case *ast.BoolLiteral:
		return types.Bool
	case *ast.StringLiteral:
		return types.String
	case *ast.TemplateStringExpr:
		for _, sub := range expr.Exprs {
			c.inferExpr(sub, sc)
		}
		return types.String
	case *ast.NilLiteral:
		return types.Unknown

	case *ast.Identifier:
		if t, ok := sc.resolve(expr.Name); ok {
			return t
		}
		return types.Unknown

	case *ast.PrefixExpr:
		return c.inferExpr(expr.Operand, sc)

	case *ast.PostfixExpr:
		return c.checkTryOperator(expr, sc)

	case *ast.InfixExpr:
		lt := c.inferExpr(expr.Left, sc)
		rt := c.inferExpr(expr.Right, sc)
		switch expr.Op {
		case "==", "!=", "<", "<=", ">", ">=", "&&", "||", "??":
			return types.Bool
		default:
			if types.Equal(lt, rt) {
				return lt
			}
			return types.Unknown
		}

	case *ast.FieldExpr:
		return c.checkField(expr, sc)

	case *ast.CallExpr:
		return c.checkCall(expr, sc)

	case *ast.IndexExpr:
		targetType := c.inferExpr(expr.Target, sc)
		c.inferExpr(expr.Index, sc)
		switch tt := targetType.(type) {
		case *types.ArrayType:
			return tt.Elem
		case *types.MapType:
			return tt.Value
		}
		return types.Unknown

	case *ast.IfExpr:
		c.inferExpr(expr.Cond, sc)
		c.checkBlock(expr.Then, newScope(sc))
		switch els := expr.Else.(type) {
		case *ast.IfExpr:
			return c.inferExpr(els, sc)
		case *ast.BlockStmt:
			c.checkBlock(els, newScope(sc))
		}
		return types.Unknown

	case *ast.MatchExpr:
		return c.checkMatch(expr, sc)

	case *ast.TernaryExpr:
		c.inferExpr(expr.Cond, sc)
		thenT := c.inferExpr(expr.Then, sc)
		c.inferExpr(expr.Else, sc)
		return thenT

	case *ast.LambdaExpr:
		return c.checkLambda(expr, sc)

	case *ast.RangeExpr:
		c.inferExpr(expr.Start, sc)
		c.inferExpr(expr.End, sc)
		return &types.ArrayType{Elem: types.Int}

	case *ast.AwaitExpr:
		return c.checkAwait(expr.Operand, expr, sc)

	case *ast.ElementExpr:
		c.checkElement(expr, sc)
		return types.Element
	}
	return types.Unknown
}

// checkField resolves a field access, applying the two dedicated field-
// access contracts: `.value` is rejected on a non-reactive receiver, and a
// bare `.await` (postfix, as opposed to the prefix `await expr` form) is
// always rejected regardless of receiver type.
func (c *Checker) checkField(expr *ast.FieldExpr, sc *scope) types.Type {
	targetType := c.inferExpr(expr.Target, sc)

	if expr.Name == "await" {
		c.bag.Add(diag.Diagnostic{
			Code:       diag.CodePostfixAwait,
			Severity:   diag.SeverityError,
			Message:    "postfix .await is not supported",
			Primary:    spanOf(expr),
			Suggestion: "use the prefix form: await " + expr.Target.String(),
		})
		return types.Unknown
	}

	if expr.Name == "value" {
		rt, ok := types.IsReactive(targetType)
		if !ok && targetType != types.Unknown {
			c.bag.Add(diag.Diagnostic{
				Code:       diag.CodeTypeMismatch,
				Severity:   diag.SeverityError,
				Message:    ".value is only valid on a Reactive<T> binding",
				Primary:    spanOf(expr),
				Suggestion: "use the underlying binding directly instead of .value",
			})
			return types.Unknown
		}
		if ok {
			return rt.Elem
		}
		return types.Unknown
	}

	if expr.Name == "length" {
		return types.Int
	}

	if st, ok := targetType.(*types.StructType); ok {
		if ft, ok := st.FieldType(expr.Name); ok {
			return ft
		}
	}
	return types.Unknown
}

// checkCall infers a call's result type, rejecting the `.length()` method
// call form on array/string receivers in favor of the `length` property.
func (c *Checker) checkCall(expr *ast.CallExpr, sc *scope) types.Type {
	for _, a := range expr.Args {
		c.inferExpr(a, sc)
	}
	field, isField := expr.Callee.(*ast.FieldExpr)
	if isField && field.Name == "length" && len(expr.Args) == 0 {
		targetType := c.inferExpr(field.Target, sc)
		_, isArray := targetType.(*types.ArrayType)
		if isArray || types.Equal(targetType, types.String) {
			c.bag.Add(diag.Diagnostic{
				Code:       diag.CodeLengthIsProperty,
				Severity:   diag.SeverityError,
				Message:    ".length() is not callable; length is a property",
				Primary:    spanOf(expr),
				Suggestion: "use .length instead of .length()",
			})
			return types.Int
		}
	}

	calleeType := c.inferExpr(expr.Callee, sc)
	if ft, ok := calleeType.(*types.FuncType); ok {
		if ft.Async {
			return &types.FutureType{Elem: ft.Result}
		}
		return ft.Result
	}
	return types.Unknown
}

// checkAwait enforces await-placement: only inside an async function or
// lambda, never directly inside an element tree, and only on a
// future-shaped operand.
func (c *Checker) checkAwait(operand ast.Expression, at ast.Node, sc *scope) types.Type {
	if c.inTree {
		c.bag.Errorf(diag.CodeAwaitInElementTree, spanOf(at), "await cannot appear inside an element's children or attributes")
	}
	if c.asyncCtx == 0 {
		c.bag.Errorf(diag.CodeAwaitOutsideAsync, spanOf(at), "await may only appear in an async function or lambda")
	}
	operandType := c.inferExpr(operand, sc)
	ft, ok := operandType.(*types.FutureType)
	if !ok && operandType != types.Unknown {
		c.bag.Errorf(diag.CodeAwaitNotAwaitable, spanOf(at), "%s is not awaitable", operandType)
		return types.Unknown
	}
	if ok {
		return ft.Elem
	}
	return types.Unknown
}

// checkTryOperator types the `?` propagation operator: on Result<T,E> it
// propagates Err out of the enclosing function (which must itself return
// a compatible Result) and yields T; on Option<T> it propagates None and
// yields T.
func (c *Checker) checkTryOperator(expr *ast.PostfixExpr, sc *scope) types.Type {
	if expr.Op != "?" {
		return c.inferExpr(expr.Operand, sc)
	}
	operandType := c.inferExpr(expr.Operand, sc)

	if rt, ok := types.IsResult(operandType); ok {
		if enclosing, ok := types.IsResult(c.fnResult); ok {
			if !types.Equal(enclosing.Err, rt.Err) {
				c.bag.Errorf(diag.CodeTypeMismatch, spanOf(expr),
					"? propagates Err<%s> but the enclosing function returns Result<_,%s>", rt.Err, enclosing.Err)
			}
		} else if c.fnResult != types.Unknown {
			c.bag.Errorf(diag.CodeTypeMismatch, spanOf(expr), "? used in a function that does not return a Result")
		}
		return rt.Ok
	}
	if ot, ok := types.IsOption(operandType); ok {
		if _, ok := types.IsOption(c.fnResult); !ok && c.fnResult != types.Unknown {
			c.bag.Errorf(diag.CodeTypeMismatch, spanOf(expr), "? used in a function that does not return an Option")
		}
		return ot.Elem
	}
	if operandType != types.Unknown {
		c.bag.Errorf(diag.CodeTypeMismatch, spanOf(expr), "? requires a Result or Option operand, got %s", operandType)
	}
	return types.Unknown
}

func (c *Checker) checkLambda(l *ast.LambdaExpr, sc *scope) types.Type {
	inner := newScope(sc)
	params := make([]types.Type, len(l.Params))
	for i, p := range l.Params {
		pt := c.reg.resolveTypeExpr(p.Type)
		params[i] = pt
		inner.define(p.Name, pt)
	}
	prevAsync := c.asyncCtx
	if l.Async {
		c.asyncCtx++
	}
	var result types.Type = types.Unknown
	switch body := l.Body.(type) {
	case ast.Expression:
		prevResult := c.fnResult
		result = c.inferExpr(body, inner)
		c.fnResult = prevResult
	case *ast.BlockStmt:
		prevResult := c.fnResult
		c.fnResult = types.Unknown
		c.checkBlock(body, inner)
		c.fnResult = prevResult
	}
	c.asyncCtx = prevAsync
	return &types.FuncType{Params: params, Result: result, Async: l.Async}
}

// checkElement walks an element's attributes and children, tracking
// element-tree context so a nested await can be rejected, and recursing
// into nested elements/components.
func (c *Checker) checkElement(el *ast.ElementExpr, sc *scope) {
	prevTree := c.inTree
	c.inTree = true
	for _, a := range el.Attributes {
		c.inferExpr(a.Value, sc)
	}
	for _, child := range el.Children {
		switch ch := child.(type) {
		case *ast.ExprChild:
			c.inferExpr(ch.Expr, sc)
		case *ast.ElementExpr:
			c.checkElement(ch, sc)
		}
	}
	c.inTree = prevTree
}
