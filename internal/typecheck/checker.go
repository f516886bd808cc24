// Package typecheck implements the Type Checker: local inference on
// expressions with declared types at binding sites, plus the source-level
// contracts the design enumerates (reactive-handle typing, `?`
// propagation, `await` placement, match exhaustiveness, and the
// `.value`/`.length()`/reactive-reassignment misuse checks). It follows
// the Semantic Analyzer's table-plus-walker split, generalized from name
// resolution to type inference.
package typecheck

import (
	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/token"
	"github.com/loomlang/loomc/internal/types"
)

// Checker is the type-checking pass. It keeps its own scope chain and
// type registry, entirely separate from the Semantic Analyzer's symbol
// table, per the compiler's cross-pass mutation policy.
type Checker struct {
	bag      *diag.Bag
	reg      *registry
	funcs    map[string]*types.FuncType
	global   *scope
	asyncCtx int        // > 0 while inside an async function/lambda body
	inTree   bool       // true while walking an element's attributes/children
	fnResult types.Type // the enclosing function's declared result, for `return`/`?` checks
}

func NewChecker() *Checker {
	return &Checker{
		bag:    &diag.Bag{},
		reg:    newRegistry(),
		funcs:  make(map[string]*types.FuncType),
		global: newScope(nil),
	}
}

func spanOf(n ast.Node) token.Span {
	return token.Span{Start: n.Pos(), End: n.End()}
}

// Check runs the full pass over prog and returns the accumulated
// diagnostics. It never mutates the AST.
func (c *Checker) Check(prog *ast.Program) []diag.Diagnostic {
	c.reg.collectDecls(prog)
	c.collectSignatures(prog)
	for _, d := range prog.Declarations {
		c.checkDecl(d)
	}
	return c.bag.Items()
}

// collectSignatures resolves every top-level fn/component/let-module
// signature before any body is checked, so forward calls (a function
// calling one declared later in the file) type-check correctly.
func (c *Checker) collectSignatures(prog *ast.Program) {
	for _, d := range prog.Declarations {
		switch decl := d.(type) {
		case *ast.FnDecl:
			isServer := hasAnnotation(decl.Annotations, "server")
			ft := c.fnSignature(decl.Params, decl.ReturnType, decl.Async || isServer)
			c.funcs[decl.Name] = ft
			c.global.define(decl.Name, ft)
		case *ast.ComponentDecl:
			props := &types.StructType{Name: decl.Name + "Props"}
			for _, p := range decl.Props {
				props.Fields = append(props.Fields, types.StructField{Name: p.Name, Type: c.reg.resolveTypeExpr(p.Type)})
			}
			c.global.define(decl.Name, &types.ComponentType{Name: decl.Name, Props: props})
		case *ast.LetModuleDecl:
			if decl.Type != nil {
				c.global.define(decl.Name, c.reg.resolveTypeExpr(decl.Type))
			}
		case *ast.ImplDecl:
			for _, m := range decl.Methods {
				c.funcs[m.Name] = c.fnSignature(m.Params, m.ReturnType, m.Async)
			}
		}
	}
}

func (c *Checker) fnSignature(params []ast.Param, ret ast.TypeExpr, async bool) *types.FuncType {
	ft := &types.FuncType{Async: async}
	for _, p := range params {
		ft.Params = append(ft.Params, c.reg.resolveTypeExpr(p.Type))
	}
	if ret != nil {
		ft.Result = c.reg.resolveTypeExpr(ret)
	} else {
		ft.Result = types.Unit
	}
	return ft
}

func (c *Checker) checkDecl(d ast.Declaration) {
	switch decl := d.(type) {
	case *ast.FnDecl:
		c.checkFn(decl.Params, decl.Body, c.funcs[decl.Name], decl.Async)
	case *ast.ComponentDecl:
		sc := newScope(c.global)
		for _, p := range decl.Props {
			sc.define(p.Name, c.reg.resolveTypeExpr(p.Type))
		}
		prevResult, prevAsync := c.fnResult, c.asyncCtx
		c.fnResult = types.Element
		// Components have no dedicated async grammar (ComponentDecl carries
		// no Async flag), yet awaiting a server call directly in a component
		// body is the documented data-loading pattern - treat every
		// component body as an implicit async context so await placement is
		// still checked (still rejected inside an element tree) without
		// requiring grammar that doesn't exist.
		c.asyncCtx++
		c.checkBlock(decl.Body, sc)
		c.fnResult, c.asyncCtx = prevResult, prevAsync
	case *ast.ImplDecl:
		for _, m := range decl.Methods {
			c.checkFn(m.Params, m.Body, c.funcs[m.Name], m.Async)
		}
	case *ast.LetModuleDecl:
		valType := c.inferExpr(decl.Value, c.global)
		if decl.Type != nil {
			declared := c.reg.resolveTypeExpr(decl.Type)
			c.requireAssignable(declared, valType, decl.Value)
		}
	}
}

// checkFn checks a function body. sig.Async (which also turns true for a
// @server function, since its call sites must await it) governs how a
// call to this function types; bodyAsync is the function's own syntactic
// `async` keyword and governs whether await is permitted inside this
// particular body — a @server fn's body runs synchronously server-side
// even though calling it from the client is awaited.
func (c *Checker) checkFn(params []ast.Param, body *ast.BlockStmt, sig *types.FuncType, bodyAsync bool) {
	if body == nil || sig == nil {
		return
	}
	sc := newScope(c.global)
	for i, p := range params {
		sc.define(p.Name, sig.Params[i])
	}
	prevResult, prevAsync := c.fnResult, c.asyncCtx
	c.fnResult = sig.Result
	if bodyAsync {
		c.asyncCtx++
	}
	c.checkBlock(body, sc)
	c.fnResult, c.asyncCtx = prevResult, prevAsync
}
