// Package split implements the Code Splitter: it partitions a program's
// top-level declarations into the client bundle and the server bundle,
// and synthesizes the RPC stub list the Emitter turns into actual request
// code. Reachability is computed over a simple top-level call graph built
// from identifier/field callee names — the same "walk the body, note who
// calls whom" approach the established reachability-pruning passes use,
// generalized from statement-level to declaration-level granularity.
package split

import (
	"strings"

	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/token"
)

// RPCStub describes one client-side call into a @server function that must
// be replaced by a generated stub instead of the function body.
type RPCStub struct {
	Name   string
	Fn     *ast.FnDecl
	Params []ast.Param
	Result ast.TypeExpr
}

// Result is the partition the Emitter consumes.
type Result struct {
	ClientDecls   []ast.Declaration
	ServerDecls   []ast.Declaration
	SharedDecls   []ast.Declaration // present in both bundles verbatim (Both side)
	Stubs         []RPCStub
	UsesWebSocket bool
}

// wellKnownWebSocketImports names the client helper modules whose presence
// in a `use` list triggers server-side WebSocket bootstrap, per the
// auto-detection rule in the splitter's spec.
var wellKnownWebSocketImports = map[string]bool{
	"websocket": true,
	"ws":        true,
}

type Splitter struct {
	bag *diag.Bag
}

func NewSplitter() *Splitter {
	return &Splitter{bag: &diag.Bag{}}
}

func (s *Splitter) Split(prog *ast.Program) (*Result, []diag.Diagnostic) {
	fns := make(map[string]*ast.FnDecl)
	serverNames := make(map[string]bool)
	var components []*ast.ComponentDecl
	var others []ast.Declaration

	for _, d := range prog.Declarations {
		switch decl := d.(type) {
		case *ast.FnDecl:
			fns[decl.Name] = decl
			if hasAnnotation(decl.Annotations, "server") {
				serverNames[decl.Name] = true
			}
		case *ast.ComponentDecl:
			components = append(components, decl)
		default:
			others = append(others, d)
		}
	}

	calls := buildCallGraph(fns)

	serverReachable := bfs(calls, keysOf(serverNames))

	clientRoots := make([]string, 0, len(components)+len(fns))
	for _, c := range components {
		clientRoots = append(clientRoots, callGraphRoot(c.Name))
		calls[callGraphRoot(c.Name)] = collectCalledNames(c.Body)
	}
	for name := range fns {
		if !serverNames[name] {
			clientRoots = append(clientRoots, name)
		}
	}
	clientReachable := bfs(calls, clientRoots)

	res := &Result{}

	for _, u := range prog.Uses {
		if wellKnownWebSocketImports[lastPathSegment(u.Path)] {
			res.UsesWebSocket = true
		}
	}

	for name, fn := range fns {
		inServer := serverNames[name] || (serverReachable[name] && !clientReachable[name])
		inClient := clientReachable[name] && !serverNames[name]

		switch {
		case serverNames[name]:
			res.ServerDecls = append(res.ServerDecls, fn)
			if clientReachable[name] {
				stub := RPCStub{Name: name, Fn: fn, Params: fn.Params, Result: fn.ReturnType}
				res.Stubs = append(res.Stubs, stub)
				s.checkSerializable(fn)
			}
		case inServer:
			res.ServerDecls = append(res.ServerDecls, fn)
		case inClient && serverReachable[name]:
			res.SharedDecls = append(res.SharedDecls, fn)
		case inClient:
			res.ClientDecls = append(res.ClientDecls, fn)
		default:
			// Unreferenced from either root set — still emitted client-side
			// as dead but harmless code; the emitter does not dead-code
			// eliminate.
			res.ClientDecls = append(res.ClientDecls, fn)
		}
	}

	for _, c := range components {
		res.ClientDecls = append(res.ClientDecls, c)
	}
	res.ClientDecls = append(res.ClientDecls, others...)
	res.SharedDecls = append(res.SharedDecls, sharedLiteralDecls(others)...)

	return res, s.bag.Items()
}

// sharedLiteralDecls picks struct/enum type declarations out of the
// leftover (non-fn, non-component) declaration set — these are the "shared
// preamble" types the design says both bundles duplicate as needed.
func sharedLiteralDecls(decls []ast.Declaration) []ast.Declaration {
	var out []ast.Declaration
	for _, d := range decls {
		switch d.(type) {
		case *ast.StructDecl, *ast.EnumDecl:
			out = append(out, d)
		}
	}
	return out
}

func hasAnnotation(annots []*ast.Annotation, name string) bool {
	for _, a := range annots {
		if a.Name == name {
			return true
		}
	}
	return false
}

// callGraphRoot namespaces component entry points so they never collide
// with a function of the same name.
func callGraphRoot(componentName string) string { return "component:" + componentName }

func buildCallGraph(fns map[string]*ast.FnDecl) map[string][]string {
	graph := make(map[string][]string, len(fns))
	for name, fn := range fns {
		graph[name] = collectCalledNames(fn.Body)
	}
	return graph
}

func keysOf(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func bfs(graph map[string][]string, roots []string) map[string]bool {
	seen := make(map[string]bool, len(roots))
	queue := append([]string(nil), roots...)
	for _, r := range roots {
		seen[r] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, callee := range graph[cur] {
			if !seen[callee] {
				seen[callee] = true
				queue = append(queue, callee)
			}
		}
	}
	return seen
}

// checkSerializable rejects an @server function whose parameter types have
// no JSON-representable shape at all (a function value, most notably) —
// a static, type-level check. The runtime encode/decode side of the same
// contract (struct/enum values actually crossing the wire as jsonvalue
// tagged records) lives in internal/devserver, which is where a value, not
// just its type, exists to tag.
func (s *Splitter) checkSerializable(fn *ast.FnDecl) {
	for _, p := range fn.Params {
		if !isSerializableType(p.Type) {
			s.bag.Errorf(diag.CodeRPCArgNotSerializable,
				token.Span{Start: fn.Pos(), End: fn.End()},
				"@server function %q has a parameter %q whose type is not JSON-serializable", fn.Name, p.Name)
		}
	}
}

func isSerializableType(t ast.TypeExpr) bool {
	switch te := t.(type) {
	case nil:
		return true
	case *ast.NamedTypeExpr:
		return te.Name != "fn"
	case *ast.ArrayTypeExpr:
		return isSerializableType(te.Elem)
	case *ast.OptionTypeExpr:
		return isSerializableType(te.Elem)
	case *ast.FuncTypeExpr:
		return false
	default:
		return true
	}
}

// lastPathSegment returns the final `::`/`/`-delimited component of a use
// path, which is what the well-known-import table matches against
// (`use ./lib/websocket::{Client}` and `use websocket::{Client}` both
// resolve to "websocket").
func lastPathSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndexAny(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return path
}

// collectCalledNames walks a function/component body and returns the set
// of bare identifier and simple-field-access names appearing as a call
// callee — the approximate "who does this body call" edge list the
// reachability BFS walks. It is intentionally coarse: an indirect call
// through a higher-order value is invisible to it, same as the established
// own best-effort reachability passes.
func collectCalledNames(b *ast.BlockStmt) []string {
	var names []string
	var walkExpr func(ast.Expression)
	var walkStmt func(ast.Statement)
	var walkBlock func(*ast.BlockStmt)

	note := func(callee ast.Expression) {
		switch c := callee.(type) {
		case *ast.Identifier:
			names = append(names, c.Name)
		case *ast.FieldExpr:
			names = append(names, c.Name)
		}
	}

	walkExpr = func(e ast.Expression) {
		if e == nil {
			return
		}
		switch expr := e.(type) {
		case *ast.CallExpr:
			note(expr.Callee)
			walkExpr(expr.Callee)
			for _, a := range expr.Args {
				walkExpr(a)
			}
		case *ast.PrefixExpr:
			walkExpr(expr.Operand)
		case *ast.PostfixExpr:
			walkExpr(expr.Operand)
		case *ast.InfixExpr:
			walkExpr(expr.Left)
			walkExpr(expr.Right)
		case *ast.FieldExpr:
			walkExpr(expr.Target)
		case *ast.IndexExpr:
			walkExpr(expr.Target)
			walkExpr(expr.Index)
		case *ast.TernaryExpr:
			walkExpr(expr.Cond)
			walkExpr(expr.Then)
			walkExpr(expr.Else)
		case *ast.RangeExpr:
			walkExpr(expr.Start)
			walkExpr(expr.End)
		case *ast.AwaitExpr:
			walkExpr(expr.Operand)
		case *ast.TemplateStringExpr:
			for _, sub := range expr.Exprs {
				walkExpr(sub)
			}
		case *ast.IfExpr:
			walkExpr(expr.Cond)
			walkBlock(expr.Then)
			switch els := expr.Else.(type) {
			case *ast.BlockStmt:
				walkBlock(els)
			case ast.Expression:
				walkExpr(els)
			}
		case *ast.MatchExpr:
			walkExpr(expr.Subject)
			for _, arm := range expr.Arms {
				if arm.Guard != nil {
					walkExpr(arm.Guard)
				}
				walkExpr(arm.Body)
			}
		case *ast.LambdaExpr:
			switch body := expr.Body.(type) {
			case *ast.BlockStmt:
				walkBlock(body)
			case ast.Expression:
				walkExpr(body)
			}
		case *ast.ElementExpr:
			for _, attr := range expr.Attributes {
				walkExpr(attr.Value)
			}
			for _, child := range expr.Children {
				switch c := child.(type) {
				case *ast.ExprChild:
					walkExpr(c.Expr)
				case *ast.ElementExpr:
					walkExpr(c)
				}
			}
		}
	}

	walkStmt = func(s ast.Statement) {
		switch stmt := s.(type) {
		case *ast.LetStmt:
			walkExpr(stmt.Value)
		case *ast.AssignStmt:
			walkExpr(stmt.Target)
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
	return names
}
