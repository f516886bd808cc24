package semantic

import (
	"path/filepath"

	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/token"
)

// builtins are identifiers always resolvable without a binding — the host
// globals a compiled-to-JS program runs against. The set is intentionally
// small; anything else must come from a `use` import or a local binding.
var builtins = map[string]bool{
	"console": true, "Math": true, "JSON": true, "Array": true,
	"Object": true, "String": true, "Number": true, "Boolean": true,
	"Promise": true, "window": true, "document": true, "self": true,
	// The reactive runtime primitives every compiled bundle imports
	// (internal/emitter's client.go imports these plus the element builder
	// `h`) — also always
	// resolvable without a binding, since no Loom source ever declares them.
	"signal": true, "computed": true, "effect": true, "batch": true,
	"onMount": true, "onUnmount": true, "onUpdate": true,
}

// Analyzer is the name-resolution pass: it binds every top-level
// declaration into a module scope, resolves `use` imports against the
// sibling files they name, then walks each body resolving identifier
// references against a chain of nested scopes. It also enforces the one
// piece of placement validation this pass is responsible for
// (`@server`/`@client` may only annotate fn/component declarations).
type Analyzer struct {
	bag    *diag.Bag
	global *SymbolTable
	file   string
	graph  *moduleGraph
}

// NewAnalyzer returns an Analyzer for file, resolving its `use` imports
// against sibling files on disk (relative to file's own directory) via
// FileLoader.
func NewAnalyzer(file string) *Analyzer {
	return &Analyzer{
		bag:    &diag.Bag{},
		global: NewSymbolTable(),
		file:   filepath.Clean(file),
		graph:  newModuleGraph(FileLoader{}),
	}
}

// Analyze resolves names across prog and returns the accumulated
// diagnostics. It never mutates the AST — resolution results live only in
// the returned bag and the Analyzer's own symbol tables.
func (a *Analyzer) Analyze(prog *ast.Program) []diag.Diagnostic {
	if a.graph != nil && a.file != "" {
		a.graph.push(a.file)
		defer a.graph.pop()
	}
	for _, use := range prog.Uses {
		a.bindUse(use)
	}
	for _, d := range prog.Declarations {
		a.defineTopLevel(d)
	}
	for _, d := range prog.Declarations {
		a.walkDeclBody(d)
	}
	return a.bag.Items()
}

func spanOf(n ast.Node) token.Span {
	return token.Span{Start: n.Pos(), End: n.End()}
}

// bindUse resolves u against the sibling file it names, enforcing that
// only pub declarations cross the import boundary and reporting unknown
// modules, missing/non-pub names, and import cycles through the codes
// internal/diag already reserves for them.
func (a *Analyzer) bindUse(u *ast.UseDecl) {
	info, ok := a.graph.resolve(a.bag, a.file, u.Path, spanOf(u))
	if !ok {
		return
	}

	if u.Glob {
		for name, sym := range info.symbols {
			if !sym.Pub {
				continue
			}
			if !a.global.Define(&Symbol{Name: name, Kind: sym.Kind}) {
				a.bag.Errorf(diag.CodeDuplicateBinding, spanOf(u), "%q is already bound in this module", name)
			}
		}
		return
	}

	for _, item := range u.Items {
		sym, exists := info.symbols[item.Name]
		if !exists {
			a.bag.Errorf(diag.CodeUndefinedName, spanOf(u), "module %q has no export named %q", u.Path, item.Name)
			continue
		}
		if !sym.Pub {
			a.bag.Errorf(diag.CodeNotExported, spanOf(u), "%q in module %q is not declared pub", item.Name, u.Path)
			continue
		}
		name := item.Name
		if item.Alias != "" {
			name = item.Alias
		}
		if !a.global.Define(&Symbol{Name: name, Kind: sym.Kind}) {
			a.bag.Errorf(diag.CodeDuplicateBinding, spanOf(u), "%q is already bound in this module", name)
		}
	}
}

func (a *Analyzer) defineTopLevel(d ast.Declaration) {
	var name string
	var kind Kind
	var pub bool
	var misplaced []*ast.Annotation

	switch decl := d.(type) {
	case *ast.FnDecl:
		name, kind, pub = decl.Name, KindFunc, decl.Pub
		a.checkAnnotationPlacement(decl.Annotations, spanOf(decl))
	case *ast.ComponentDecl:
		name, kind, pub = decl.Name, KindComponent, decl.Pub
		a.checkAnnotationPlacement(decl.Annotations, spanOf(decl))
	case *ast.StructDecl:
		name, kind, pub = decl.Name, KindType, decl.Pub
		misplaced = decl.Annotations
	case *ast.EnumDecl:
		name, kind, pub = decl.Name, KindType, decl.Pub
		misplaced = decl.Annotations
	case *ast.LetModuleDecl:
		name, kind, pub = decl.Name, KindValue, decl.Pub
		misplaced = decl.Annotations
	case *ast.ImplDecl:
		// impl blocks don't introduce a name of their own; their methods are
		// resolved against TypeName's scope when the body walk reaches them.
		return
	case *ast.StyleDecl:
		name, kind, pub = decl.Name, KindValue, false
	default:
		return
	}

	for _, an := range misplaced {
		if an.Name == "server" || an.Name == "client" {
			a.bag.Errorf(diag.CodeIllegalAnnotArgs, spanOf(an), "@%s may only annotate a fn or component declaration", an.Name)
		}
	}

	if !a.global.Define(&Symbol{Name: name, Kind: kind, Pub: pub}) {
		a.bag.Errorf(diag.CodeDuplicateBinding, spanOf(d), "%q is already declared in this module", name)
	}
}

// checkAnnotationPlacement enforces that the two side-tagging annotations
// only ever attach to the declarations the Code Splitter understands how to
// route. Unknown annotation names are inert by design and are not
// validated here.
func (a *Analyzer) checkAnnotationPlacement(annots []*ast.Annotation, span token.Span) {
	seenSide := false
	for _, an := range annots {
		if an.Name != "server" && an.Name != "client" {
			continue
		}
		if seenSide {
			a.bag.Errorf(diag.CodeIllegalAnnotArgs, spanOf(an), "a declaration may carry at most one of @server/@client")
		}
		seenSide = true
	}
}

func (a *Analyzer) walkDeclBody(d ast.Declaration) {
	switch decl := d.(type) {
	case *ast.FnDecl:
		a.walkFn(decl.Params, decl.Body, a.global)
	case *ast.ComponentDecl:
		a.walkFn(decl.Props, decl.Body, a.global)
	case *ast.ImplDecl:
		for _, m := range decl.Methods {
			a.walkFn(m.Params, m.Body, a.global)
		}
	case *ast.LetModuleDecl:
		if decl.Value != nil {
			a.walkExpr(decl.Value, a.global)
		}
	default:
		// StructDecl/EnumDecl/UseDecl/StyleDecl carry no resolvable bodies.
	}
}

func (a *Analyzer) walkFn(params []ast.Param, body *ast.BlockStmt, outer *SymbolTable) {
	scope := NewEnclosedSymbolTable(outer)
	for _, p := range params {
		scope.Define(&Symbol{Name: p.Name, Kind: KindValue})
		if p.Default != nil {
			a.walkExpr(p.Default, scope)
		}
	}
	if body != nil {
		a.walkBlock(body, scope)
	}
}

func (a *Analyzer) walkBlock(b *ast.BlockStmt, outer *SymbolTable) {
	scope := NewEnclosedSymbolTable(outer)
	for _, stmt := range b.Statements {
		a.walkStmt(stmt, scope)
	}
}

func (a *Analyzer) walkStmt(s ast.Statement, scope *SymbolTable) {
	switch stmt := s.(type) {
	case *ast.LetStmt:
		if stmt.Value != nil {
			a.walkExpr(stmt.Value, scope)
		}
		if !scope.Define(&Symbol{Name: stmt.Name, Kind: KindValue, Mutable: stmt.Mut}) {
			a.bag.Errorf(diag.CodeDuplicateBinding, spanOf(stmt), "%q is already declared in this scope", stmt.Name)
		}
	case *ast.AssignStmt:
		a.walkExpr(stmt.Target, scope)
		a.walkExpr(stmt.Value, scope)
	case *ast.ExprStmt:
		a.walkExpr(stmt.Expr, scope)
	case *ast.ReturnStmt:
		if stmt.Value != nil {
			a.walkExpr(stmt.Value, scope)
		}
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.ScriptStmt:
		// no names to resolve
	case *ast.WhileStmt:
		a.walkExpr(stmt.Cond, scope)
		a.walkBlock(stmt.Body, scope)
	case *ast.ForStmt:
		a.walkExpr(stmt.Iterable, scope)
		loopScope := NewEnclosedSymbolTable(scope)
		loopScope.Define(&Symbol{Name: stmt.Binding, Kind: KindValue})
		a.walkBlock(stmt.Body, loopScope)
	case *ast.LoopStmt:
		a.walkBlock(stmt.Body, scope)
	case *ast.BlockStmt:
		a.walkBlock(stmt, scope)
	}
}

func (a *Analyzer) walkExpr(e ast.Expression, scope *SymbolTable) {
	if e == nil {
		return
	}
	switch expr := e.(type) {
	case *ast.Identifier:
		if builtins[expr.Name] {
			return
		}
		if _, ok := scope.Resolve(expr.Name); !ok {
			a.bag.Errorf(diag.CodeUndefinedName, spanOf(expr), "undefined name %q", expr.Name)
		}
	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.BoolLiteral, *ast.NilLiteral, *ast.StringLiteral:
		// leaves, nothing to resolve
	case *ast.TemplateStringExpr:
		for _, sub := range expr.Exprs {
			a.walkExpr(sub, scope)
		}
	case *ast.PrefixExpr:
		a.walkExpr(expr.Operand, scope)
	case *ast.PostfixExpr:
		a.walkExpr(expr.Operand, scope)
	case *ast.InfixExpr:
		a.walkExpr(expr.Left, scope)
		a.walkExpr(expr.Right, scope)
	case *ast.FieldExpr:
		a.walkExpr(expr.Target, scope)
	case *ast.CallExpr:
		a.walkExpr(expr.Callee, scope)
		for _, arg := range expr.Args {
			a.walkExpr(arg, scope)
		}
	case *ast.IndexExpr:
		a.walkExpr(expr.Target, scope)
		a.walkExpr(expr.Index, scope)
	case *ast.IfExpr:
		a.walkExpr(expr.Cond, scope)
		a.walkBlock(expr.Then, scope)
		switch els := expr.Else.(type) {
		case *ast.BlockStmt:
			a.walkBlock(els, scope)
		case ast.Expression:
			a.walkExpr(els, scope)
		}
	case *ast.MatchExpr:
		a.walkExpr(expr.Subject, scope)
		for _, arm := range expr.Arms {
			armScope := NewEnclosedSymbolTable(scope)
			a.walkPattern(arm.Pattern, armScope)
			if arm.Guard != nil {
				a.walkExpr(arm.Guard, armScope)
			}
			a.walkExpr(arm.Body, armScope)
		}
	case *ast.TernaryExpr:
		a.walkExpr(expr.Cond, scope)
		a.walkExpr(expr.Then, scope)
		a.walkExpr(expr.Else, scope)
	case *ast.LambdaExpr:
		lamScope := NewEnclosedSymbolTable(scope)
		for _, p := range expr.Params {
			lamScope.Define(&Symbol{Name: p.Name, Kind: KindValue})
			if p.Default != nil {
				a.walkExpr(p.Default, lamScope)
			}
		}
		switch body := expr.Body.(type) {
		case *ast.BlockStmt:
			a.walkBlock(body, lamScope)
		case ast.Expression:
			a.walkExpr(body, lamScope)
		}
	case *ast.RangeExpr:
		a.walkExpr(expr.Start, scope)
		a.walkExpr(expr.End, scope)
	case *ast.AwaitExpr:
		a.walkExpr(expr.Operand, scope)
	case *ast.ElementExpr:
		a.walkElement(expr, scope)
	}
}

func (a *Analyzer) walkElement(el *ast.ElementExpr, scope *SymbolTable) {
	if el.IsComponent() {
		if _, ok := scope.Resolve(el.Tag); !ok {
			a.bag.Errorf(diag.CodeUndefinedName, spanOf(el), "undefined component %q", el.Tag)
		}
	}
	for _, attr := range el.Attributes {
		a.walkExpr(attr.Value, scope)
	}
	for _, child := range el.Children {
		switch c := child.(type) {
		case *ast.ExprChild:
			a.walkExpr(c.Expr, scope)
		case *ast.ElementExpr:
			a.walkElement(c, scope)
		}
	}
}

func (a *Analyzer) walkPattern(p ast.Pattern, scope *SymbolTable) {
	switch pat := p.(type) {
	case *ast.BindingPattern:
		scope.Define(&Symbol{Name: pat.Name, Kind: KindValue})
	case *ast.VariantPattern:
		for _, b := range pat.Binds {
			a.walkPattern(b, scope)
		}
	case *ast.LiteralPattern, *ast.WildcardPattern:
		// no bindings introduced
	}
}
