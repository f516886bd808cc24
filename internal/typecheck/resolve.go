package typecheck

import "github.com/loomlang/loomc/internal/ast"
import "github.com/loomlang/loomc/internal/types"

// registry holds the name -> resolved-type bindings gathered from a
// program's struct/enum/component declarations, used to resolve
// NamedTypeExpr references without needing a multi-file module graph.
type registry struct {
	named map[string]types.Type
}

func newRegistry() *registry {
	return &registry{named: make(map[string]types.Type)}
}

// intKindNames are every integer-width spelling the design lists;
// all collapse to the single types.Int primitive since the checker does
// not model bit-width overflow.
var intKindNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "usize": true, "int": true,
}

func (r *registry) resolveTypeExpr(te ast.TypeExpr) types.Type {
	if te == nil {
		return types.Unit
	}
	switch t := te.(type) {
	case *ast.NamedTypeExpr:
		switch {
		case intKindNames[t.Name]:
			return types.Int
		case t.Name == "f32" || t.Name == "f64" || t.Name == "float":
			return types.Float
		case t.Name == "bool":
			return types.Bool
		case t.Name == "string" || t.Name == "char":
			return types.String
		case t.Name == "()" || t.Name == "unit":
			return types.Unit
		case t.Name == "Reactive" && len(t.TypeArgs) == 1:
			return &types.ReactiveType{Elem: r.resolveTypeExpr(t.TypeArgs[0])}
		case t.Name == "Future" && len(t.TypeArgs) == 1:
			return &types.FutureType{Elem: r.resolveTypeExpr(t.TypeArgs[0])}
		case t.Name == "Result" && len(t.TypeArgs) == 2:
			return &types.ResultType{Ok: r.resolveTypeExpr(t.TypeArgs[0]), Err: r.resolveTypeExpr(t.TypeArgs[1])}
		case t.Name == "Map" && len(t.TypeArgs) == 2:
			return &types.MapType{Key: r.resolveTypeExpr(t.TypeArgs[0]), Value: r.resolveTypeExpr(t.TypeArgs[1])}
		case t.Name == "Option" && len(t.TypeArgs) == 1:
			return &types.OptionType{Elem: r.resolveTypeExpr(t.TypeArgs[0])}
		}
		if named, ok := r.named[t.Name]; ok {
			return named
		}
		// An unresolved named type (unknown struct/enum, or a generic type
		// parameter with a trait bound) is assumed-serializable and
		// treated as Unknown for equality purposes, not as a hard error —
		// the Semantic Analyzer already validated that the name itself
		// resolves to something.
		return types.Unknown
	case *ast.ArrayTypeExpr:
		return &types.ArrayType{Elem: r.resolveTypeExpr(t.Elem)}
	case *ast.OptionTypeExpr:
		return &types.OptionType{Elem: r.resolveTypeExpr(t.Elem)}
	case *ast.FuncTypeExpr:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = r.resolveTypeExpr(p)
		}
		return &types.FuncType{Params: params, Result: r.resolveTypeExpr(t.Result)}
	default:
		return types.Unknown
	}
}

func hasAnnotation(annots []*ast.Annotation, name string) bool {
	for _, a := range annots {
		if a.Name == name {
			return true
		}
	}
	return false
}

// collectDecls registers every struct/enum as a named resolved type
// before any signature or body is resolved, so forward references (a
// struct whose field refers to a sibling struct declared later) work
// without a dedicated topological sort.
func (r *registry) collectDecls(prog *ast.Program) {
	for _, d := range prog.Declarations {
		switch decl := d.(type) {
		case *ast.StructDecl:
			r.named[decl.Name] = &types.StructType{Name: decl.Name}
		case *ast.EnumDecl:
			r.named[decl.Name] = &types.EnumType{Name: decl.Name}
		}
	}
	for _, d := range prog.Declarations {
		switch decl := d.(type) {
		case *ast.StructDecl:
			st := r.named[decl.Name].(*types.StructType)
			for _, f := range decl.Fields {
				st.Fields = append(st.Fields, types.StructField{Name: f.Name, Type: r.resolveTypeExpr(f.Type)})
			}
		case *ast.EnumDecl:
			et := r.named[decl.Name].(*types.EnumType)
			for _, v := range decl.Variants {
				fields := make([]types.Type, len(v.Fields))
				for i, f := range v.Fields {
					fields[i] = r.resolveTypeExpr(f)
				}
				et.Variants = append(et.Variants, types.EnumVariant{Name: v.Name, Fields: fields})
			}
		}
	}
}
