package emitter

import (
	"fmt"
	"strings"

	"github.com/loomlang/loomc/internal/ast"
)

// emitDecl lowers one top-level declaration to a JS source block. Type-only
// declarations (struct/enum/impl type binding, use imports) erase
// entirely — the design notes generics are erased and monomorphization is
// not required, and a struct/enum has no runtime representation beyond the
// plain object/tagged-record shape its constructors already produce.
func (em *Emitter) emitDecl(d ast.Declaration) string {
	switch decl := d.(type) {
	case *ast.FnDecl:
		return em.emitFnDecl(decl)
	case *ast.ComponentDecl:
		return em.emitComponentDecl(decl)
	case *ast.LetModuleDecl:
		return em.emitLetModuleDecl(decl)
	case *ast.ImplDecl:
		var b strings.Builder
		for _, m := range decl.Methods {
			b.WriteString(em.emitFnDecl(m))
			b.WriteString("\n")
		}
		return b.String()
	default:
		return ""
	}
}

func (em *Emitter) emitFnDecl(fn *ast.FnDecl) string {
	async := ""
	if fn.Async {
		async = "async "
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name
	}
	return fmt.Sprintf("%sfunction %s(%s) %s", async, fn.Name, strings.Join(params, ", "), em.emitFnBody(fn.Body))
}

// emitComponentDecl lowers a component to a plain function taking a single
// props object, applying `@memo` shallow-equal-props caching when present.
func (em *Emitter) emitComponentDecl(c *ast.ComponentDecl) string {
	params := make([]string, len(c.Props))
	for i, p := range c.Props {
		params[i] = p.Name
	}
	propsParam := "props"
	destructure := ""
	if len(params) > 0 {
		destructure = fmt.Sprintf("const { %s } = %s;\n  ", strings.Join(params, ", "), propsParam)
	}

	body := em.emitComponentBody(c.Body, em.ClassNames[c.Name])
	// emitFnBody/emitComponentBody wrap in braces already; splice the
	// destructuring right after the opening brace.
	body = "{\n  " + destructure + strings.TrimPrefix(strings.TrimSpace(body), "{")

	if hasAnnotation(c.Annotations, "memo") {
		return fmt.Sprintf(
			"function %s(%s) %s\nfunction %s_memoized(%s) {\n  if (%s.__lastProps && __shallowEqual(%s.__lastProps, %s)) return %s.__lastResult;\n  const __result = %s(%s);\n  %s.__lastProps = %s;\n  %s.__lastResult = __result;\n  return __result;\n}",
			c.Name, propsParam, body,
			c.Name, propsParam,
			c.Name, c.Name, propsParam, c.Name,
			c.Name, propsParam,
			c.Name, propsParam,
			c.Name,
		)
	}
	return fmt.Sprintf("function %s(%s) %s", c.Name, propsParam, body)
}

func hasAnnotation(annots []*ast.Annotation, name string) bool {
	for _, a := range annots {
		if a.Name == name {
			return true
		}
	}
	return false
}

func annotationArg(annots []*ast.Annotation, name string) (string, bool) {
	for _, a := range annots {
		if a.Name != name {
			continue
		}
		for _, arg := range a.Args {
			if s, ok := arg.Value.(*ast.StringLiteral); ok {
				return s.Value, true
			}
		}
	}
	return "", false
}

// emitLetModuleDecl lowers a module-level binding, applying `@persist`
// load/save wiring  when the value is a `signal(...)`
// call.
func (em *Emitter) emitLetModuleDecl(l *ast.LetModuleDecl) string {
	kw := "const"
	if l.Mut {
		kw = "let"
	}
	base := fmt.Sprintf("%s %s = %s;", kw, l.Name, em.emitExpr(l.Value))

	backend, ok := annotationArg(l.Annotations, "persist")
	if !ok {
		return base
	}

	switch backend {
	case "localStorage":
		return fmt.Sprintf(
			"%s %s = signal(JSON.parse(localStorage.getItem(%q) ?? \"null\") ?? (%s).value);\n"+
				"effect(() => { localStorage.setItem(%q, JSON.stringify(%s.value)); });",
			kw, l.Name, l.Name, em.emitExpr(l.Value),
			l.Name, l.Name)
	default:
		// Any other @persist backend argument names an RPC-backed store;
		// the binding calls load<Name>/save<Name>. No pass generates those
		// functions, so the program itself declares them.
		loadFn := "load" + strings.Title(l.Name)
		saveFn := "save" + strings.Title(l.Name)
		return fmt.Sprintf(
			"%s %s = signal(undefined);\n"+
				"%s().then((__v) => { %s.value = __v; });\n"+
				"effect(() => { %s(%s.value); });",
			kw, l.Name, loadFn, l.Name, saveFn, l.Name)
	}
}
