package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loomlang/loomc/internal/ast"
)

// emitElement lowers an element expression : a
// lowercase tag becomes `h("tag", props, children)`; a capitalized tag
// becomes a component invocation `Comp({...props, children})`.
func (em *Emitter) emitElement(el *ast.ElementExpr) string {
	props := em.emitAttributes(el.Attributes)
	children := em.emitChildren(el.Children)

	if el.IsComponent() {
		entries := append([]string{}, props...)
		if len(children) > 0 {
			entries = append(entries, "children: ["+strings.Join(children, ", ")+"]")
		}
		return fmt.Sprintf("%s({%s})", el.Tag, strings.Join(entries, ", "))
	}

	propsObj := "{" + strings.Join(props, ", ") + "}"
	childrenArr := "[" + strings.Join(children, ", ") + "]"
	return fmt.Sprintf("h(%s, %s, %s)", strconv.Quote(el.Tag), propsObj, childrenArr)
}

// emitElementWithClass lowers el the same way emitElement does, but merges
// an extra CSS class onto it first — used to inject a component's
// synthesized style class ( item 5) onto its root
// returned element without mutating the AST. A source-written `class`
// attribute is concatenated with, rather than replaced by, the
// synthesized one.
func (em *Emitter) emitElementWithClass(el *ast.ElementExpr, className string) string {
	if className == "" {
		return em.emitElement(el)
	}
	props := make([]string, 0, len(el.Attributes)+1)
	hasClassAttr := false
	for _, a := range el.Attributes {
		if a.Name == "class" || a.Name == "className" {
			hasClassAttr = true
			props = append(props, fmt.Sprintf("class: %s + \" \" + (%s)", strconv.Quote(className), em.emitRenderedExpr(a.Value)))
			continue
		}
		props = append(props, fmt.Sprintf("%s: %s", jsPropKey(a.Name), em.emitRenderedExpr(a.Value)))
	}
	if !hasClassAttr {
		props = append(props, fmt.Sprintf("class: %s", strconv.Quote(className)))
	}
	children := em.emitChildren(el.Children)

	if el.IsComponent() {
		entries := append([]string{}, props...)
		if len(children) > 0 {
			entries = append(entries, "children: ["+strings.Join(children, ", ")+"]")
		}
		return fmt.Sprintf("%s({%s})", el.Tag, strings.Join(entries, ", "))
	}

	propsObj := "{" + strings.Join(props, ", ") + "}"
	childrenArr := "[" + strings.Join(children, ", ") + "]"
	return fmt.Sprintf("h(%s, %s, %s)", strconv.Quote(el.Tag), propsObj, childrenArr)
}

func (em *Emitter) emitAttributes(attrs []ast.Attribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, fmt.Sprintf("%s: %s", jsPropKey(a.Name), em.emitRenderedExpr(a.Value)))
	}
	return out
}

func (em *Emitter) emitChildren(children []ast.ElementChild) []string {
	out := make([]string, 0, len(children))
	for _, c := range children {
		switch child := c.(type) {
		case *ast.TextChild:
			out = append(out, strconv.Quote(child.Text))
		case *ast.ExprChild:
			out = append(out, em.emitRenderedExpr(child.Expr))
		case *ast.ElementExpr:
			out = append(out, em.emitElement(child))
		}
	}
	return out
}

// jsPropKey quotes a prop name only when it isn't already a valid bare JS
// identifier (an attribute name like `data-id` needs quoting).
func jsPropKey(name string) string {
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter {
			return strconv.Quote(name)
		}
		if i > 0 && !isLetter && !isDigit {
			return strconv.Quote(name)
		}
	}
	return name
}
