// Package style implements the Style Generator: it compiles `style Name {
// ... }` blocks into scoped CSS, synthesizing a `<Name>-<hash>` class name
// per block and flattening one level of nested rules the way a Sass-style
// preprocessor would — grounded on the content-hash cache key pattern the
// example pack's guix repo uses (crypto/sha256 over a deterministic byte
// serialization), reused here for a class-name suffix instead of a cache
// key.
package style

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/loomlang/loomc/internal/ast"
)

// Sheet is one compiled style block's output.
type Sheet struct {
	Name      string
	ClassName string
	CSS       string
}

// Generator compiles every StyleDecl in a program into a Sheet.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// Generate compiles every style block in prog, in declaration order, and
// also returns a Name -> ClassName lookup the Emitter uses to inject the
// root-element class binding for the matching component.
func (g *Generator) Generate(prog *ast.Program) ([]Sheet, map[string]string) {
	var sheets []Sheet
	classNames := make(map[string]string)
	for _, d := range prog.Declarations {
		sd, ok := d.(*ast.StyleDecl)
		if !ok {
			continue
		}
		sheet := g.compile(sd)
		sheets = append(sheets, sheet)
		classNames[sd.Name] = sheet.ClassName
	}
	return sheets, classNames
}

func (g *Generator) compile(sd *ast.StyleDecl) Sheet {
	className := sd.Name + "-" + hashOf(sd)

	var b strings.Builder
	for _, rule := range sd.Rules {
		renderRule(&b, className, nil, rule)
	}
	return Sheet{Name: sd.Name, ClassName: className, CSS: b.String()}
}

// renderRule writes rule as a top-level CSS block scoped under the
// synthesized root class, then recurses into any nested rule (flattened to
// its own top-level block via descendant-combinator selector join) — a
// nested rule's selector is every ancestor selector joined to its own,
// matching the `.Card-<hash> h2 { ... }` shape a scoped descendant
// selector is expected to take.
func renderRule(b *strings.Builder, rootClass string, ancestors []string, rule ast.StyleRule) {
	selectors := joinSelectors(ancestors, rule.Selectors)
	scoped := scopedSelectors(rootClass, selectors)

	if rule.MediaQuery != "" {
		fmt.Fprintf(b, "%s {\n", rule.MediaQuery)
		writeDeclBlock(b, "  ", scoped, rule.Declarations)
		b.WriteString("}\n")
	} else {
		writeDeclBlock(b, "", scoped, rule.Declarations)
	}

	for _, nested := range rule.Nested {
		renderRule(b, rootClass, selectors, nested)
	}
}

func joinSelectors(ancestors, own []string) []string {
	if len(ancestors) == 0 {
		return own
	}
	out := make([]string, 0, len(ancestors)*len(own))
	for _, a := range ancestors {
		for _, s := range own {
			out = append(out, a+" "+s)
		}
	}
	return out
}

func scopedSelectors(rootClass string, selectors []string) []string {
	out := make([]string, len(selectors))
	for i, s := range selectors {
		out[i] = "." + rootClass + " " + s
	}
	return out
}

func writeDeclBlock(b *strings.Builder, indent string, selectors []string, decls []ast.StyleDeclaration) {
	if len(decls) == 0 {
		return
	}
	fmt.Fprintf(b, "%s%s {\n", indent, strings.Join(selectors, ", "))
	for _, d := range decls {
		fmt.Fprintf(b, "%s  %s: %s;\n", indent, d.Property, d.Value)
	}
	fmt.Fprintf(b, "%s}\n", indent)
}

// hashOf derives a stable, short class-name suffix from the style block's
// own declaration content, so recompiling byte-identical source produces a
// byte-identical class name (the parse-emit determinism property).
func hashOf(sd *ast.StyleDecl) string {
	var b strings.Builder
	b.WriteString(sd.Name)
	var writeRule func(ast.StyleRule)
	writeRule = func(r ast.StyleRule) {
		b.WriteString(strings.Join(r.Selectors, ","))
		b.WriteString(r.MediaQuery)
		for _, d := range r.Declarations {
			b.WriteString(d.Property)
			b.WriteString(":")
			b.WriteString(d.Value)
			b.WriteString(";")
		}
		for _, n := range r.Nested {
			writeRule(n)
		}
	}
	for _, r := range sd.Rules {
		writeRule(r)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:6]
}
