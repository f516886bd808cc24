package ast

import "github.com/loomlang/loomc/internal/token"

// UseDecl is an import: `use ./other::{name, other as alias}` or
// `use pkg::*` for a glob import.
type UseDecl struct {
	Base
	Path  string
	Items []UseItem
	Glob  bool
}

// UseItem is one imported name, optionally aliased.
type UseItem struct {
	Name  string
	Alias string // empty if not aliased
}

func (d *UseDecl) declarationNode() {}
func (d *UseDecl) String() string   { return "use " + d.Path }

// Param is a function/component parameter.
type Param struct {
	Name    string
	Type    TypeExpr
	Default Expression // nil if no default
}

// FnDecl is a top-level or impl-block function definition.
type FnDecl struct {
	Base
	Name        string
	Pub         bool
	Async       bool
	Annotations []*Annotation
	Params      []Param
	ReturnType  TypeExpr // nil if unspecified
	Body        *BlockStmt
}

func (d *FnDecl) declarationNode() {}
func (d *FnDecl) String() string   { return "fn " + d.Name }

// ComponentDecl is a `component Name(props) { ... }` declaration. The body
// is expected to culminate in a `return <element>;` producing a UI tree.
type ComponentDecl struct {
	Base
	Name        string
	Pub         bool
	Annotations []*Annotation
	Props       []Param
	Body        *BlockStmt
}

func (d *ComponentDecl) declarationNode() {}
func (d *ComponentDecl) String() string   { return "component " + d.Name }

// StructField is one field of a struct type definition.
type StructField struct {
	Name string
	Type TypeExpr
	Pub  bool
}

// StructDecl defines a record type.
type StructDecl struct {
	Base
	Name        string
	Pub         bool
	Annotations []*Annotation
	Fields      []StructField
}

func (d *StructDecl) declarationNode() {}
func (d *StructDecl) String() string   { return "struct " + d.Name }

// EnumVariant is one variant of an enum type definition, optionally
// carrying positional payload types (a tuple-like variant).
type EnumVariant struct {
	Name   string
	Fields []TypeExpr
}

// EnumDecl defines a tagged-union type.
type EnumDecl struct {
	Base
	Name        string
	Pub         bool
	Annotations []*Annotation
	Variants    []EnumVariant
}

func (d *EnumDecl) declarationNode() {}
func (d *EnumDecl) String() string   { return "enum " + d.Name }

// ImplDecl attaches a set of function declarations to a named type.
type ImplDecl struct {
	Base
	TypeName string
	Methods  []*FnDecl
}

func (d *ImplDecl) declarationNode() {}
func (d *ImplDecl) String() string   { return "impl " + d.TypeName }

// LetModuleDecl is a module-level `let`/`const` binding (as distinct from
// LetStmt, which appears inside a function body).
type LetModuleDecl struct {
	Base
	Name        string
	Mut         bool
	Pub         bool
	Annotations []*Annotation
	Type        TypeExpr // nil if inferred
	Value       Expression
}

func (d *LetModuleDecl) declarationNode() {}
func (d *LetModuleDecl) String() string   { return "let " + d.Name }

// StyleDecl is a `style Name { ... }` scoped CSS block.
type StyleDecl struct {
	Base
	Name  string
	Rules []StyleRule
}

func (d *StyleDecl) declarationNode() {}
func (d *StyleDecl) String() string   { return "style " + d.Name }

// StyleRule is one selector-and-declarations group, or a nested
// media-query-like group (depth <= 1 is enforced by the parser).
type StyleRule struct {
	Selectors    []string
	Declarations []StyleDeclaration
	Nested       []StyleRule // at most one level deep
	MediaQuery   string      // non-empty when this rule is a nested @media-like group
	Pos          token.Position
}

// StyleDeclaration is one `property: value;` pair inside a style rule.
type StyleDeclaration struct {
	Property string
	Value    string
	Pos      token.Position
}
