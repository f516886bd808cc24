// Package ast defines the Loom abstract syntax tree: a closed set of node
// variants behind the Node/Expression/Statement/Declaration marker
// interfaces. Every node carries a source span. The tree is immutable after
// construction; the one exception is the Reactive Analyzer's "is-reactive"
// flag, which is never stored as a node field — see reactive.go's
// FlagTable — so there is nothing on Node itself that any later pass
// mutates.
package ast

import "github.com/loomlang/loomc/internal/token"

// Node is the root interface implemented by every AST node.
type Node interface {
	Pos() token.Position
	End() token.Position
	TokenLiteral() string
	String() string
}

// Expression is implemented by every node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is implemented by every node usable as a statement.
type Statement interface {
	Node
	statementNode()
}

// Declaration is implemented by top-level (or impl-block-level) items.
type Declaration interface {
	Node
	declarationNode()
}

// Program is the root of a single compiled file.
type Program struct {
	Uses         []*UseDecl
	Declarations []Declaration
	StartPos     token.Position
	EndPos       token.Position
}

func (p *Program) Pos() token.Position  { return p.StartPos }
func (p *Program) End() token.Position  { return p.EndPos }
func (p *Program) TokenLiteral() string { return "" }
func (p *Program) String() string       { return "Program" }

// Base embeds the span every concrete node needs; concrete node types embed
// it and implement TokenLiteral/String themselves. Exported so that other
// packages (chiefly internal/parser) can construct and populate node spans
// directly.
type Base struct {
	StartPos token.Position
	EndPos   token.Position
	Literal  string
}

// NewBase returns a Base spanning [start, end).
func NewBase(start, end token.Position) Base {
	return Base{StartPos: start, EndPos: end}
}

func (b Base) Pos() token.Position  { return b.StartPos }
func (b Base) End() token.Position  { return b.EndPos }
func (b Base) TokenLiteral() string { return b.Literal }

// Annotation is a `@name(args?)` marker attached to a declaration.
type Annotation struct {
	Base
	Name string
	Args []AnnotationArg
}

func (a *Annotation) String() string { return "@" + a.Name }

// AnnotationArg is a single `key = value` or bare positional argument inside
// an annotation's parens.
type AnnotationArg struct {
	Key   string // empty for positional arguments
	Value Expression
}

// Side is the client/server placement of a declaration. No pass assigns
// it; the Code Splitter reports placement through split.Result instead.
type Side int

const (
	SideUnknown Side = iota
	SideClient
	SideServer
	SideBoth
)

func (s Side) String() string {
	switch s {
	case SideClient:
		return "client"
	case SideServer:
		return "server"
	case SideBoth:
		return "both"
	default:
		return "unknown"
	}
}
