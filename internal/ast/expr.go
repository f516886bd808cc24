package ast

// Identifier is a name reference.
type Identifier struct {
	Base
	Name string
}

func (e *Identifier) expressionNode() {}
func (e *Identifier) String() string  { return e.Name }

// IntegerLiteral is a decimal/hex/binary integer literal.
type IntegerLiteral struct {
	Base
	Value int64
}

func (e *IntegerLiteral) expressionNode() {}
func (e *IntegerLiteral) String() string  { return e.Literal }

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	Base
	Value float64
}

func (e *FloatLiteral) expressionNode() {}
func (e *FloatLiteral) String() string  { return e.Literal }

// BoolLiteral is `true`/`false`.
type BoolLiteral struct {
	Base
	Value bool
}

func (e *BoolLiteral) expressionNode() {}
func (e *BoolLiteral) String() string  { return e.Literal }

// NilLiteral is `nil`.
type NilLiteral struct{ Base }

func (e *NilLiteral) expressionNode() {}
func (e *NilLiteral) String() string  { return "nil" }

// StringLiteral is a plain (non-interpolated) string literal.
type StringLiteral struct {
	Base
	Value string
}

func (e *StringLiteral) expressionNode() {}
func (e *StringLiteral) String() string  { return e.Value }

// TemplateStringExpr is a `"...${expr}..."` interpolated string: an
// alternating sequence of literal text chunks and interpolated
// expressions, Parts always has len(Exprs)+1 entries.
type TemplateStringExpr struct {
	Base
	Parts []string
	Exprs []Expression
}

func (e *TemplateStringExpr) expressionNode() {}
func (e *TemplateStringExpr) String() string  { return "template-string" }

// PrefixExpr is a unary prefix operator (`!x`, `-x`); `await x` is an
// AwaitExpr.
type PrefixExpr struct {
	Base
	Op      string
	Operand Expression
}

func (e *PrefixExpr) expressionNode() {}
func (e *PrefixExpr) String() string  { return e.Op + "(prefix)" }

// PostfixExpr is a unary postfix operator — only the try-propagation `?`
// operator in this grammar.
type PostfixExpr struct {
	Base
	Op      string
	Operand Expression
}

func (e *PostfixExpr) expressionNode() {}
func (e *PostfixExpr) String() string  { return "(postfix)" + e.Op }

// InfixExpr is a binary operator expression.
type InfixExpr struct {
	Base
	Op    string
	Left  Expression
	Right Expression
}

func (e *InfixExpr) expressionNode() {}
func (e *InfixExpr) String() string  { return "(infix)" + e.Op }

// FieldExpr is `target.name` field/property access, including `.value` on
// a reactive handle.
type FieldExpr struct {
	Base
	Target Expression
	Name   string
	// Optional marks a `?.` access.
	Optional bool
}

func (e *FieldExpr) expressionNode() {}
func (e *FieldExpr) String() string  { return "." + e.Name }

// CallExpr is `callee(args...)`, covering both function calls and method
// calls (where Callee is a FieldExpr).
type CallExpr struct {
	Base
	Callee Expression
	Args   []Expression
}

func (e *CallExpr) expressionNode() {}
func (e *CallExpr) String() string  { return "call" }

// IndexExpr is `target[index]`.
type IndexExpr struct {
	Base
	Target Expression
	Index  Expression
}

func (e *IndexExpr) expressionNode() {}
func (e *IndexExpr) String() string  { return "index" }

// IfExpr is `if cond { then } else { else }`, usable as an expression or a
// statement depending on context (ExprStmt wraps it for the latter).
type IfExpr struct {
	Base
	Cond Expression
	Then *BlockStmt
	// Else is either a *BlockStmt or an *IfExpr (else-if chaining), nil if
	// there is no else branch.
	Else Node
}

func (e *IfExpr) expressionNode() {}
func (e *IfExpr) String() string  { return "if" }

// MatchArm is one `pattern => body` arm of a MatchExpr.
type MatchArm struct {
	Pattern Pattern
	Guard   Expression // nil if no `if` guard
	Body    Expression
}

// MatchExpr is `match subject { arm, arm, ... }`.
type MatchExpr struct {
	Base
	Subject Expression
	Arms    []MatchArm
}

func (e *MatchExpr) expressionNode() {}
func (e *MatchExpr) String() string  { return "match" }

// Pattern is a match arm pattern: identifier binding, literal, enum
// variant destructure, wildcard, or struct destructure.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern is `_`.
type WildcardPattern struct{ Base }

func (p *WildcardPattern) patternNode() {}
func (p *WildcardPattern) String() string { return "_" }

// BindingPattern binds the matched value to a name.
type BindingPattern struct {
	Base
	Name string
}

func (p *BindingPattern) patternNode() {}
func (p *BindingPattern) String() string { return p.Name }

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	Base
	Value Expression
}

func (p *LiteralPattern) patternNode() {}
func (p *LiteralPattern) String() string { return "literal-pattern" }

// VariantPattern destructures an enum variant, e.g. `Some(x)`.
type VariantPattern struct {
	Base
	Variant string
	Binds   []Pattern
}

func (p *VariantPattern) patternNode() {}
func (p *VariantPattern) String() string { return p.Variant }

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	Base
	Cond Expression
	Then Expression
	Else Expression
}

func (e *TernaryExpr) expressionNode() {}
func (e *TernaryExpr) String() string  { return "ternary" }

// LambdaExpr is `(params) => expr` or `(params) => { block }`.
type LambdaExpr struct {
	Base
	Async  bool
	Params []Param
	// Body is either an Expression (arrow-expression form) or a *BlockStmt.
	Body Node
}

func (e *LambdaExpr) expressionNode() {}
func (e *LambdaExpr) String() string  { return "lambda" }

// RangeExpr is `start..end` or `start..=end`.
type RangeExpr struct {
	Base
	Start     Expression
	End       Expression
	Inclusive bool
}

func (e *RangeExpr) expressionNode() {}
func (e *RangeExpr) String() string  { return "range" }

// AwaitExpr is `await expr`. Kept distinct from PrefixExpr so the type
// checker can enforce async-context placement without string-matching an
// operator name.
type AwaitExpr struct {
	Base
	Operand Expression
}

func (e *AwaitExpr) expressionNode() {}
func (e *AwaitExpr) String() string  { return "await" }
