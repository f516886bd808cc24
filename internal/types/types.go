// Package types holds the resolved type system produced by the type
// checker, distinct from the syntactic ast.TypeExpr the parser builds.
package types

import "fmt"

// Type is implemented by every resolved type.
type Type interface {
	String() string
	typeNode()
}

// Primitive is one of the built-in scalar/string/unit types.
type Primitive struct {
	Name string // "int", "float", "string", "bool", "unit"
}

func (p *Primitive) typeNode()      {}
func (p *Primitive) String() string { return p.Name }

var (
	Int    = &Primitive{Name: "int"}
	Float  = &Primitive{Name: "float"}
	String = &Primitive{Name: "string"}
	Bool   = &Primitive{Name: "bool"}
	Unit   = &Primitive{Name: "unit"}
	// Unknown is produced in place of a type that failed to resolve, so
	// checking can keep going after one mismatch rather than cascading.
	Unknown = &Primitive{Name: "<unknown>"}
)

// ArrayType is `[T]`.
type ArrayType struct {
	Elem Type
}

func (t *ArrayType) typeNode()      {}
func (t *ArrayType) String() string { return "[" + t.Elem.String() + "]" }

// OptionType is `T?`, a nilable wrapper.
type OptionType struct {
	Elem Type
}

func (t *OptionType) typeNode()      {}
func (t *OptionType) String() string { return t.Elem.String() + "?" }

// ReactiveType is `Reactive<T>`, the type of a signal/computed handle.
// Reading `.value` on an expression of this type yields Elem and is what
// the Reactive Analyzer looks for when flagging reads.
type ReactiveType struct {
	Elem Type
}

func (t *ReactiveType) typeNode()      {}
func (t *ReactiveType) String() string { return fmt.Sprintf("Reactive<%s>", t.Elem) }

// FutureType is the type of an awaitable expression (an async function's
// return type before unwrapping).
type FutureType struct {
	Elem Type
}

func (t *FutureType) typeNode()      {}
func (t *FutureType) String() string { return fmt.Sprintf("Future<%s>", t.Elem) }

// ResultType is `Result<T,E>`; the `?` operator propagates its Err
// payload out of the enclosing function.
type ResultType struct {
	Ok  Type
	Err Type
}

func (t *ResultType) typeNode()      {}
func (t *ResultType) String() string { return fmt.Sprintf("Result<%s,%s>", t.Ok, t.Err) }

// MapType is `Map<K,V>`.
type MapType struct {
	Key   Type
	Value Type
}

func (t *MapType) typeNode()      {}
func (t *MapType) String() string { return fmt.Sprintf("Map<%s,%s>", t.Key, t.Value) }

// FuncType is a callable signature.
type FuncType struct {
	Params []Type
	Result Type
	Async  bool
}

func (t *FuncType) typeNode() {}
func (t *FuncType) String() string {
	s := "fn("
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	s += ") -> " + t.Result.String()
	return s
}

// StructField is one named, typed field of a StructType.
type StructField struct {
	Name string
	Type Type
}

// StructType is a user-defined record type.
type StructType struct {
	Name   string
	Fields []StructField
}

func (t *StructType) typeNode()      {}
func (t *StructType) String() string { return t.Name }

func (t *StructType) FieldType(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// EnumVariant is one variant of an EnumType, with positional payload types.
type EnumVariant struct {
	Name   string
	Fields []Type
}

// EnumType is a user-defined tagged union.
type EnumType struct {
	Name     string
	Variants []EnumVariant
}

func (t *EnumType) typeNode()      {}
func (t *EnumType) String() string { return t.Name }

func (t *EnumType) Variant(name string) (EnumVariant, bool) {
	for _, v := range t.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return EnumVariant{}, false
}

// ComponentType is the type of a component declaration: a typed props
// record mapped to an element-producing function.
type ComponentType struct {
	Name  string
	Props *StructType
}

func (t *ComponentType) typeNode()      {}
func (t *ComponentType) String() string { return t.Name }

// ElementType is the result type of any element expression — DOM
// primitives and component invocations share one opaque node type.
var Element Type = &Primitive{Name: "Element"}

// Equal reports whether two resolved types are structurally identical.
// Unknown is never equal to anything (including itself) so a checking
// error doesn't silently suppress a subsequent real mismatch.
func Equal(a, b Type) bool {
	if a == Unknown || b == Unknown {
		return false
	}
	switch av := a.(type) {
	case *Primitive:
		bv, ok := b.(*Primitive)
		return ok && av.Name == bv.Name
	case *ArrayType:
		bv, ok := b.(*ArrayType)
		return ok && Equal(av.Elem, bv.Elem)
	case *OptionType:
		bv, ok := b.(*OptionType)
		return ok && Equal(av.Elem, bv.Elem)
	case *ReactiveType:
		bv, ok := b.(*ReactiveType)
		return ok && Equal(av.Elem, bv.Elem)
	case *FutureType:
		bv, ok := b.(*FutureType)
		return ok && Equal(av.Elem, bv.Elem)
	case *ResultType:
		bv, ok := b.(*ResultType)
		return ok && Equal(av.Ok, bv.Ok) && Equal(av.Err, bv.Err)
	case *MapType:
		bv, ok := b.(*MapType)
		return ok && Equal(av.Key, bv.Key) && Equal(av.Value, bv.Value)
	case *FuncType:
		bv, ok := b.(*FuncType)
		if !ok || len(av.Params) != len(bv.Params) || av.Async != bv.Async {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return Equal(av.Result, bv.Result)
	case *StructType:
		bv, ok := b.(*StructType)
		return ok && av.Name == bv.Name
	case *EnumType:
		bv, ok := b.(*EnumType)
		return ok && av.Name == bv.Name
	case *ComponentType:
		bv, ok := b.(*ComponentType)
		return ok && av.Name == bv.Name
	default:
		return a == b
	}
}

// IsReactive reports whether t is a Reactive<T> handle.
func IsReactive(t Type) (*ReactiveType, bool) {
	rt, ok := t.(*ReactiveType)
	return rt, ok
}

// IsOption reports whether t is an Option<T> (`T?`) wrapper.
func IsOption(t Type) (*OptionType, bool) {
	ot, ok := t.(*OptionType)
	return ot, ok
}

// IsResult reports whether t is a Result<T,E>.
func IsResult(t Type) (*ResultType, bool) {
	rt, ok := t.(*ResultType)
	return rt, ok
}

// IsNumeric reports whether t is one of the numeric primitives.
func IsNumeric(t Type) bool {
	p, ok := t.(*Primitive)
	return ok && (p.Name == "int" || p.Name == "float")
}
