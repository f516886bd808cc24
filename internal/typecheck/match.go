package typecheck

import (
	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/types"
)

// optionVariants and resultVariants name the built-in structural types'
// pseudo-variants, since Option<T>/Result<T,E> are not user EnumDecls but
// still participate in variant-pattern matching and exhaustiveness.
var optionVariants = []string{"Some", "None"}
var resultVariants = []string{"Ok", "Err"}

// checkMatch infers each arm's body type (the match's own type is the
// first arm's, consistent with how an if/match expression's value is used
// downstream) and checks enum/Option/Result exhaustiveness: a match is
// exhaustive if every variant is covered by some arm's pattern, or any arm
// carries a wildcard/plain-binding pattern.
func (c *Checker) checkMatch(m *ast.MatchExpr, sc *scope) types.Type {
	subjectType := c.inferExpr(m.Subject, sc)

	var resultType types.Type = types.Unknown
	covered := make(map[string]bool)
	catchAll := false

	for i, arm := range m.Arms {
		armScope := newScope(sc)
		c.bindPattern(arm.Pattern, subjectType, armScope)
		switch pat := arm.Pattern.(type) {
		case *ast.VariantPattern:
			covered[pat.Variant] = true
		case *ast.WildcardPattern, *ast.BindingPattern:
			catchAll = true
		}
		if arm.Guard != nil {
			c.inferExpr(arm.Guard, armScope)
		}
		bodyType := c.inferExpr(arm.Body, armScope)
		if i == 0 {
			resultType = bodyType
		}
	}

	if !catchAll {
		missing := missingVariants(subjectType, covered)
		if len(missing) > 0 {
			c.bag.Add(diag.Diagnostic{
				Code:       diag.CodeMatchNotExhaustive,
				Severity:   diag.SeverityError,
				Message:    "match is not exhaustive",
				Primary:    spanOf(m),
				Suggestion: "add a `_` arm or cover: " + joinNames(missing),
			})
		}
	}
	return resultType
}

func missingVariants(subjectType types.Type, covered map[string]bool) []string {
	var names []string
	switch t := subjectType.(type) {
	case *types.EnumType:
		for _, v := range t.Variants {
			if !covered[v.Name] {
				names = append(names, v.Name)
			}
		}
	case *types.OptionType:
		for _, v := range optionVariants {
			if !covered[v] {
				names = append(names, v)
			}
		}
	case *types.ResultType:
		for _, v := range resultVariants {
			if !covered[v] {
				names = append(names, v)
			}
		}
	}
	return names
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// bindPattern introduces the bindings a pattern matched against
// subjectType contributes to armScope — the if-let narrowing contract
// (the design) is realized here: a `Some(x)` arm narrows x to the
// option's element type within that arm, matching the narrowing an
// `if-let Some(x) = opt` would give if the grammar had a dedicated form.
func (c *Checker) bindPattern(p ast.Pattern, subjectType types.Type, sc *scope) {
	switch pat := p.(type) {
	case *ast.BindingPattern:
		sc.define(pat.Name, subjectType)
	case *ast.VariantPattern:
		fieldTypes := variantFieldTypes(subjectType, pat.Variant)
		for i, sub := range pat.Binds {
			var ft types.Type = types.Unknown
			if i < len(fieldTypes) {
				ft = fieldTypes[i]
			}
			c.bindPattern(sub, ft, sc)
		}
	}
}

func variantFieldTypes(subjectType types.Type, variant string) []types.Type {
	switch t := subjectType.(type) {
	case *types.EnumType:
		if v, ok := t.Variant(variant); ok {
			return v.Fields
		}
	case *types.OptionType:
		if variant == "Some" {
			return []types.Type{t.Elem}
		}
	case *types.ResultType:
		if variant == "Ok" {
			return []types.Type{t.Ok}
		}
		if variant == "Err" {
			return []types.Type{t.Err}
		}
	}
	return nil
}
