package typecheck

import "github.com/loomlang/loomc/internal/types"

// scope is a chain of name -> resolved-type bindings, mirroring the
// semantic analyzer's SymbolTable but carrying a types.Type instead of a
// Kind — the Type Checker keeps its own scope chain rather than reusing
// the Semantic Analyzer's, since the two passes are only permitted to
// mutate their own symbol tables during their own pass.
type scope struct {
	vars  map[string]types.Type
	outer *scope
}

func newScope(outer *scope) *scope {
	return &scope{vars: make(map[string]types.Type), outer: outer}
}

func (s *scope) define(name string, t types.Type) {
	s.vars[name] = t
}

func (s *scope) resolve(name string) (types.Type, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if t, ok := sc.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}
