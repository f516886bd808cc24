package parser

import (
	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/token"
)

// parseTypeExpr parses a syntactic type annotation, assuming p.cur is
// already positioned at the type's first token. Leaves p.cur on the last
// token consumed, following the same after-advance convention as the
// expression parsers.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	base := p.parseAtomTypeExpr()
	if base == nil {
		return nil
	}
	for p.peekTokenIs(token.QUESTION) {
		p.nextToken()
		base = &ast.OptionTypeExpr{Base: ast.NewBase(base.Pos(), p.cur.EndPos), Elem: base}
	}
	return base
}

func (p *Parser) parseAtomTypeExpr() ast.TypeExpr {
	start := p.cur.Pos

	switch p.cur.Kind {
	case token.LBRACK:
		p.nextToken() // element type start
		elem := p.parseTypeExpr()
		if !p.expect(token.RBRACK) {
			return nil
		}
		return &ast.ArrayTypeExpr{Base: ast.NewBase(start, p.cur.EndPos), Elem: elem}

	case token.FN:
		return p.parseFuncTypeExpr(start)

	case token.IDENT:
		name := p.cur.Literal
		var typeArgs []ast.TypeExpr
		if p.peekTokenIs(token.LT) {
			p.nextToken() // '<'
			p.nextToken() // first type-arg token
			for {
				arg := p.parseTypeExpr()
				if arg != nil {
					typeArgs = append(typeArgs, arg)
				}
				if p.peekTokenIs(token.COMMA) {
					p.nextToken()
					p.nextToken()
					continue
				}
				break
			}
			if !p.expect(token.GT) {
				return nil
			}
		}
		return &ast.NamedTypeExpr{Base: ast.NewBase(start, p.cur.EndPos), Name: name, TypeArgs: typeArgs}

	default:
		p.errorf(diag.CodeUnexpectedToken, p.spanAt(p.cur), "expected a type, got %s", p.cur.Kind)
		return nil
	}
}

// parseFuncTypeExpr parses `fn(T, T): T`, the annotation form used for
// lambda/callback parameters and typed let-bindings. Loom spells the
// return-type arrow as ':', the same separator struct fields and
// component props use, rather than introducing a second arrow spelling.
func (p *Parser) parseFuncTypeExpr(start token.Position) ast.TypeExpr {
	if !p.expect(token.LPAREN) {
		return nil
	}
	var params []ast.TypeExpr
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		for {
			t := p.parseTypeExpr()
			if t != nil {
				params = append(params, t)
			}
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	var result ast.TypeExpr
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		result = p.parseTypeExpr()
	}
	return &ast.FuncTypeExpr{Base: ast.NewBase(start, p.cur.EndPos), Params: params, Result: result}
}
