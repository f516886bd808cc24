package parser

import (
	"strings"

	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/token"
)

// parseStyleDecl parses a `style Name { ... }` scoped CSS block. The body
// is read entirely under style-body mode; only the declaring keyword,
// name, and opening brace are read under whatever mode was already active.
func (p *Parser) parseStyleDecl() *ast.StyleDecl {
	start := p.cur.Pos // 'style'
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	if !p.expect(token.LBRACE) {
		return nil
	}

	p.lex.EnterStyleMode()
	p.nextToken() // prime first style-body token
	var rules []ast.StyleRule
	for !p.curTokenIs(token.STYLE_RBRACE) && !p.curTokenIs(token.EOF) {
		if !p.curTokenIs(token.IDENT) {
			p.errorf(diag.CodeUnexpectedToken, p.spanAt(p.cur), "expected a selector in style block, got %s", p.cur.Kind)
			p.nextToken()
			continue
		}
		rule := p.parseStyleRule(0)
		if rule != nil {
			rules = append(rules, *rule)
		}
	}
	end := p.cur.EndPos
	p.lex.LeaveStyleMode()

	return &ast.StyleDecl{Base: ast.NewBase(start, end), Name: name, Rules: rules}
}

// parseStyleRule parses one `selector[, selector] { declaration... }`
// group, or a nested media-query-like group when the selector text begins
// with '@'. depth tracks nesting so groups deeper than one level are
// rejected — the generator only ever emits a flat rule plus one level of
// nested rules for scoped CSS.
func (p *Parser) parseStyleRule(depth int) *ast.StyleRule {
	pos := p.cur.Pos
	selText := strings.TrimSpace(p.cur.Literal)
	isMedia := strings.HasPrefix(selText, "@")

	if !p.expect(token.STYLE_LBRACE) {
		return nil
	}

	var decls []ast.StyleDeclaration
	var nested []ast.StyleRule
	p.nextToken() // prime first token of the rule body

	for !p.curTokenIs(token.STYLE_RBRACE) && !p.curTokenIs(token.EOF) {
		switch p.cur.Kind {
		case token.IDENT:
			if p.peekTokenIs(token.STYLE_LBRACE) {
				if depth >= 1 {
					p.errorf(diag.CodeStyleNestingTooDeep, p.spanAt(p.cur), "style rules may nest at most one level deep")
				}
				n := p.parseStyleRule(depth + 1)
				if n != nil {
					nested = append(nested, *n)
				}
				continue
			}
			prop := p.cur.Literal
			propPos := p.cur.Pos
			if !p.expect(token.STYLE_VALUE) {
				p.nextToken()
				continue
			}
			decls = append(decls, ast.StyleDeclaration{Property: prop, Value: p.cur.Literal, Pos: propPos})
			p.nextToken()
			if p.curTokenIs(token.STYLE_SEMI) {
				p.nextToken()
			}
		default:
			p.errorf(diag.CodeUnexpectedToken, p.spanAt(p.cur), "unexpected token %s inside style rule", p.cur.Kind)
			p.nextToken()
		}
	}

	if p.curTokenIs(token.STYLE_RBRACE) {
		p.nextToken() // consume the rule's own closing brace, prime the next sibling
	}

	rule := &ast.StyleRule{
		Selectors:    splitSelectors(selText),
		Declarations: decls,
		Nested:       nested,
		Pos:          pos,
	}
	if isMedia {
		rule.MediaQuery = selText
	}
	return rule
}

func splitSelectors(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
