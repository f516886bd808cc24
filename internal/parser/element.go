package parser

import (
	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/token"
)

// parseElementExpr parses an embedded-XML element expression starting at
// the `<` that was recognized, by the caller's position context, as an
// expression-start token rather than a less-than operator.
//
// The tag name, attribute list, and closing `>`/`/>` are always read under
// a freshly pushed default-mode frame (EnterExprMode/LeaveExprMode), never
// by assuming default mode happens to already be active — that assumption
// would break at nesting depth > 1, where the mode just below the current
// element-body frame is the *parent* element's body mode, not default.
// Only the child content between `>` and the matching `</tag>` runs under
// element-body mode, pushed and popped as its own frame.
func (p *Parser) parseElementExpr() ast.Expression {
	start := p.cur.Pos // '<'

	p.lex.EnterExprMode()
	tag, attrs, selfClosed := p.parseElementOpenTag()
	p.lex.LeaveExprMode()

	if selfClosed || tag == "" {
		return &ast.ElementExpr{
			Base:       ast.NewBase(start, p.cur.EndPos),
			Tag:        tag,
			Attributes: attrs,
			SelfClosed: true,
		}
	}

	p.lex.EnterElementMode()
	children := p.parseElementChildren(tag)
	p.lex.LeaveElementMode()

	return &ast.ElementExpr{
		Base:       ast.NewBase(start, p.cur.EndPos),
		Tag:        tag,
		Attributes: attrs,
		Children:   children,
	}
}

// parseElementOpenTag reads the tag name and attribute list, assuming the
// lexer is already under a default-mode frame. Returns tag == "" on a
// malformed tag (an error has already been reported).
func (p *Parser) parseElementOpenTag() (tag string, attrs []ast.Attribute, selfClosed bool) {
	if !p.expect(token.IDENT) {
		return "", nil, false
	}
	tag = p.cur.Literal

	for p.peekTokenIs(token.IDENT) {
		p.nextToken()
		attrName := p.cur.Literal
		attrPos := p.cur.Pos
		var value ast.Expression
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken() // '='
			p.nextToken() // value start
			if p.curTokenIs(token.LBRACE) {
				p.nextToken()
				value = p.parseExpression(LOWEST)
				p.expect(token.RBRACE)
			} else {
				// Stop at PRODUCT precedence so neither the tag's own closing
				// '>' nor a self-closing '/>' gets folded in as a binary
				// operator over the attribute value; member/call/index chains
				// (higher precedence) still parse bare, everything else needs
				// an explicit `{...}`.
				value = p.parseExpression(PRODUCT)
			}
		} else {
			// Bare boolean-shorthand attribute (`<input disabled>`), value
			// defaults to a literal `true`.
			value = &ast.BoolLiteral{Base: ast.NewBase(attrPos, p.cur.EndPos), Value: true}
		}
		attrs = append(attrs, ast.Attribute{Name: attrName, Value: value, Pos: attrPos})
	}

	if p.peekTokenIs(token.SLASH) {
		p.nextToken() // '/'
		p.expect(token.GT)
		return tag, attrs, true
	}
	p.expect(token.GT)
	return tag, attrs, false
}

// parseElementChildren reads element-body-mode tokens until it sees the
// `</tag>` that closes this element, recursing into nested elements and
// re-entering default mode for each `{…}` child expression and for the
// closing tag name itself.
func (p *Parser) parseElementChildren(tag string) []ast.ElementChild {
	var children []ast.ElementChild
	p.nextToken() // prime cur as the first element-body token

	for {
		switch p.cur.Kind {
		case token.EOF:
			p.errorf(diag.CodeUnclosedElement, p.spanAt(p.cur), "unclosed element <%s>", tag)
			return children
		case token.ELEMENT_TEXT:
			if p.cur.Literal != "" {
				children = append(children, &ast.TextChild{Base: ast.NewBase(p.cur.Pos, p.cur.EndPos), Text: p.cur.Literal})
			}
			p.nextToken()
		case token.LBRACE:
			start := p.cur.Pos
			p.lex.EnterExprMode()
			p.nextToken() // first token of the nested expression
			expr := p.parseExpression(LOWEST)
			// The closing '}' is already buffered under default mode;
			// consume it before popping, since the pop discards lookahead.
			ok := p.expect(token.RBRACE)
			p.lex.LeaveExprMode()
			if !ok {
				return children
			}
			children = append(children, &ast.ExprChild{Base: ast.NewBase(start, p.cur.EndPos), Expr: expr})
			p.nextToken()
		case token.LT:
			// parseElementExpr manages its own default-mode frame for the
			// nested tag/attrs and its own element-body frame for its
			// children, so no mode juggling is needed at this call site.
			nested := p.parseElementExpr()
			if el, ok := nested.(*ast.ElementExpr); ok {
				children = append(children, el)
			}
			p.nextToken()
		case token.LT_SLASH:
			p.lex.EnterExprMode()
			p.nextToken() // tag name, now read under default mode
			if p.cur.Literal != tag {
				p.errorf(diag.CodeMismatchedTag, p.spanAt(p.cur), "mismatched closing tag: expected </%s>, got </%s>", tag, p.cur.Literal)
			}
			p.expect(token.GT)
			p.lex.LeaveExprMode()
			return children
		default:
			p.errorf(diag.CodeUnexpectedToken, p.spanAt(p.cur), "unexpected token %s inside element body", p.cur.Kind)
			p.nextToken()
		}
	}
}
