package parser

import (
	"strconv"
	"strings"

	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/token"
)

func (p *Parser) registerPrefix() {
	p.prefixFns[token.IDENT] = p.parseIdentifier
	p.prefixFns[token.INT] = p.parseIntegerLiteral
	p.prefixFns[token.FLOAT] = p.parseFloatLiteral
	p.prefixFns[token.STRING] = p.parseStringLiteral
	p.prefixFns[token.TEMPLATE_HEAD] = p.parseTemplateString
	p.prefixFns[token.TRUE] = p.parseBoolLiteral
	p.prefixFns[token.FALSE] = p.parseBoolLiteral
	p.prefixFns[token.NIL_KW] = p.parseNilLiteral
	p.prefixFns[token.BANG] = p.parsePrefixExpr
	p.prefixFns[token.MINUS] = p.parsePrefixExpr
	p.prefixFns[token.AWAIT] = p.parseAwaitExpr
	p.prefixFns[token.LPAREN] = p.parseGroupedOrLambda
	p.prefixFns[token.PIPE] = p.parsePipeLambda
	p.prefixFns[token.PIPE_PIPE] = p.parseEmptyPipeLambda
	p.prefixFns[token.LT] = p.parseElementExpr
	p.prefixFns[token.IF] = p.parseIfExpr
	p.prefixFns[token.MATCH] = p.parseMatchExpr
}

func (p *Parser) registerInfix() {
	infixKinds := []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NEQ, token.LT, token.GT, token.LE, token.GE,
		token.AMP_AMP, token.PIPE_PIPE, token.QUESTION_QUESTION, token.PIPE_GT,
		token.DOTDOT, token.DOTDOTEQ,
	}
	for _, k := range infixKinds {
		p.infixFns[k] = p.parseInfixExpr
	}
	p.infixFns[token.DOT] = p.parseFieldExpr
	p.infixFns[token.QUESTION_DOT] = p.parseFieldExpr
	p.infixFns[token.LPAREN] = p.parseCallExpr
	p.infixFns[token.LBRACK] = p.parseIndexExpr
	p.infixFns[token.QUESTION] = p.parseTernaryExpr
	p.infixFns[token.TRY_OP] = p.parseTryPostfix
}

// parseExpression is the Pratt-parser core: parse a prefix expression, then
// repeatedly fold in infix/postfix operators whose precedence exceeds
// minPrec. `<` in expression-start position goes to parseElementExpr (a
// prefix fn); `<` in expression-continuation position is looked up as an
// infix (less-than) operator — the same token kind, disambiguated purely
// by parser position, not by the lexer.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	prefix, ok := p.prefixFns[p.cur.Kind]
	if !ok {
		p.errorf(diag.CodeExpectedExpr, p.spanAt(p.cur), "expected an expression, got %s", p.cur.Kind)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(token.SEMI) && minPrec < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peek().Kind]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Base: ast.NewBase(p.cur.Pos, p.cur.EndPos), Name: p.cur.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := strings.ReplaceAll(p.cur.Literal, "_", "")
	var v int64
	var err error
	switch {
	case strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X"):
		v, err = strconv.ParseInt(lit[2:], 16, 64)
	case strings.HasPrefix(lit, "0b") || strings.HasPrefix(lit, "0B"):
		v, err = strconv.ParseInt(lit[2:], 2, 64)
	default:
		v, err = strconv.ParseInt(lit, 10, 64)
	}
	if err != nil {
		p.errorf(diag.CodeInvalidNumeric, p.spanAt(p.cur), "invalid integer literal %q", p.cur.Literal)
	}
	return &ast.IntegerLiteral{Base: ast.NewBase(p.cur.Pos, p.cur.EndPos), Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := strings.ReplaceAll(p.cur.Literal, "_", "")
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.errorf(diag.CodeInvalidNumeric, p.spanAt(p.cur), "invalid float literal %q", p.cur.Literal)
	}
	return &ast.FloatLiteral{Base: ast.NewBase(p.cur.Pos, p.cur.EndPos), Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Base: ast.NewBase(p.cur.Pos, p.cur.EndPos), Value: p.cur.Literal}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return &ast.BoolLiteral{Base: ast.NewBase(p.cur.Pos, p.cur.EndPos), Value: p.cur.Kind == token.TRUE}
}

func (p *Parser) parseNilLiteral() ast.Expression {
	return &ast.NilLiteral{Base: ast.NewBase(p.cur.Pos, p.cur.EndPos)}
}

// parseTemplateString continues reading TEMPLATE_MIDDLE/TEMPLATE_TAIL
// chunks interleaved with `${…}` interpolated expressions, which the lexer
// re-enters default mode for via the parser's own push/pop around each
// interpolation.
func (p *Parser) parseTemplateString() ast.Expression {
	start := p.cur.Pos
	t := &ast.TemplateStringExpr{Parts: []string{p.cur.Literal}}
	for {
		p.nextToken() // move into the interpolated expression
		expr := p.parseExpression(LOWEST)
		t.Exprs = append(t.Exprs, expr)
		if !p.expect(token.RBRACE) {
			break
		}
		// After the closing '}', the lexer resumes scanning the
		// continuation of the string literal as TEMPLATE_MIDDLE/TAIL; since
		// this lexer emits plain STRING for the remainder in the current
		// grammar, treat the next token as the next chunk when present.
		if p.peekTokenIs(token.TEMPLATE_MIDDLE) || p.peekTokenIs(token.TEMPLATE_TAIL) || p.peekTokenIs(token.STRING) {
			p.nextToken()
			t.Parts = append(t.Parts, p.cur.Literal)
			if p.cur.Kind == token.TEMPLATE_TAIL || p.cur.Kind == token.STRING {
				break
			}
			continue
		}
		t.Parts = append(t.Parts, "")
		break
	}
	t.Base = ast.NewBase(start, p.cur.EndPos)
	return t
}

func (p *Parser) parsePrefixExpr() ast.Expression {
	start := p.cur.Pos
	op := p.cur.Literal
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return &ast.PrefixExpr{Base: ast.NewBase(start, p.cur.EndPos), Op: op, Operand: operand}
}

func (p *Parser) parseAwaitExpr() ast.Expression {
	start := p.cur.Pos
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return &ast.AwaitExpr{Base: ast.NewBase(start, p.cur.EndPos), Operand: operand}
}

func (p *Parser) parseInfixExpr(left ast.Expression) ast.Expression {
	op := p.cur.Literal
	if p.cur.Kind == token.DOTDOT || p.cur.Kind == token.DOTDOTEQ {
		start := left.Pos()
		p.nextToken()
		end := p.parseExpression(RANGE)
		return &ast.RangeExpr{Base: ast.NewBase(start, p.cur.EndPos), Start: left, End: end, Inclusive: op == "..="}
	}
	prec := p.curPrecedence()
	start := left.Pos()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.InfixExpr{Base: ast.NewBase(start, p.cur.EndPos), Op: op, Left: left, Right: right}
}

func (p *Parser) parseFieldExpr(left ast.Expression) ast.Expression {
	optional := p.cur.Kind == token.QUESTION_DOT
	start := left.Pos()
	if p.peekTokenIs(token.AWAIT) {
		// `.await` is kept as a field so the type checker can reject it.
		p.nextToken()
	} else if !p.expect(token.IDENT) {
		return left
	}
	return &ast.FieldExpr{Base: ast.NewBase(start, p.cur.EndPos), Target: left, Name: p.cur.Literal, Optional: optional}
}

func (p *Parser) parseCallExpr(callee ast.Expression) ast.Expression {
	start := callee.Pos()
	var args []ast.Expression
	for !p.peekTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		p.nextToken()
		args = append(args, p.parseExpression(LOWEST))
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.RPAREN)
	return &ast.CallExpr{Base: ast.NewBase(start, p.cur.EndPos), Callee: callee, Args: args}
}

func (p *Parser) parseIndexExpr(target ast.Expression) ast.Expression {
	start := target.Pos()
	p.nextToken()
	idx := p.parseExpression(LOWEST)
	p.expect(token.RBRACK)
	return &ast.IndexExpr{Base: ast.NewBase(start, p.cur.EndPos), Target: target, Index: idx}
}

func (p *Parser) parseTernaryExpr(cond ast.Expression) ast.Expression {
	// A `?` not followed by an expression is the postfix try operator.
	if _, ok := p.prefixFns[p.peek().Kind]; !ok {
		return p.parseTryPostfix(cond)
	}
	start := cond.Pos()
	p.nextToken()
	then := p.parseExpression(TERNARY)
	if !p.expect(token.COLON) {
		return cond
	}
	p.nextToken()
	elseExpr := p.parseExpression(TERNARY)
	return &ast.TernaryExpr{Base: ast.NewBase(start, p.cur.EndPos), Cond: cond, Then: then, Else: elseExpr}
}

// parseTryPostfix lowers the postfix `?` try-propagation operator. The
// lexer emits `?` as QUESTION, so parseTernaryExpr hands it here when no
// expression follows; it is also registered as the infix fn for TRY_OP
// (the Pratt table doesn't distinguish infix/postfix shape, only that it
// consumes the operator token and returns a new expression built from
// `left`).
func (p *Parser) parseTryPostfix(left ast.Expression) ast.Expression {
	return &ast.PostfixExpr{Base: ast.NewBase(left.Pos(), p.cur.EndPos), Op: "?", Operand: left}
}

// parseGroupedOrLambda disambiguates `(expr)` grouping from `(params) =>
// body` lambda syntax by speculatively scanning ahead with saved lexer
// state: if the parenthesized list is followed by `=>`, it's a lambda.
func (p *Parser) parseGroupedOrLambda() ast.Expression {
	start := p.cur.Pos
	saved := p.lex.SaveState()
	savedCur := p.cur

	if looksLikeLambdaParams(p) {
		params := p.parseParamListBody()
		if p.peekTokenIs(token.FAT_ARROW) {
			p.nextToken() // land on '=>'
			p.nextToken() // land on the body's first token
			var body ast.Node
			if p.curTokenIs(token.LBRACE) {
				body = p.parseBlockStmt()
			} else {
				body = p.parseExpression(ASSIGN)
			}
			return &ast.LambdaExpr{Base: ast.NewBase(start, p.cur.EndPos), Params: params, Body: body}
		}
	}

	// Not a lambda: rewind and parse as a grouped expression.
	p.lex.RestoreState(saved)
	p.cur = savedCur

	p.nextToken()
	expr := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	return expr
}

// parsePipeLambda parses the `|params| body` lambda form: `|` doesn't
// introduce a grouped expression anywhere in Loom's grammar, so unlike
// `(params) => body` this needs no lookahead/rewind to disambiguate.
func (p *Parser) parsePipeLambda() ast.Expression {
	start := p.cur.Pos
	params := p.parsePipeParamListBody()
	p.nextToken() // land on the body's first token
	var body ast.Node
	if p.curTokenIs(token.LBRACE) {
		body = p.parseBlockStmt()
	} else {
		body = p.parseExpression(ASSIGN)
	}
	return &ast.LambdaExpr{Base: ast.NewBase(start, p.cur.EndPos), Params: params, Body: body}
}

// parseEmptyPipeLambda handles the common zero-parameter `|| body` spelling,
// which the lexer tokenizes as one PIPE_PIPE rather than two adjacent PIPEs.
func (p *Parser) parseEmptyPipeLambda() ast.Expression {
	start := p.cur.Pos
	p.nextToken() // land on the body's first token
	var body ast.Node
	if p.curTokenIs(token.LBRACE) {
		body = p.parseBlockStmt()
	} else {
		body = p.parseExpression(ASSIGN)
	}
	return &ast.LambdaExpr{Base: ast.NewBase(start, p.cur.EndPos), Params: nil, Body: body}
}

// parsePipeParamListBody reads the comma-separated parameter list closed by
// a second '|', assuming p.cur is already the opening '|' — the `|params|
// body` form's analogue of parseParamListBody.
func (p *Parser) parsePipeParamListBody() []ast.Param {
	var params []ast.Param
	for !p.peekTokenIs(token.PIPE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
		if !p.curTokenIs(token.IDENT) {
			break
		}
		param := ast.Param{Name: p.cur.Literal}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			param.Type = p.parseTypeExpr()
		}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			param.Default = p.parseExpression(LOWEST)
		}
		params = append(params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.PIPE)
	return params
}

// looksLikeLambdaParams performs a cheap lookahead-only check (no
// consumption) for the common `(ident...)` / `()` shapes that precede
// `=>`; ambiguous/complex parameter lists still go through the
// parse-then-rewind-on-mismatch path above.
func looksLikeLambdaParams(p *Parser) bool {
	return p.peekTokenIs(token.RPAREN) || p.peekTokenIs(token.IDENT)
}

func (p *Parser) parseIfExpr() ast.Expression {
	start := p.cur.Pos
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expect(token.LBRACE) {
		return nil
	}
	then := p.parseBlockStmt()
	ie := &ast.IfExpr{Cond: cond, Then: then}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			ie.Else = p.parseIfExpr()
		} else {
			p.expect(token.LBRACE)
			ie.Else = p.parseBlockStmt()
		}
	}
	ie.Base = ast.NewBase(start, p.cur.EndPos)
	return ie
}

func (p *Parser) parseMatchExpr() ast.Expression {
	start := p.cur.Pos
	p.nextToken()
	subject := p.parseExpression(LOWEST)
	if !p.expect(token.LBRACE) {
		return nil
	}
	m := &ast.MatchExpr{Subject: subject}
	for !p.peekTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
		arm := ast.MatchArm{Pattern: p.parsePattern()}
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			p.nextToken()
			arm.Guard = p.parseExpression(LOWEST)
		}
		if !p.expect(token.FAT_ARROW) {
			break
		}
		p.nextToken()
		arm.Body = p.parseExpression(LOWEST)
		m.Arms = append(m.Arms, arm)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.RBRACE)
	m.Base = ast.NewBase(start, p.cur.EndPos)
	return m
}

func (p *Parser) parsePattern() ast.Pattern {
	start := p.cur.Pos
	switch {
	case p.curTokenIs(token.IDENT) && p.cur.Literal == "_":
		return &ast.WildcardPattern{Base: ast.NewBase(start, p.cur.EndPos)}
	case p.curTokenIs(token.IDENT) && p.peekTokenIs(token.LPAREN):
		variant := p.cur.Literal
		p.nextToken()
		var binds []ast.Pattern
		for !p.peekTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
			p.nextToken()
			binds = append(binds, p.parsePattern())
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
			}
		}
		p.expect(token.RPAREN)
		return &ast.VariantPattern{Base: ast.NewBase(start, p.cur.EndPos), Variant: variant, Binds: binds}
	case p.curTokenIs(token.IDENT):
		return &ast.BindingPattern{Base: ast.NewBase(start, p.cur.EndPos), Name: p.cur.Literal}
	default:
		lit := p.parseExpression(LOWEST)
		return &ast.LiteralPattern{Base: ast.NewBase(start, p.cur.EndPos), Value: lit}
	}
}
