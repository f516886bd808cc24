package parser

import (
	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/token"
)

func (p *Parser) parseBlockStmt() *ast.BlockStmt {
	start := p.cur.Pos // '{' token
	p.pushBlock("block")
	defer p.popBlock()

	block := &ast.BlockStmt{}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		before := p.cur
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.cur == before {
			p.synchronize()
		}
	}
	block.Base = ast.NewBase(start, p.cur.EndPos)
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Kind {
	case token.LET, token.CONST:
		return p.parseLetStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.BREAK:
		s := &ast.BreakStmt{Base: ast.NewBase(p.cur.Pos, p.cur.EndPos)}
		p.nextToken()
		p.consumeOptionalSemi()
		return s
	case token.CONTINUE:
		s := &ast.ContinueStmt{Base: ast.NewBase(p.cur.Pos, p.cur.EndPos)}
		p.nextToken()
		p.consumeOptionalSemi()
		return s
	case token.WHILE:
		s := p.parseWhileStmt()
		p.nextToken() // step past the body's closing '}'
		return s
	case token.FOR:
		s := p.parseForStmt()
		p.nextToken() // step past the body's closing '}'
		return s
	case token.LOOP:
		s := p.parseLoopStmt()
		p.nextToken() // step past the body's closing '}'
		return s
	case token.SCRIPT:
		return p.parseScriptStmt()
	case token.SEMI:
		p.nextToken()
		return nil
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) consumeOptionalSemi() {
	if p.curTokenIs(token.SEMI) {
		p.nextToken()
	}
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	start := p.cur.Pos
	p.nextToken() // 'let'/'const' -> land on 'mut'? or ident
	mut := false
	if p.curTokenIs(token.MUT) {
		mut = true
		p.nextToken()
	}
	if !p.curTokenIs(token.IDENT) {
		p.errorf(diag.CodeUnexpectedToken, p.spanAt(p.cur), "expected identifier in let binding")
		return nil
	}
	name := p.cur.Literal
	s := &ast.LetStmt{Name: name, Mut: mut}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		s.Type = p.parseTypeExpr()
	}
	if p.expect(token.ASSIGN) {
		p.nextToken()
		s.Value = p.parseExpression(LOWEST)
	}
	s.Base = ast.NewBase(start, p.cur.EndPos)
	p.nextToken()
	p.consumeOptionalSemiAtCur()
	return s
}

// consumeOptionalSemiAtCur consumes a trailing ';' that parseExpression
// left as the *current* token (rather than peek), matching the
// after-advance convention used by statement parsers in this file.
func (p *Parser) consumeOptionalSemiAtCur() {
	if p.curTokenIs(token.SEMI) {
		p.nextToken()
	}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.cur.Pos
	s := &ast.ReturnStmt{}
	if p.peekTokenIs(token.SEMI) || p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		s.Base = ast.NewBase(start, p.cur.EndPos)
		p.consumeOptionalSemi()
		return s
	}
	p.nextToken()
	s.Value = p.parseExpression(LOWEST)
	s.Base = ast.NewBase(start, p.cur.EndPos)
	p.nextToken()
	p.consumeOptionalSemiAtCur()
	return s
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.cur.Pos
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStmt()
	return &ast.WhileStmt{Base: ast.NewBase(start, body.EndPos), Cond: cond, Body: body}
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	start := p.cur.Pos
	p.nextToken()
	if !p.curTokenIs(token.IDENT) {
		p.errorf(diag.CodeUnexpectedToken, p.spanAt(p.cur), "expected binding name after 'for'")
		return nil
	}
	binding := p.cur.Literal
	if !p.expect(token.IN) {
		return nil
	}
	p.nextToken()
	iterable := p.parseExpression(LOWEST)
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStmt()
	return &ast.ForStmt{Base: ast.NewBase(start, body.EndPos), Binding: binding, Iterable: iterable, Body: body}
}

func (p *Parser) parseLoopStmt() *ast.LoopStmt {
	start := p.cur.Pos
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStmt()
	return &ast.LoopStmt{Base: ast.NewBase(start, body.EndPos), Body: body}
}

// parseScriptStmt reads a `script { ... }` block as an opaque raw fragment:
// balanced braces are tracked but the content is not tokenized as Loom
// source, since it's meant to pass through to the server bundle verbatim.
// The lexer's lookahead buffer is bypassed entirely for the raw scan — it
// reads straight from the source text between the brace offsets, then
// reseeks the lexer past the closing brace before resuming normal
// tokenization.
func (p *Parser) parseScriptStmt() *ast.ScriptStmt {
	start := p.cur.Pos
	if !p.expect(token.LBRACE) {
		return nil
	}
	braceEnd := p.cur.EndPos
	raw, after, endLine := p.lex.ReadRawBalancedFrom(braceEnd.Offset)
	endPos := token.Position{Line: endLine, Offset: after}
	s := &ast.ScriptStmt{Base: ast.NewBase(start, endPos), Raw: raw}

	p.lex.Reseek(after)
	p.nextToken()
	return s
}

var assignOps = map[token.Kind]ast.AssignOp{
	token.ASSIGN:          ast.AssignPlain,
	token.PLUS_ASSIGN:     ast.AssignAdd,
	token.MINUS_ASSIGN:    ast.AssignSub,
	token.STAR_ASSIGN:     ast.AssignMul,
	token.SLASH_ASSIGN:    ast.AssignDiv,
	token.OR_ASSIGN:       ast.AssignOr,
	token.AND_ASSIGN:      ast.AssignAnd,
	token.COALESCE_ASSIGN: ast.AssignCoalesce,
}

func (p *Parser) parseExprOrAssignStmt() ast.Statement {
	start := p.cur.Pos
	expr := p.parseExpression(LOWEST)
	if op, ok := assignOps[p.peek().Kind]; ok {
		p.nextToken()
		opKind := op
		p.nextToken()
		value := p.parseExpression(LOWEST)
		s := &ast.AssignStmt{Target: expr, Op: opKind, Value: value}
		s.Base = ast.NewBase(start, p.cur.EndPos)
		p.nextToken()
		p.consumeOptionalSemiAtCur()
		return s
	}
	s := &ast.ExprStmt{Expr: expr}
	s.Base = ast.NewBase(start, p.cur.EndPos)
	p.nextToken()
	p.consumeOptionalSemiAtCur()
	return s
}
