// Package parser implements Loom's recursive-descent, precedence-climbing
// parser. It owns the lexer's mode stack: every mode transition is applied
// at the grammatical boundary that triggers it (the `<` that starts an
// element, the `{` that opens a style block or re-enters expression mode
// for an interpolation), always *before* the next token is requested — the
// lexer itself never guesses at a mode switch.
package parser

import (
	"reflect"

	"github.com/loomlang/loomc/internal/ast"
	"github.com/loomlang/loomc/internal/diag"
	"github.com/loomlang/loomc/internal/lexer"
	"github.com/loomlang/loomc/internal/token"
)

// Precedence levels for the Pratt expression parser, lowest to highest.
const (
	LOWEST = iota
	ASSIGN
	COALESCE
	TERNARY
	OR
	AND
	EQUALS
	LESSGREATER
	RANGE
	SUM
	PRODUCT
	PREFIX
	PIPE
	CALL
	INDEX
	MEMBER
)

var precedences = map[token.Kind]int{
	token.QUESTION_QUESTION: COALESCE,
	token.QUESTION:           TERNARY,
	token.PIPE_PIPE:          OR,
	token.AMP_AMP:            AND,
	token.EQ:                 EQUALS,
	token.NEQ:                EQUALS,
	token.LT:                 LESSGREATER,
	token.GT:                 LESSGREATER,
	token.LE:                 LESSGREATER,
	token.GE:                 LESSGREATER,
	token.DOTDOT:             RANGE,
	token.DOTDOTEQ:           RANGE,
	token.PLUS:               SUM,
	token.MINUS:              SUM,
	token.STAR:               PRODUCT,
	token.SLASH:              PRODUCT,
	token.PERCENT:            PRODUCT,
	token.PIPE_GT:            PIPE,
	token.LPAREN:             CALL,
	token.LBRACK:             INDEX,
	token.DOT:                MEMBER,
	token.QUESTION_DOT:       MEMBER,
	token.TRY_OP:             INDEX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// blockContext names the kind of enclosing block, used to produce better
// "unclosed X" diagnostics at EOF/recovery time.
type blockContext struct {
	kind     string
	startPos token.Position
}

// Parser turns a token stream into an ast.Program, collecting diagnostics
// rather than stopping at the first syntax error.
type Parser struct {
	lex  *lexer.Lexer
	diag *diag.Bag
	file string

	cur token.Token

	blockStack []blockContext

	prefixFns map[token.Kind]prefixParseFn
	infixFns  map[token.Kind]infixParseFn
}

// New constructs a Parser over source and reads the first token into cur.
//
// Unlike a fixed two-token-lookahead design, the second lookahead token is
// never eagerly buffered in the Parser itself — it is fetched on demand
// from the lexer's own lazy Peek(0), which always reflects whatever mode
// is on top of the mode stack *right now*. A Parser-owned peek field would
// have been fetched one mode-transition too early at every element/style
// boundary (the exact bug class the lexer package's doc comment warns
// about); querying the lexer lazily instead means EnterElementMode/
// LeaveElementMode calls made immediately after consuming the triggering
// token are visible to the very next peek.
func New(source, file string) *Parser {
	p := &Parser{
		lex:  lexer.New(source),
		diag: &diag.Bag{},
		file: file,
	}
	p.prefixFns = make(map[token.Kind]prefixParseFn)
	p.infixFns = make(map[token.Kind]infixParseFn)
	p.registerPrefix()
	p.registerInfix()

	p.nextToken()
	return p
}

// Diagnostics returns the diagnostics collected while parsing, including
// any lexical errors surfaced as E_LEX_* diagnostics.
func (p *Parser) Diagnostics() []diag.Diagnostic {
	return p.diag.Items()
}

// nextToken consumes cur and advances to the next token from the lexer.
func (p *Parser) nextToken() {
	p.cur = p.lex.NextToken()
}

// peek queries the lexer's next token without consuming it. Always called
// fresh rather than cached, so a mode change applied right before calling
// this is honored immediately.
func (p *Parser) peek() token.Token { return p.lex.Peek(0) }

func (p *Parser) curTokenIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekTokenIs(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) expect(k token.Kind) bool {
	if p.peekTokenIs(k) {
		p.nextToken()
		return true
	}
	pk := p.peek()
	p.errorf(diag.CodeUnexpectedToken, p.spanAt(pk), "expected %s, got %s", k, pk.Kind)
	return false
}

func (p *Parser) spanAt(t token.Token) token.Span {
	return token.Span{Start: t.Pos, End: t.EndPos}
}

func (p *Parser) errorf(code diag.Code, span token.Span, format string, args ...any) {
	p.diag.Errorf(code, span, format, args...)
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek().Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) pushBlock(kind string) {
	p.blockStack = append(p.blockStack, blockContext{kind: kind, startPos: p.cur.Pos})
}

func (p *Parser) popBlock() {
	if len(p.blockStack) > 0 {
		p.blockStack = p.blockStack[:len(p.blockStack)-1]
	}
}

// synchronize implements panic-mode error recovery: skip tokens until a
// statement boundary (`;`) or a token that plausibly starts the next
// top-level construct, so one syntax error doesn't cascade into a wall of
// further diagnostics.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMI) {
			p.nextToken()
			return
		}
		switch p.peek().Kind {
		case token.FN, token.COMPONENT, token.STRUCT, token.ENUM, token.IMPL, token.USE, token.LET, token.CONST, token.PUB, token.STYLE:
			p.nextToken()
			return
		}
		p.nextToken()
	}
}

// ParseProgram parses the whole file: a sequence of `use` imports followed
// by declarations.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{StartPos: p.cur.Pos}

	for p.curTokenIs(token.USE) {
		if u := p.parseUseDecl(); u != nil {
			prog.Uses = append(prog.Uses, u)
		} else {
			p.synchronize()
		}
	}

	for !p.curTokenIs(token.EOF) {
		before := p.cur
		d := p.parseDeclaration()
		if d != nil && !reflect.ValueOf(d).IsNil() {
			prog.Declarations = append(prog.Declarations, d)
		}
		// Brace-bodied declarations stop on their closing brace; step past
		// it so the next declaration starts on its own first token.
		if p.curTokenIs(token.RBRACE) || p.curTokenIs(token.STYLE_RBRACE) {
			p.nextToken()
		}
		if p.cur == before {
			// parseDeclaration made no progress; force it to avoid looping.
			p.synchronize()
		}
	}
	prog.EndPos = p.cur.Pos
	return prog
}

func (p *Parser) parseUseDecl() *ast.UseDecl {
	start := p.cur.Pos
	p.nextToken() // consume 'use'

	path := ""
	for p.curTokenIs(token.IDENT) || p.curTokenIs(token.DOT) || p.curTokenIs(token.SLASH) {
		path += p.cur.Literal
		if p.peekTokenIs(token.IDENT) || p.peekTokenIs(token.DOT) || p.peekTokenIs(token.SLASH) {
			p.nextToken()
			continue
		}
		break
	}

	d := &ast.UseDecl{Path: path}
	if p.peekTokenIs(token.COLON) {
		p.nextToken() // consume last path ident before '::'... handled loosely below
	}
	// Expect `::{items}` or `::*`.
	if p.curTokenIs(token.COLON) && p.peekTokenIs(token.COLON) {
		p.nextToken()
	}
	if p.peekTokenIs(token.STAR) {
		p.nextToken()
		d.Glob = true
	} else if p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		for !p.peekTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
			p.nextToken()
			if !p.curTokenIs(token.IDENT) {
				break
			}
			item := ast.UseItem{Name: p.cur.Literal}
			if p.peekTokenIs(token.AS_KW) {
				p.nextToken()
				p.nextToken()
				item.Alias = p.cur.Literal
			}
			d.Items = append(d.Items, item)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
			}
		}
		p.expect(token.RBRACE)
	}
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	d.StartPos = start
	d.EndPos = p.cur.EndPos
	p.nextToken()
	return d
}

// parseAnnotations consumes zero or more `@name(args?)` annotations
// preceding a declaration.
func (p *Parser) parseAnnotations() []*ast.Annotation {
	var out []*ast.Annotation
	for p.curTokenIs(token.AT) {
		start := p.cur.Pos
		p.nextToken() // consume '@', land on name
		name := p.cur.Literal
		a := &ast.Annotation{Name: name}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			for !p.peekTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
				p.nextToken()
				arg := ast.AnnotationArg{}
				if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.ASSIGN) {
					arg.Key = p.cur.Literal
					p.nextToken()
					p.nextToken()
				}
				arg.Value = p.parseExpression(LOWEST)
				a.Args = append(a.Args, arg)
				if p.peekTokenIs(token.COMMA) {
					p.nextToken()
				}
			}
			if !p.expect(token.RPAREN) {
				p.errorf(diag.CodeIllegalAnnotArgs, p.spanAt(p.cur), "malformed annotation argument list for @%s", name)
			}
		}
		a.StartPos = start
		a.EndPos = p.cur.EndPos
		out = append(out, a)
		p.nextToken()
	}
	return out
}

func (p *Parser) parseDeclaration() ast.Declaration {
	annotations := p.parseAnnotations()

	pub := false
	if p.curTokenIs(token.PUB) {
		pub = true
		p.nextToken()
	}

	switch p.cur.Kind {
	case token.FN:
		return p.parseFnDecl(pub, annotations, false)
	case token.ASYNC:
		p.nextToken()
		if !p.curTokenIs(token.FN) {
			p.errorf(diag.CodeUnexpectedToken, p.spanAt(p.cur), "expected 'fn' after 'async'")
			return nil
		}
		return p.parseFnDecl(pub, annotations, true)
	case token.COMPONENT:
		return p.parseComponentDecl(pub, annotations)
	case token.STRUCT:
		return p.parseStructDecl(pub, annotations)
	case token.ENUM:
		return p.parseEnumDecl(pub, annotations)
	case token.IMPL:
		return p.parseImplDecl()
	case token.LET, token.CONST:
		return p.parseLetModuleDecl(pub, annotations)
	case token.STYLE:
		return p.parseStyleDecl()
	default:
		p.errorf(diag.CodeUnexpectedToken, p.spanAt(p.cur), "expected a declaration, got %s", p.cur.Kind)
		p.nextToken()
		return nil
	}
}

func (p *Parser) parseParamList() []ast.Param {
	if !p.expect(token.LPAREN) {
		return nil
	}
	return p.parseParamListBody()
}

// parseParamListBody reads the comma-separated parameter list and closing
// ')', assuming p.cur is already the '(' — used directly by lambda parsing,
// where the opening paren was consumed by the Pratt dispatch before a
// lambda-vs-grouped-expression lookahead decided this was a parameter list.
func (p *Parser) parseParamListBody() []ast.Param {
	var params []ast.Param
	for !p.peekTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
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
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseFnDecl(pub bool, annotations []*ast.Annotation, async bool) *ast.FnDecl {
	start := p.cur.Pos
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	params := p.parseParamList()

	var ret ast.TypeExpr
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		ret = p.parseTypeExpr()
	}

	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStmt()

	return &ast.FnDecl{
		Base:        ast.NewBase(start, body.EndPos),
		Name:        name,
		Pub:         pub,
		Async:       async,
		Annotations: annotations,
		Params:      params,
		ReturnType:  ret,
		Body:        body,
	}
}

func (p *Parser) parseComponentDecl(pub bool, annotations []*ast.Annotation) *ast.ComponentDecl {
	start := p.cur.Pos
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	props := p.parseParamList()
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStmt()
	return &ast.ComponentDecl{
		Base:        ast.NewBase(start, body.EndPos),
		Name:        name,
		Pub:         pub,
		Annotations: annotations,
		Props:       props,
		Body:        body,
	}
}

func (p *Parser) parseStructDecl(pub bool, annotations []*ast.Annotation) *ast.StructDecl {
	start := p.cur.Pos
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	if !p.expect(token.LBRACE) {
		return nil
	}
	var fields []ast.StructField
	for !p.peekTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
		fieldPub := false
		if p.curTokenIs(token.PUB) {
			fieldPub = true
			p.nextToken()
		}
		if !p.curTokenIs(token.IDENT) {
			break
		}
		f := ast.StructField{Name: p.cur.Literal, Pub: fieldPub}
		if p.expect(token.COLON) {
			p.nextToken()
			f.Type = p.parseTypeExpr()
		}
		fields = append(fields, f)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.RBRACE)
	return &ast.StructDecl{
		Base:        ast.NewBase(start, p.cur.EndPos),
		Name:        name,
		Pub:         pub,
		Annotations: annotations,
		Fields:      fields,
	}
}

func (p *Parser) parseEnumDecl(pub bool, annotations []*ast.Annotation) *ast.EnumDecl {
	start := p.cur.Pos
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.cur.Literal
	if !p.expect(token.LBRACE) {
		return nil
	}
	var variants []ast.EnumVariant
	for !p.peekTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
		if !p.curTokenIs(token.IDENT) {
			break
		}
		v := ast.EnumVariant{Name: p.cur.Literal}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			for !p.peekTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
				p.nextToken()
				v.Fields = append(v.Fields, p.parseTypeExpr())
				if p.peekTokenIs(token.COMMA) {
					p.nextToken()
				}
			}
			p.expect(token.RPAREN)
		}
		variants = append(variants, v)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.RBRACE)
	return &ast.EnumDecl{
		Base:        ast.NewBase(start, p.cur.EndPos),
		Name:        name,
		Pub:         pub,
		Annotations: annotations,
		Variants:    variants,
	}
}

func (p *Parser) parseImplDecl() *ast.ImplDecl {
	start := p.cur.Pos
	if !p.expect(token.IDENT) {
		return nil
	}
	typeName := p.cur.Literal
	if !p.expect(token.LBRACE) {
		return nil
	}
	var methods []*ast.FnDecl
	for !p.peekTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
		annotations := p.parseAnnotations()
		async := false
		if p.curTokenIs(token.ASYNC) {
			async = true
			p.nextToken()
		}
		if p.curTokenIs(token.FN) {
			if m := p.parseFnDecl(false, annotations, async); m != nil {
				methods = append(methods, m)
			}
		}
	}
	p.expect(token.RBRACE)
	return &ast.ImplDecl{
		Base:     ast.NewBase(start, p.cur.EndPos),
		TypeName: typeName,
		Methods:  methods,
	}
}

func (p *Parser) parseLetModuleDecl(pub bool, annotations []*ast.Annotation) *ast.LetModuleDecl {
	start := p.cur.Pos
	isConst := p.curTokenIs(token.CONST)
	p.nextToken()
	mut := false
	if !isConst && p.curTokenIs(token.MUT) {
		mut = true
		p.nextToken()
	}
	if !p.curTokenIs(token.IDENT) {
		p.errorf(diag.CodeUnexpectedToken, p.spanAt(p.cur), "expected identifier in let/const binding")
		return nil
	}
	name := p.cur.Literal
	d := &ast.LetModuleDecl{Name: name, Mut: mut, Pub: pub, Annotations: annotations}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		d.Type = p.parseTypeExpr()
	}
	if p.expect(token.ASSIGN) {
		p.nextToken()
		d.Value = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	d.Base = ast.NewBase(start, p.cur.EndPos)
	p.nextToken()
	return d
}

