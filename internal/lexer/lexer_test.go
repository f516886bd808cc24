package lexer

import (
	"testing"

	"github.com/loomlang/loomc/internal/token"
)

func collectKinds(l *Lexer) []token.Kind {
	var kinds []token.Kind
	for {
		tok := l.NextToken()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	return kinds
}

func TestNextTokenBasicDeclarations(t *testing.T) {
	input := `let count = 0
const NAME: string = "loom"`

	l := New(input)
	want := []token.Kind{
		token.LET, token.IDENT, token.ASSIGN, token.INT,
		token.CONST, token.IDENT, token.COLON, token.IDENT, token.ASSIGN, token.STRING,
		token.EOF,
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Kind != w {
			t.Fatalf("token %d: got %s, want %s", i, tok.Kind, w)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		input string
		kind  token.Kind
	}{
		{"42", token.INT},
		{"3.14", token.FLOAT},
		{"0xFF_FF", token.INT},
		{"0b1010", token.INT},
		{"1e10", token.FLOAT},
	}
	for _, c := range cases {
		l := New(c.input)
		tok := l.NextToken()
		if tok.Kind != c.kind {
			t.Errorf("input %q: got kind %s, want %s", c.input, tok.Kind, c.kind)
		}
		if tok.Literal != c.input {
			t.Errorf("input %q: literal = %q", c.input, tok.Literal)
		}
	}
}

func TestStringInterpolationSwitchesToTemplateHead(t *testing.T) {
	l := New(`"hello ${name}"`)
	tok := l.NextToken()
	if tok.Kind != token.TEMPLATE_HEAD {
		t.Fatalf("got %s, want TEMPLATE_HEAD", tok.Kind)
	}
	if tok.Literal != "hello " {
		t.Fatalf("literal = %q", tok.Literal)
	}
}

func TestUnterminatedStringRecordsError(t *testing.T) {
	l := New(`"unterminated`)
	l.NextToken()
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lex error, got %d", len(l.Errors()))
	}
	if l.Errors()[0].Kind != ErrUnterminatedString {
		t.Fatalf("got error kind %s", l.Errors()[0].Kind)
	}
}

func TestElementModeRawText(t *testing.T) {
	l := New(`hello <b>world</b>{x}`)
	l.EnterElementMode()
	tok := l.NextToken()
	if tok.Kind != token.ELEMENT_TEXT || tok.Literal != "hello " {
		t.Fatalf("got %v", tok)
	}
	tok = l.NextToken()
	if tok.Kind != token.LT {
		t.Fatalf("got %s, want LT", tok.Kind)
	}
	tok = l.NextToken() // "b" as ELEMENT_TEXT? no — parser would LeaveElementMode to parse tag name.
	_ = tok
}

func TestElementModeClosingTag(t *testing.T) {
	l := New(`</div>`)
	l.EnterElementMode()
	tok := l.NextToken()
	if tok.Kind != token.LT_SLASH {
		t.Fatalf("got %s, want LT_SLASH", tok.Kind)
	}
}

func TestStyleModeDeclaration(t *testing.T) {
	l := New(`color: red; padding: 4px 8px;`)
	l.EnterStyleMode()
	tok := l.NextToken()
	if tok.Kind != token.IDENT || tok.Literal != "color" {
		t.Fatalf("got %v", tok)
	}
	tok = l.NextToken()
	if tok.Kind != token.STYLE_VALUE || tok.Literal != "red" {
		t.Fatalf("got %v", tok)
	}
	tok = l.NextToken()
	if tok.Kind != token.STYLE_SEMI {
		t.Fatalf("got %s", tok.Kind)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New(`let x = 1`)
	first := l.Peek(0)
	second := l.NextToken()
	if first.Kind != second.Kind || first.Literal != second.Literal {
		t.Fatalf("peek mismatch: %v vs %v", first, second)
	}
}

func TestSaveRestoreState(t *testing.T) {
	l := New(`a b c`)
	l.NextToken() // a
	saved := l.SaveState()
	l.NextToken() // b
	l.RestoreState(saved)
	tok := l.NextToken()
	if tok.Literal != "b" {
		t.Fatalf("restore failed, got %q", tok.Literal)
	}
}

func TestModeStackInvalidatesLookaheadBuffer(t *testing.T) {
	l := New(`x`)
	_ = l.Peek(0) // buffers the IDENT token under default mode
	l.EnterElementMode()
	if len(l.tokenBuffer) != 0 {
		t.Fatalf("expected mode push to clear lookahead buffer")
	}
}
