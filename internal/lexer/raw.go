package lexer

// ReadRawBalancedFrom scans l.input starting at byte offset start (expected
// to be the position right after the opening `{` of a `script { ... }`
// block) up to the matching `}`, tracking nested brace depth so an inner
// `{`/`}` pair inside the fragment doesn't end it early. The script body is
// opaque target-language text — this never runs the tokenizer over it.
//
// It returns the raw text (excluding the closing brace), the byte offset
// of the character immediately after that closing brace, and the line of
// the closing brace (for diagnostics).
func (l *Lexer) ReadRawBalancedFrom(start int) (raw string, afterOffset int, endLine int) {
	depth := 0
	i := start
	line := l.lineAt(start)
	for i < len(l.input) {
		c := l.input[i]
		if c == '\n' {
			line++
		}
		if c == '{' {
			depth++
		} else if c == '}' {
			if depth == 0 {
				break
			}
			depth--
		}
		i++
	}
	raw = l.input[start:i]
	after := i
	if after < len(l.input) {
		after++ // skip the matching '}'
	}
	return raw, after, line
}

// lineAt returns the 1-based line number of byte offset pos, by counting
// newlines from the start of input. Only used for the rare script-block
// raw-scan path, so an O(n) scan is an acceptable cost.
func (l *Lexer) lineAt(pos int) int {
	line := 1
	for i := 0; i < pos && i < len(l.input); i++ {
		if l.input[i] == '\n' {
			line++
		}
	}
	return line
}

// Reseek repositions the lexer to continue tokenizing from byte offset pos,
// recomputing line/column by scanning from the start of input. Used after
// a raw-balanced read (script blocks) hands control back to normal
// tokenization. Clears any buffered lookahead, since it's now stale.
func (l *Lexer) Reseek(pos int) {
	l.tokenBuffer = nil
	line := 1
	col := 0
	for i := 0; i < pos && i < len(l.input); i++ {
		if l.input[i] == '\n' {
			line = line + 1
			col = 0
		} else {
			col++
		}
	}
	l.line = line
	l.column = col
	l.readPosition = pos
	l.readChar()
}
