// Package diag implements Loom's structured diagnostics: a closed set of
// error kinds with stable string codes, source-span carrying messages, and
// source-context rendering, following a multi-pass compiler's
// CompilerError/Format pattern but generalized to carry a severity and an
// optional suggested fix.
package diag

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/loomlang/loomc/internal/token"
)

// Severity distinguishes fatal diagnostics (which abort emission) from
// advisory ones.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Code is a stable, documented diagnostic identifier, e.g. E_STY_001.
type Code string

// The closed set of diagnostic codes. Every pass reports through one of
// these so the driver's final severity count and the CLI's exit code
// derive from one authoritative list.
const (
	CodeUnterminatedString Code = "E_LEX_001"
	CodeUnknownEscape      Code = "E_LEX_002"
	CodeInvalidNumeric     Code = "E_LEX_003"
	CodeUnexpectedChar     Code = "E_LEX_004"

	CodeUnexpectedToken  Code = "E_PAR_001"
	CodeExpectedExpr     Code = "E_PAR_002"
	CodeUnclosedElement  Code = "E_PAR_003"
	CodeMismatchedTag    Code = "E_PAR_004"
	CodeIllegalAnnotArgs Code = "E_PAR_005"

	CodeStyleNestingTooDeep Code = "E_STY_001"

	CodeUndefinedName     Code = "E_SEM_001"
	CodeDuplicateBinding  Code = "E_SEM_002"
	CodeNotExported       Code = "E_SEM_003"
	CodeCyclicImport      Code = "E_SEM_004"
	CodeUnknownModulePath Code = "E_SEM_005"

	CodeTypeMismatch       Code = "E_TYP_001"
	CodeNotCallable        Code = "E_TYP_002"
	CodeAwaitOutsideAsync  Code = "E_TYP_003"
	CodeAwaitNotAwaitable  Code = "E_TYP_004"
	CodeAwaitInElementTree Code = "E_TYP_005"
	CodePostfixAwait       Code = "E_TYP_006"
	CodeReactiveReassign   Code = "E_TYP_007"
	CodeLengthIsProperty   Code = "E_TYP_008"
	CodeMatchNotExhaustive Code = "E_TYP_009"

	CodeRPCArgNotSerializable Code = "E_SPL_001"
	CodeServerOnlyFromClient  Code = "E_SPL_002"
)

// Diagnostic is one reported error or warning.
type Diagnostic struct {
	Code       Code
	Severity   Severity
	Message    string
	Primary    token.Span
	Secondary  []token.Span
	Suggestion string // empty if no suggested fix
}

// Bag collects diagnostics across a compile, in report order.
type Bag struct {
	items []Diagnostic
}

func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) Errorf(code Code, span token.Span, format string, args ...any) {
	b.Add(Diagnostic{Code: code, Severity: SeverityError, Message: fmt.Sprintf(format, args...), Primary: span})
}

func (b *Bag) Warnf(code Code, span token.Span, format string, args ...any) {
	b.Add(Diagnostic{Code: code, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Primary: span})
}

func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (b *Bag) CountBySeverity(s Severity) int {
	n := 0
	for _, d := range b.items {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Format renders a diagnostic with a gutter-prefixed source line and a
// caret line pointing at the primary span, following the established
// CompilerError.Format.
func Format(d Diagnostic, source, file string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]: %s\n", d.Severity, d.Code, d.Message)
	fmt.Fprintf(&b, "  --> %s:%d:%d\n", file, d.Primary.Start.Line, d.Primary.Start.Column)

	line := sourceLine(source, d.Primary.Start.Line)
	if line != "" {
		gutter := fmt.Sprintf("%d", d.Primary.Start.Line)
		fmt.Fprintf(&b, "%s | %s\n", gutter, line)
		caretCol := d.Primary.Start.Column
		if caretCol < 1 {
			caretCol = 1
		}
		width := d.Primary.End.Column - d.Primary.Start.Column
		if width < 1 {
			width = 1
		}
		fmt.Fprintf(&b, "%s | %s%s\n", strings.Repeat(" ", len(gutter)), strings.Repeat(" ", caretCol-1), strings.Repeat("^", width))
	}
	if d.Suggestion != "" {
		fmt.Fprintf(&b, "  = help: %s\n", d.Suggestion)
	}
	return b.String()
}

func sourceLine(source string, n int) string {
	lines := strings.Split(source, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// ToJSON renders a diagnostic as a JSON object, built incrementally with
// sjson to match the emitter's own JSON-construction idiom rather than a
// struct-tagged encoding/json marshal.
func ToJSON(d Diagnostic) (string, error) {
	j := "{}"
	var err error
	j, err = sjson.Set(j, "code", string(d.Code))
	if err != nil {
		return "", err
	}
	j, err = sjson.Set(j, "severity", d.Severity.String())
	if err != nil {
		return "", err
	}
	j, err = sjson.Set(j, "message", d.Message)
	if err != nil {
		return "", err
	}
	j, err = sjson.Set(j, "span.start.line", d.Primary.Start.Line)
	if err != nil {
		return "", err
	}
	j, err = sjson.Set(j, "span.start.column", d.Primary.Start.Column)
	if err != nil {
		return "", err
	}
	j, err = sjson.Set(j, "span.end.line", d.Primary.End.Line)
	if err != nil {
		return "", err
	}
	j, err = sjson.Set(j, "span.end.column", d.Primary.End.Column)
	if err != nil {
		return "", err
	}
	if d.Suggestion != "" {
		j, err = sjson.Set(j, "suggestion", d.Suggestion)
		if err != nil {
			return "", err
		}
	}
	return j, nil
}
