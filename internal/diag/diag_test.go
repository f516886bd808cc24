package diag

import (
	"strings"
	"testing"

	"github.com/loomlang/loomc/internal/token"
)

func TestBagCountsBySeverity(t *testing.T) {
	var b Bag
	b.Errorf(CodeUndefinedName, token.Span{}, "undefined name %q", "x")
	b.Warnf(CodePostfixAwait, token.Span{}, "postfix await")

	if got := b.CountBySeverity(SeverityError); got != 1 {
		t.Fatalf("errors = %d, want 1", got)
	}
	if got := b.CountBySeverity(SeverityWarning); got != 1 {
		t.Fatalf("warnings = %d, want 1", got)
	}
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors true")
	}
}

func TestFormatIncludesCaretLine(t *testing.T) {
	d := Diagnostic{
		Code:     CodeStyleNestingTooDeep,
		Severity: SeverityError,
		Message:  "style rules may not nest more than one level deep",
		Primary: token.Span{
			Start: token.Position{Line: 2, Column: 3},
			End:   token.Position{Line: 2, Column: 8},
		},
	}
	out := Format(d, "style X {\n  &.y { color: red; }\n}", "x.loom")
	if !strings.Contains(out, "E_STY_001") {
		t.Fatalf("missing code in output: %s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("missing caret in output: %s", out)
	}
}

func TestToJSONRoundTripsFields(t *testing.T) {
	d := Diagnostic{Code: CodeUndefinedName, Severity: SeverityError, Message: "undefined name"}
	j, err := ToJSON(d)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.Contains(j, `"code":"E_SEM_001"`) {
		t.Fatalf("json missing code: %s", j)
	}
}
