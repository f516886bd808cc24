package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/loomlang/loomc/internal/diag"
)

func TestRecordDiagnosticsIncrementsBySeverity(t *testing.T) {
	before := testutil.ToFloat64(DiagnosticsTotal.WithLabelValues("error"))
	RecordDiagnostics([]diag.Diagnostic{
		{Code: "E_TYP_001", Severity: diag.SeverityError},
		{Code: "E_TYP_002", Severity: diag.SeverityError},
	})
	after := testutil.ToFloat64(DiagnosticsTotal.WithLabelValues("error"))
	if after-before != 2 {
		t.Fatalf("want +2 error diagnostics, got delta %v", after-before)
	}
}

func TestHandlerServesPrometheusFormat(t *testing.T) {
	CompilesTotal.WithLabelValues("success").Inc()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "loomc_compiles_total") {
		t.Fatalf("want loomc_compiles_total in output, got:\n%s", rec.Body.String())
	}
}
