// Package metrics exposes process-level Prometheus counters/histograms
// for the driver's compile pipeline: how many compiles ran, how many
// diagnostics were produced at each severity, and how long a compile
// took. They are registered once at package init; no command in this
// repository serves them over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"

	"github.com/loomlang/loomc/internal/diag"
)

var (
	// CompilesTotal counts Driver.Compile invocations by outcome.
	CompilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loomc",
		Name:      "compiles_total",
		Help:      "Total number of compiler invocations by outcome.",
	}, []string{"outcome"})

	// DiagnosticsTotal counts diagnostics emitted, by severity.
	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loomc",
		Name:      "diagnostics_total",
		Help:      "Total diagnostics emitted by the compiler, by severity.",
	}, []string{"severity"})

	// CompileDurationSeconds observes how long a single Compile call takes.
	CompileDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "loomc",
		Name:      "compile_duration_seconds",
		Help:      "Wall-clock duration of a single Driver.Compile call.",
		Buckets:   prometheus.DefBuckets,
	})
)

// RecordDiagnostics tallies a compile's diagnostics into DiagnosticsTotal,
// one increment per diagnostic, bucketed by severity.
func RecordDiagnostics(diags []diag.Diagnostic) {
	for _, d := range diags {
		DiagnosticsTotal.WithLabelValues(d.Severity.String()).Inc()
	}
}

// Handler returns the standard Prometheus scrape handler, for a watch/dev
// server to mount at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
