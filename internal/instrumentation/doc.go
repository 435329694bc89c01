// Package instrumentation provides OpenTelemetry metrics and tracing for the
// receptionist backend.
//
// Metrics cover the webhook HTTP surface, calendar API operations (with
// retry visibility), availability queries (including the degraded-fallback
// path) and booking attempts by outcome. The default exporter is Prometheus,
// served on a dedicated metrics port; OTLP and stdout exporters are
// available for collector-based or development setups.
//
// Tracing is disabled by default and can be enabled with the
// TRACING_EXPORTER environment variable (otlp or stdout). Spans are created
// per tool dispatch and per calendar operation.
package instrumentation
