// Package monitoring defines the metrics surface the core calls into on
// every scheduler flush, store resolution, and module bootstrap step,
// and ships two implementations: a NoOpMetrics default so the core never
// pays for instrumentation nobody asked for, and a PrometheusMetrics that
// wires the same calls into client_golang collectors.
package monitoring
