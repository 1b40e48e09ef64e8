// Package tracing wraps OpenTelemetry so the orchestration services can emit
// spans without depending on the upstream API directly.  Instrumentation is
// kept in a separate package so applications that do not need tracing can
// leave it uninitialised – spans become no-ops.
package tracing
