// Package progress provides a lightweight tracker that keeps aggregated
// orchestration counters (tasks started, approvals executed, …).  The tracker
// instance lives in the caller's context – every component that receives the
// context can atomically update the counters via the Delta helper without a
// global registry.
package progress
