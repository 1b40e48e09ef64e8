package employee

import (
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/approval"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/task"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/gate"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/messaging"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/tracing"
)

// Option customises service assembly.
type Option func(s *Service)

// WithTaskDAO sets the task record store.
func WithTaskDAO(store dao.Service[string, task.Record]) Option {
	return func(s *Service) { s.taskDao = store }
}

// WithApprovalDAO sets the approval record store.
func WithApprovalDAO(store dao.Service[string, approval.Record]) Option {
	return func(s *Service) { s.approvalDao = store }
}

// WithEventQueue sets the queue used to fan out approval lifecycle events.
func WithEventQueue(queue messaging.Queue[gate.Event]) Option {
	return func(s *Service) { s.events = queue }
}

// WithExecutor sets the callback that dispatches approved actions.
func WithExecutor(executor gate.Executor) Option {
	return func(s *Service) { s.executor = executor }
}

// WithDefaultExpiry overrides the default approval deadline.
func WithDefaultExpiry(expiry time.Duration) Option {
	return func(s *Service) { s.defaultExpiry = expiry }
}

// WithClaimTTL overrides the execution claim time-to-live.
func WithClaimTTL(ttl time.Duration) Option {
	return func(s *Service) { s.claimTTL = ttl }
}

// WithDefaultMaxIterations overrides the default task iteration bound.
func WithDefaultMaxIterations(max int) Option {
	return func(s *Service) { s.defaultMaxIterations = max }
}

// WithSweepInterval overrides the period between automatic sweeps.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) { s.sweepInterval = interval }
}

// WithStaleAfter overrides the idle threshold for surfacing stale tasks.
func WithStaleAfter(staleAfter time.Duration) Option {
	return func(s *Service) { s.staleAfter = staleAfter }
}

// WithTracing configures OpenTelemetry tracing.  If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file.
// Safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom
// SpanExporter (OTLP, Jaeger, Zipkin, …).
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
