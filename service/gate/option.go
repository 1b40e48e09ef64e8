package gate

import (
	"time"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/messaging"
)

type Option func(*Service)

// WithQueue sets the event fan-out queue.
func WithQueue(queue messaging.Queue[Event]) Option {
	return func(s *Service) { s.events = queue }
}

// WithResolver attaches the task resolver notified when a correlated approval
// is decided, executed or expired.
func WithResolver(resolver TaskResolver) Option {
	return func(s *Service) { s.resolver = resolver }
}

// WithExecutor sets the dispatch callback used by ExecuteNext.
func WithExecutor(executor Executor) Option {
	return func(s *Service) { s.executor = executor }
}

// WithDefaultExpiry overrides the deadline applied when a create request does
// not specify one.
func WithDefaultExpiry(expiry time.Duration) Option {
	return func(s *Service) {
		if expiry > 0 {
			s.defaultExpiry = expiry
		}
	}
}

// WithClaimTTL overrides how long an execution claim is honoured before being
// treated as abandoned.
func WithClaimTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.claimTTL = ttl
		}
	}
}

// WithConsumerID overrides the generated consumer identity used for execution
// claims.  Useful when several processes share one record store and operators
// want recognisable claim markers.
func WithConsumerID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.consumerID = id
		}
	}
}
