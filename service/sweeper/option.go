package sweeper

import "time"

type Option func(*Service)

// WithInterval overrides the period between automatic sweeps.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithStaleAfter overrides the idle threshold for surfacing in-progress
// tasks.
func WithStaleAfter(staleAfter time.Duration) Option {
	return func(s *Service) {
		if staleAfter > 0 {
			s.staleAfter = staleAfter
		}
	}
}
