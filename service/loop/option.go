package loop

type Option func(*Service)

// WithDefaultMaxIterations overrides the iteration bound applied when a start
// request does not specify one.
func WithDefaultMaxIterations(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxDefault = max
		}
	}
}
