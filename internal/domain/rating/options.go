package rating

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithKFactor sets the maximum rating change per vote.
func WithKFactor(k float64) Option {
	return func(s *Store) {
		if k > 0 {
			s.kFactor = k
		}
	}
}

// WithBaseline sets the rating assigned to items that have never played.
func WithBaseline(r float64) Option {
	return func(s *Store) {
		if r > 0 {
			s.baseline = r
		}
	}
}
