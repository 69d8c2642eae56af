package identity

// Default resolver configuration constants.
const (
	defaultSimilarityThreshold = 0.85
	defaultAmbiguityMargin     = 0.02
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithSimilarityThreshold sets the minimum fingerprint similarity for an
// automatic name match. Values outside (0, 1] are ignored.
func WithSimilarityThreshold(threshold float64) Option {
	return func(r *Registry) {
		if threshold > 0 && threshold <= 1 {
			r.similarityThreshold = threshold
		}
	}
}

// WithAmbiguityMargin sets the margin within which a second candidate makes
// the match ambiguous. Negative values are ignored.
func WithAmbiguityMargin(margin float64) Option {
	return func(r *Registry) {
		if margin >= 0 {
			r.ambiguityMargin = margin
		}
	}
}
