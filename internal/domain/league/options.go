package league

import "time"

// Default multiplier engine constants. The bounds and blend weight are
// configuration inputs; these are their contract defaults.
const (
	defaultMinMultiplier = 0.69
	defaultMaxMultiplier = 5.0
	defaultRetainWeight  = 0.85

	neutralMultiplier = 1.0

	captainMultiplier     = 2.0
	viceCaptainMultiplier = 1.5
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBounds sets the multiplier clamp range. Ignored unless min < max.
func WithBounds(minMultiplier, maxMultiplier float64) Option {
	return func(e *Engine) {
		if minMultiplier > 0 && minMultiplier < maxMultiplier {
			e.minMultiplier = minMultiplier
			e.maxMultiplier = maxMultiplier
		}
	}
}

// WithRetainWeight sets the fraction of the old multiplier kept on each
// drift step; the remainder blends in the target. Must be in [0, 1).
func WithRetainWeight(w float64) Option {
	return func(e *Engine) {
		if w >= 0 && w < 1 {
			e.retainWeight = w
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
