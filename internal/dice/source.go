package dice

// Source supplies every random draw the engine makes: Bernoulli trials,
// variance factors and AI choices. Inject a MockSource in tests.
type Source interface {
	// Float64 returns a number in [0, 1)
	Float64() float64

	// Intn returns a number in [0, n); n must be > 0
	Intn(n int) int
}

// Chance performs a Bernoulli trial that succeeds with probability p.
// p <= 0 never succeeds and p >= 1 always succeeds without consuming a draw.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Uniform returns a value in [lo, hi)
func Uniform(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*src.Float64()
}

// Pick returns a uniformly chosen element of options, or "" when empty
func Pick(src Source, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[src.Intn(len(options))]
}
