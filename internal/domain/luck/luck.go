// Package luck converts a character's bounded luck value into the multipliers
// and probabilities consulted by cultivation, alchemy and drops.
// Every function is pure and safe for concurrent use.
package luck

const (
	// Min is the lowest luck value
	Min = 0
	// Max is the highest luck value
	Max = 100
	// Baseline is the neutral luck value; multipliers are 1.0 here
	Baseline = 50

	breakthroughPerPoint = 0.002
	breakthroughBonus    = 0.05
	breakthroughPenalty  = 0.05

	baseEventChance = 0.05
)

// Band identifies a luck bracket
type Band string

const (
	BandCursed    Band = "cursed"    // [0,10]
	BandUnlucky   Band = "unlucky"   // (10,30]
	BandBelow     Band = "below"     // (30,50)
	BandNeutral   Band = "neutral"   // [50,70)
	BandFortunate Band = "fortunate" // [70,90)
	BandBlessed   Band = "blessed"   // [90,100]
)

// Clamp bounds luck to [Min, Max]
func Clamp(luck int) int {
	if luck < Min {
		return Min
	}
	if luck > Max {
		return Max
	}
	return luck
}

// BandOf returns the bracket that luck falls into
func BandOf(luck int) Band {
	luck = Clamp(luck)
	switch {
	case luck <= 10:
		return BandCursed
	case luck <= 30:
		return BandUnlucky
	case luck < 50:
		return BandBelow
	case luck < 70:
		return BandNeutral
	case luck < 90:
		return BandFortunate
	default:
		return BandBlessed
	}
}

// cultivationPerMille holds the cultivation multipliers in thousandths so
// scaled gains are computed in integers
var cultivationPerMille = map[Band]int64{
	BandCursed:    700,
	BandUnlucky:   850,
	BandBelow:     950,
	BandNeutral:   1000,
	BandFortunate: 1150,
	BandBlessed:   1300,
}

// CultivationMultiplier scales experience gained per cultivation cycle.
// It never decreases as luck grows and is exactly 1.0 at Baseline.
func CultivationMultiplier(luck int) float64 {
	return float64(cultivationPerMille[BandOf(luck)]) / 1000
}

// ScaleCultivation returns floor(base * CultivationMultiplier(luck)) without
// floating point rounding loss. Negative bases scale to 0.
func ScaleCultivation(base int64, luck int) int64 {
	if base <= 0 {
		return 0
	}
	return base * cultivationPerMille[BandOf(luck)] / 1000
}

// BreakthroughRateAdjustment shifts a base breakthrough rate by luck.
// The extreme bands add a flat bonus or penalty; the result is within [0,1].
func BreakthroughRateAdjustment(luck int, baseRate float64) float64 {
	luck = Clamp(luck)
	rate := baseRate + float64(luck-Baseline)*breakthroughPerPoint
	if luck >= 90 {
		rate += breakthroughBonus
	}
	if luck <= 10 {
		rate -= breakthroughPenalty
	}
	return Probability(rate)
}

// Probability clamps p to [0,1]
func Probability(p float64) float64 {
	return ClampRange(p, 0, 1)
}

// ClampRange clamps v to [lo, hi]
func ClampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
