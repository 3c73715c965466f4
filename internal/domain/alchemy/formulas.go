package alchemy

import (
	"math"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/dice"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/luck"
)

const (
	// MinSuccessRate and MaxSuccessRate bound every snapshotted success rate
	MinSuccessRate = 0.10
	MaxSuccessRate = 0.95

	// DefaultMinDuration floors every session duration
	DefaultMinDuration = time.Minute

	durationLevelBonusPerLevel    = 0.05
	durationLevelBonusCap         = 0.50
	durationFacilityBonusPerLevel = 0.03
	durationFacilityBonusCap      = 0.30

	successRealmBonusPerRealm    = 0.02
	successLuckBonusPerPoint     = 0.002
	successFacilityBonusPerLevel = 0.01
	successLevelBonusPerLevel    = 0.02
)

// Duration computes base * (1 - levelBonus) * (1 - facilityBonus), floored
// at minDuration
func Duration(recipe *Recipe, ch *character.Character, minDuration time.Duration) time.Duration {
	levelBonus := math.Min(float64(ch.AlchemyLevel)*durationLevelBonusPerLevel, durationLevelBonusCap)
	facilityBonus := math.Min(float64(ch.CaveLevel)*durationFacilityBonusPerLevel, durationFacilityBonusCap)
	levelBonus = math.Max(levelBonus, 0)
	facilityBonus = math.Max(facilityBonus, 0)

	d := time.Duration(float64(recipe.BaseDuration) * (1 - levelBonus) * (1 - facilityBonus))
	if d < minDuration {
		return minDuration
	}
	return d
}

// SuccessRate sums the recipe base rate with realm, luck, facility and
// alchemy level bonuses, clamped to [MinSuccessRate, MaxSuccessRate]
func SuccessRate(recipe *Recipe, ch *character.Character) float64 {
	realmBonus := float64(ch.Realm) * successRealmBonusPerRealm
	luckBonus := float64(luck.Clamp(ch.Luck)-luck.Baseline) * successLuckBonusPerPoint
	facilityBonus := float64(ch.CaveLevel) * successFacilityBonusPerLevel
	levelBonus := float64(ch.AlchemyLevel) * successLevelBonusPerLevel

	rate := recipe.BaseSuccessRate + realmBonus + luckBonus + facilityBonus + levelBonus
	return luck.ClampRange(rate, MinSuccessRate, MaxSuccessRate)
}

// ResolveQuality walks the upgrade chain from base: each transition rolls
// chances[tier]+bonus independently and the walk stops at the first failed
// roll or at TopQuality
func ResolveQuality(src dice.Source, base Quality, chances map[Quality]float64, bonus float64) Quality {
	q := base
	for q < TopQuality {
		if !dice.Chance(src, luck.Probability(chances[q]+bonus)) {
			break
		}
		q++
	}
	return q
}

// FailureExp is the experience awarded for a failed run
func FailureExp(full int64) int64 {
	return full / 2
}
