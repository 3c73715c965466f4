package combat

import (
	"github.com/KirkDiggler/cultivation-idle/internal/dice"
)

const lowHPThreshold = 0.3

// AIConfig drives opponent skill selection
type AIConfig struct {
	HealSkills       []string
	DefendSkills     []string
	AggressiveSkills []string
	DefensiveSkills  []string

	// AggressiveWeight is the probability of drawing from AggressiveSkills
	// when not in danger
	AggressiveWeight float64

	// LowHPHealChance and LowHPDefendChance apply below 30% hp
	LowHPHealChance   float64
	LowHPDefendChance float64

	// OpeningSkill, when set, is always used on turn 1
	OpeningSkill string

	BasicAttack string
}

// DefaultAIConfig returns the low-hp probabilities used by every monster
func DefaultAIConfig() AIConfig {
	return AIConfig{
		AggressiveWeight:  0.7,
		LowHPHealChance:   0.5,
		LowHPDefendChance: 0.3,
		BasicAttack:       BasicAttack.ID,
	}
}

// SelectOpponentAction picks the skill id an AI opponent uses this turn
func (r *Resolver) SelectOpponentAction(cfg AIConfig, self, opponent Stats, turn int) string {
	fallback := cfg.BasicAttack
	if fallback == "" {
		fallback = BasicAttack.ID
	}

	if turn == 1 && cfg.OpeningSkill != "" {
		return cfg.OpeningSkill
	}

	if self.HPRatio() < lowHPThreshold {
		roll := r.source.Float64()
		switch {
		case roll < cfg.LowHPHealChance && len(cfg.HealSkills) > 0:
			return dice.Pick(r.source, cfg.HealSkills)
		case roll < cfg.LowHPHealChance+cfg.LowHPDefendChance && len(cfg.DefendSkills) > 0:
			return dice.Pick(r.source, cfg.DefendSkills)
		}
	}

	// a nearly dead opponent is always pressed
	weight := cfg.AggressiveWeight
	if opponent.HPRatio() < lowHPThreshold {
		weight = 1
	}

	pool := cfg.DefensiveSkills
	if dice.Chance(r.source, weight) {
		pool = cfg.AggressiveSkills
	}
	if len(pool) == 0 {
		pool = cfg.AggressiveSkills
	}
	if len(pool) == 0 {
		return fallback
	}
	return dice.Pick(r.source, pool)
}
