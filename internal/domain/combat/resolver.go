package combat

import (
	"math"

	"github.com/KirkDiggler/cultivation-idle/internal/dice"
)

// Resolver computes damage and heal amounts for a single action.
// It is stateless apart from its random source and safe for concurrent use
// when that source is.
type Resolver struct {
	cfg    Config
	source dice.Source
}

// NewResolver creates a resolver; a nil source uses a time-seeded one
func NewResolver(cfg Config, source dice.Source) *Resolver {
	if source == nil {
		source = dice.NewRandomSource()
	}
	return &Resolver{cfg: cfg, source: source}
}

// BaseDamage applies the skill multiplier and the defense reduction, floored
// at MinDamage. No critical or variance is applied.
func (r *Resolver) BaseDamage(attacker, defender Stats, skill Skill) float64 {
	attack, defense := attacker.PhysicalAttack, defender.PhysicalDefense
	if skill.Type == SkillTypeMagic {
		attack, defense = attacker.MagicAttack, defender.MagicDefense
	}

	multiplier := skill.DamageMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	dmg := float64(attack)*multiplier - float64(defense)*r.cfg.ReductionFactor
	return math.Max(dmg, float64(r.cfg.MinDamage))
}

// ComputeDamage resolves one offensive action
func (r *Resolver) ComputeDamage(attacker, defender Stats, skill Skill) (int, bool) {
	dmg := r.BaseDamage(attacker, defender, skill)

	critical := dice.Chance(r.source, attacker.CriticalRate+skill.CriticalBonus)
	if critical {
		dmg *= math.Max(attacker.CriticalDamage, 1)
	}

	dmg *= r.varianceFactor()

	amount := int(math.Floor(dmg))
	if amount < r.cfg.MinDamage {
		amount = r.cfg.MinDamage
	}
	return amount, critical
}

// ComputeHeal returns floor(maxHP * healMultiplier * variance), at least 1
func (r *Resolver) ComputeHeal(actor Stats, skill Skill) int {
	amount := int(math.Floor(float64(actor.MaxHP) * skill.HealMultiplier * r.varianceFactor()))
	if amount < 1 {
		return 1
	}
	return amount
}

func (r *Resolver) varianceFactor() float64 {
	if r.cfg.Variance <= 0 {
		return 1
	}
	return dice.Uniform(r.source, 1-r.cfg.Variance, 1+r.cfg.Variance)
}
