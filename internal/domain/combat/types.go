package combat

// Stats is an immutable snapshot of a combatant taken for one turn.
// The resolver never persists or mutates it.
type Stats struct {
	MaxHP           int     `json:"max_hp"`
	CurrentHP       int     `json:"current_hp"`
	PhysicalAttack  int     `json:"physical_attack"`
	MagicAttack     int     `json:"magic_attack"`
	PhysicalDefense int     `json:"physical_defense"`
	MagicDefense    int     `json:"magic_defense"`
	CriticalRate    float64 `json:"critical_rate"`   // probability in [0,1]
	CriticalDamage  float64 `json:"critical_damage"` // multiplier applied on a critical, e.g. 1.5
}

// HPRatio returns CurrentHP/MaxHP, 0 when MaxHP is not positive
func (s Stats) HPRatio() float64 {
	if s.MaxHP <= 0 {
		return 0
	}
	return float64(s.CurrentHP) / float64(s.MaxHP)
}

// SkillType selects which attack and defense values a skill uses
type SkillType string

const (
	SkillTypePhysical SkillType = "physical"
	SkillTypeMagic    SkillType = "magic"
	SkillTypeHeal     SkillType = "heal"
	SkillTypeDefend   SkillType = "defend"
)

// Skill describes one action a combatant can take
type Skill struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             SkillType `json:"type"`
	DamageMultiplier float64   `json:"damage_multiplier"`
	HealMultiplier   float64   `json:"heal_multiplier"`
	CriticalBonus    float64   `json:"critical_bonus"`
}

// Config holds the tunable coefficients of the damage formula
type Config struct {
	// ReductionFactor is the share of defense subtracted from the attack
	ReductionFactor float64
	// MinDamage floors every hit
	MinDamage int
	// Variance v draws the final factor from [1-v, 1+v]
	Variance float64
}

// DefaultConfig returns the coefficients used in live play
func DefaultConfig() Config {
	return Config{
		ReductionFactor: 0.5,
		MinDamage:       1,
		Variance:        0.1,
	}
}

// BasicAttack is the fallback skill every combatant knows
var BasicAttack = Skill{
	ID:               "basic_attack",
	Name:             "Basic Attack",
	Type:             SkillTypePhysical,
	DamageMultiplier: 1.0,
}
