package character

import (
	"github.com/KirkDiggler/cultivation-idle/internal/domain/combat"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/luck"
)

// CombatStats derives a combat snapshot from realm, level and luck.
// Current HP starts full; the combat orchestrator tracks damage itself.
func (c *Character) CombatStats() combat.Stats {
	tier := c.Realm*10 + c.Level

	maxHP := 100 + tier*12
	critRate := 0.05 + float64(luck.Clamp(c.Luck)-luck.Baseline)*0.001
	if critRate < 0 {
		critRate = 0
	}

	return combat.Stats{
		MaxHP:           maxHP,
		CurrentHP:       maxHP,
		PhysicalAttack:  10 + tier*3,
		MagicAttack:     8 + tier*3 + c.Realm*5,
		PhysicalDefense: 5 + tier*2,
		MagicDefense:    4 + tier*2,
		CriticalRate:    critRate,
		CriticalDamage:  1.5 + float64(c.Realm)*0.05,
	}
}
