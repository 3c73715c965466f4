package progress

import (
	"github.com/KirkDiggler/cultivation-idle/internal/dice"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/luck"
)

// BaseExp is the experience one cycle yields at a realm before luck
func BaseExp(realm int) int64 {
	if realm < 0 {
		realm = 0
	}
	r := int64(realm + 1)
	return 10 * r * r
}

// BaseSpiritStones is the spirit stone income of one cycle at a realm
func BaseSpiritStones(realm int) int64 {
	if realm < 0 {
		realm = 0
	}
	return int64(realm + 1)
}

// CultivationEffect grants luck-scaled experience and spirit stones and
// rolls the cycle's special events. A qi deviation arms the cycle delay.
func CultivationEffect(src dice.Source) Effect {
	return func(ch *character.Character) Gain {
		gain := Gain{
			Experience:   luck.ScaleCultivation(BaseExp(ch.Realm), ch.Luck),
			SpiritStones: luck.ScaleCultivation(BaseSpiritStones(ch.Realm), ch.Luck),
		}

		for _, event := range rollEvents(src, luck.SpecialEventChance(ch.Luck)) {
			switch luck.PolarityOf(event) {
			case luck.Positive:
				applyPositive(&gain, ch, event)
			case luck.Negative:
				applyNegative(&gain, ch, event)
			}
			gain.Events = append(gain.Events, event)
		}

		ch.AddExperience(gain.Experience)
		ch.AddResource(character.ResourceSpiritStones, gain.SpiritStones)
		return gain
	}
}

// rollEvents draws at most one positive and one negative event, positive first
func rollEvents(src dice.Source, odds luck.EventChance) []string {
	var events []string
	if dice.Chance(src, odds.PositiveChance) {
		events = append(events, dice.Pick(src, odds.PositivePool))
	}
	if dice.Chance(src, odds.NegativeChance) {
		events = append(events, dice.Pick(src, odds.NegativePool))
	}
	return events
}

func applyPositive(gain *Gain, ch *character.Character, event string) {
	switch event {
	case luck.EventFortuitousEncounter:
		gain.Experience += 5 * BaseExp(ch.Realm)
	case luck.EventSpiritSpring:
		gain.SpiritStones += 10 * BaseSpiritStones(ch.Realm)
	case luck.EventElderGuidance:
		gain.Experience += 2 * BaseExp(ch.Realm)
	}
}

func applyNegative(gain *Gain, ch *character.Character, event string) {
	switch event {
	case luck.EventQiDeviation:
		ch.DelayActive = true
	case luck.EventDemonicInterference:
		gain.Experience = 0
	case luck.EventMeridianInjury:
		gain.SpiritStones = 0
	}
}
