package luck

// DropEffect describes how luck modifies loot and crafting output
type DropEffect struct {
	QuantityMultiplier   float64
	QualityUpgradeChance float64
	RareDropChance       float64
}

var dropEffects = map[Band]DropEffect{
	BandCursed:    {QuantityMultiplier: 0.75, QualityUpgradeChance: 0, RareDropChance: 0},
	BandUnlucky:   {QuantityMultiplier: 0.90, QualityUpgradeChance: 0, RareDropChance: 0.005},
	BandBelow:     {QuantityMultiplier: 1.00, QualityUpgradeChance: 0, RareDropChance: 0.01},
	BandNeutral:   {QuantityMultiplier: 1.00, QualityUpgradeChance: 0.02, RareDropChance: 0.01},
	BandFortunate: {QuantityMultiplier: 1.25, QualityUpgradeChance: 0.05, RareDropChance: 0.02},
	BandBlessed:   {QuantityMultiplier: 1.50, QualityUpgradeChance: 0.10, RareDropChance: 0.05},
}

// DropEffectFor returns the step-function drop modifiers for luck
func DropEffectFor(luck int) DropEffect {
	return dropEffects[BandOf(luck)]
}

// Polarity tells whether a special event helps or hurts
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
)

// Special events a cultivating character can run into
const (
	EventFortuitousEncounter = "fortuitous_encounter"
	EventSpiritSpring        = "spirit_spring"
	EventElderGuidance       = "elder_guidance"

	EventQiDeviation         = "qi_deviation"
	EventDemonicInterference = "demonic_interference"
	EventMeridianInjury      = "meridian_injury"
)

// EventChance holds the independent probabilities of a positive and a
// negative special event plus the candidates for each
type EventChance struct {
	PositiveChance float64
	NegativeChance float64
	PositivePool   []string
	NegativePool   []string
}

type eventScale struct {
	positive float64
	negative float64
}

var eventScales = map[Band]eventScale{
	BandCursed:    {positive: 0.25, negative: 3.0},
	BandUnlucky:   {positive: 0.50, negative: 2.0},
	BandBelow:     {positive: 0.80, negative: 1.2},
	BandNeutral:   {positive: 1.00, negative: 1.0},
	BandFortunate: {positive: 1.50, negative: 0.6},
	BandBlessed:   {positive: 2.50, negative: 0.2},
}

var eventPolarity = map[string]Polarity{
	EventFortuitousEncounter: Positive,
	EventSpiritSpring:        Positive,
	EventElderGuidance:       Positive,
	EventQiDeviation:         Negative,
	EventDemonicInterference: Negative,
	EventMeridianInjury:      Negative,
}

// PolarityOf reports whether event helps or hurts; unknown events have an
// empty polarity
func PolarityOf(event string) Polarity {
	return eventPolarity[event]
}

// SpecialEventChance returns the special event odds for luck
func SpecialEventChance(luck int) EventChance {
	scale := eventScales[BandOf(luck)]
	return EventChance{
		PositiveChance: Probability(baseEventChance * scale.positive),
		NegativeChance: Probability(baseEventChance * scale.negative),
		PositivePool:   []string{EventFortuitousEncounter, EventSpiritSpring, EventElderGuidance},
		NegativePool:   []string{EventQiDeviation, EventDemonicInterference, EventMeridianInjury},
	}
}
