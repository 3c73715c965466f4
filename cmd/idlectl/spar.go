package main

import (
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/cultivation-idle/internal/dice"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/combat"
)

// sparSkills is the small move set both sides draw from in a spar
var sparSkills = map[string]combat.Skill{
	combat.BasicAttack.ID: combat.BasicAttack,
	"spirit_bolt": {
		ID: "spirit_bolt", Name: "Spirit Bolt", Type: combat.SkillTypeMagic,
		DamageMultiplier: 1.3, CriticalBonus: 0.05,
	},
	"qi_recovery": {
		ID: "qi_recovery", Name: "Qi Recovery", Type: combat.SkillTypeHeal,
		HealMultiplier: 0.2,
	},
	"iron_skin": {
		ID: "iron_skin", Name: "Iron Skin", Type: combat.SkillTypeDefend,
	},
}

func sparAI() combat.AIConfig {
	cfg := combat.DefaultAIConfig()
	cfg.AggressiveSkills = []string{combat.BasicAttack.ID, "spirit_bolt"}
	cfg.DefensiveSkills = []string{"iron_skin", combat.BasicAttack.ID}
	cfg.HealSkills = []string{"qi_recovery"}
	cfg.DefendSkills = []string{"iron_skin"}
	return cfg
}

type sparTurn struct {
	Turn     int    `json:"turn"`
	Actor    string `json:"actor"`
	Skill    string `json:"skill"`
	Amount   int    `json:"amount,omitempty"`
	Critical bool   `json:"critical,omitempty"`
	TargetHP int    `json:"target_hp"`
}

type sparResult struct {
	Winner string     `json:"winner,omitempty"`
	Turns  []sparTurn `json:"turns"`
}

type sparSide struct {
	id      string
	stats   combat.Stats
	guarded bool
	turn    int
}

// spar plays both sides with the opponent AI until one falls or maxTurns
// actions were taken. Defending halves the next hit taken.
func spar(r *combat.Resolver, a, b *sparSide, maxTurns int) sparResult {
	ai := sparAI()
	var result sparResult

	actor, target := a, b
	for i := 1; i <= maxTurns; i++ {
		actor.turn++
		skill, ok := sparSkills[r.SelectOpponentAction(ai, actor.stats, target.stats, actor.turn)]
		if !ok {
			skill = combat.BasicAttack
		}

		entry := sparTurn{Turn: i, Actor: actor.id, Skill: skill.ID}
		switch skill.Type {
		case combat.SkillTypeHeal:
			entry.Amount = r.ComputeHeal(actor.stats, skill)
			actor.stats.CurrentHP = min(actor.stats.MaxHP, actor.stats.CurrentHP+entry.Amount)
		case combat.SkillTypeDefend:
			actor.guarded = true
		default:
			dmg, crit := r.ComputeDamage(actor.stats, target.stats, skill)
			if target.guarded {
				dmg = max(1, dmg/2)
				target.guarded = false
			}
			entry.Amount, entry.Critical = dmg, crit
			target.stats.CurrentHP = max(0, target.stats.CurrentHP-dmg)
		}
		entry.TargetHP = target.stats.CurrentHP
		result.Turns = append(result.Turns, entry)

		if target.stats.CurrentHP == 0 {
			result.Winner = actor.id
			return result
		}
		actor, target = target, actor
	}

	return result
}

func newSparCmd(app *app) *cobra.Command {
	var (
		seed     uint64
		maxTurns int
	)

	cmd := &cobra.Command{
		Use:   "spar <character-id> <opponent-id>",
		Short: "Simulate a friendly duel between two characters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}

			sides := make([]*sparSide, 0, 2)
			for _, id := range args {
				ch, err := rt.Provider.Characters.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				sides = append(sides, &sparSide{id: ch.ID, stats: ch.CombatStats()})
			}

			src := dice.NewRandomSource()
			if cmd.Flags().Changed("seed") {
				src = dice.NewSeededSource(seed)
			}

			resolver := combat.NewResolver(combat.DefaultConfig(), src)
			return writeJSON(cmd, spar(resolver, sides[0], sides[1], maxTurns))
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for a reproducible duel")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 40, "stop after this many actions")
	return cmd
}
