package main

import (
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/combat"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/luck"
)

func newCharacterCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Create and inspect characters",
	}

	cmd.AddCommand(
		newCharacterCreateCmd(app),
		newCharacterShowCmd(app),
	)

	return cmd
}

func newCharacterCreateCmd(app *app) *cobra.Command {
	var (
		level     int
		realm     int
		luckValue int
		resources map[string]int64
	)

	cmd := &cobra.Command{
		Use:   "create <character-id> <name>",
		Short: "Create a character",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}

			ch := character.NewCharacter(args[0], args[1])
			ch.Level = level
			ch.Realm = realm
			ch.SetLuck(luckValue)
			for name, amount := range resources {
				ch.AddResource(name, amount)
			}

			if err := rt.Provider.Characters.Create(cmd.Context(), ch); err != nil {
				return err
			}

			created, err := rt.Provider.Characters.Get(cmd.Context(), ch.ID)
			if err != nil {
				return err
			}
			return writeJSON(cmd, created)
		},
	}

	cmd.Flags().IntVar(&level, "level", 1, "starting level")
	cmd.Flags().IntVar(&realm, "realm", 0, "starting realm")
	cmd.Flags().IntVar(&luckValue, "luck", luck.Baseline, "starting luck, clamped to [0,100]")
	cmd.Flags().StringToInt64Var(&resources, "resource", nil, "starting resources, e.g. spirit_herb=30")
	return cmd
}

type characterView struct {
	Character *character.Character `json:"character"`
	LuckBand  string               `json:"luck_band"`
	Combat    combat.Stats         `json:"combat"`
}

func newCharacterShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <character-id>",
		Short: "Show a character with its luck band and combat snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}

			ch, err := rt.Provider.Characters.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return writeJSON(cmd, characterView{
				Character: ch,
				LuckBand:  string(luck.BandOf(ch.Luck)),
				Combat:    ch.CombatStats(),
			})
		},
	}
}
