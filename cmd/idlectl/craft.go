package main

import (
	"github.com/spf13/cobra"
)

func newCraftCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "craft",
		Short: "Start, inspect and collect alchemy sessions",
	}

	cmd.AddCommand(
		newCraftStartCmd(app),
		newCraftCollectCmd(app),
		newCraftListCmd(app),
		newCraftShowCmd(app),
	)

	return cmd
}

func newCraftStartCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start <character-id> <recipe-id>",
		Short: "Pay a recipe's cost and start a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}

			view, err := rt.Provider.AlchemyService.StartOperation(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd, view)
		},
	}
}

func newCraftCollectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "collect <character-id> <session-id>",
		Short: "Collect a finished session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}

			result, err := rt.Provider.AlchemyService.CollectResult(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd, result)
		},
	}
}

func newCraftListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <character-id>",
		Short: "List a character's sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}

			views, err := rt.Provider.AlchemyService.ListSessions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, views)
		},
	}
}

func newCraftShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <character-id> <session-id>",
		Short: "Show one session's progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}

			view, err := rt.Provider.AlchemyService.GetSession(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd, view)
		},
	}
}

func newRecipesCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List the recipe catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, rt.Provider.Recipes.List())
		},
	}
}
