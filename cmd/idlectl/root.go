package main

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/cultivation-idle/internal/bootstrap"
)

type opener func(ctx context.Context) (*bootstrap.Runtime, error)

// app opens the runtime on first use so --help works without a store
type app struct {
	open opener

	once sync.Once
	rt   *bootstrap.Runtime
	err  error
}

func newApp(open opener) *app {
	return &app{open: open}
}

func (a *app) runtime(ctx context.Context) (*bootstrap.Runtime, error) {
	a.once.Do(func() {
		a.rt, a.err = a.open(ctx)
	})
	return a.rt, a.err
}

func (a *app) close() {
	if a.rt != nil {
		_ = a.rt.Close()
		a.rt = nil
	}
}

func newRootCmd(app *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "idlectl",
		Short:         "Operate the idle cultivation engine",
		Long:          "idlectl inspects characters and alchemy sessions, forces reconciliation and records presence against the engine's Redis store.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newStatusCmd(app),
		newReconcileCmd(app),
		newCharacterCmd(app),
		newCraftCmd(app),
		newRecipesCmd(app),
		newPresenceCmd(app),
		newSparCmd(app),
		newAuditCmd(app),
	)

	return rootCmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
