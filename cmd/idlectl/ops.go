package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show scheduler settings and the characters currently active",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}

			active, err := rt.Provider.Presence.ListActiveIDs(cmd.Context())
			if err != nil {
				return err
			}

			status := rt.Provider.Scheduler.Status()
			return writeJSON(cmd, map[string]any{
				"interval_seconds": status.IntervalSeconds,
				"active_count":     len(active),
				"active_ids":       active,
			})
		},
	}
}

func newReconcileCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <character-id>",
		Short: "Catch a character up on elapsed cycles now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}

			report, err := rt.Provider.Scheduler.ForceReconcileNow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, report)
		},
	}
}

func newPresenceCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presence",
		Short: "Manage character heartbeats",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "touch <character-id>",
		Short: "Record a heartbeat so the scheduler picks the character up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}

			if _, err := rt.Provider.Characters.Get(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := rt.Provider.Presence.Touch(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "touched %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func newAuditCmd(app *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit <entity-id>",
		Short: "List archived audit events for a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if rt.Archive == nil {
				return fmt.Errorf("audit archive is disabled; set AUDIT_SQLITE_PATH")
			}

			events, err := rt.Archive.List(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd, events)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of events")
	return cmd
}
