package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, and remove sessions in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := storeFor(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		ids, err := b.store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the values of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := storeFor(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		data, err := b.store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading session %q: %w", args[0], err)
		}
		raw, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [session-id...]",
	Short: "Remove sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return fmt.Errorf("rm needs at least one session id, or --all")
		}

		b, err := storeFor(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		ids := args
		if all {
			if ids, err = b.store.List(cmd.Context()); err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
		}

		failed := 0
		for _, id := range ids {
			if err := b.store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing %q: %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session %q\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d session(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionRmCmd.Flags().Bool("all", false, "Remove every session")
}

func storeFor(cmd *cobra.Command) (*backend, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Kind == "" || cfg.Store.Kind == "memory" {
		return nil, fmt.Errorf("the memory store does not outlive the server; pick a persistent store with --store")
	}
	return openStore(cmd.Context(), cfg, logger)
}
