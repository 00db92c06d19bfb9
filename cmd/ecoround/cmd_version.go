package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/strategy"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"version": engine.Version,
					"commit":  commit,
					"date":    date,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ecoround version %s (commit: %s, built: %s)\n", engine.Version, commit, date)
			return nil
		},
	}
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the registered strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := strategy.Names()
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), names)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
