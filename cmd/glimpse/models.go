package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/internal/service/ui"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models offered by the configured provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			provider, err := rt.NewProvider(ctx)
			if err != nil {
				return err
			}
			models, err := provider.Models(ctx)
			if err != nil {
				return err
			}
			for _, m := range models {
				line := ui.UsageStyle.Render(m.ID)
				if m.ContextLength > 0 {
					line += ui.DescStyle.Render(fmt.Sprintf("  %d ctx", m.ContextLength))
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", core.GlimpseName, core.GlimpseVersion)
	},
}

func init() {
	rootCmd.AddCommand(grouped(groupSetup, modelsCmd, versionCmd)...)
}
