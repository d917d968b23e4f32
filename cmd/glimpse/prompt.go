package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/internal/service/prompt"
	"github.com/sandevgo/glimpse/internal/service/ui"
	"github.com/spf13/cobra"
)

var (
	promptFlags   criteriaFlags
	promptContext string
)

var promptCmd = &cobra.Command{
	Use:   "prompt <message>",
	Short: "Assemble the prompt the agent would send for a message",
	Long: `Prints the system, context and user segments for a message without calling a model.
Without search flags the default recall criteria apply.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var criteria *core.SearchCriteria
		if promptFlags.changed(cmd) {
			c, err := promptFlags.criteria(cmd, "")
			if err != nil {
				return err
			}
			criteria = &c
		}

		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			p, err := rt.Prompts.Build(ctx, args[0], promptContext, criteria)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, title := range []string{"SYSTEM", "CONTEXT", "USER"} {
				fmt.Fprintln(out, ui.TitleStyle.Render(title))
				fmt.Fprintln(out, p[i])
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, ui.DescStyle.Render(fmt.Sprintf("~%d tokens", prompt.Tokens(p))))
			return nil
		})
	},
}

func init() {
	promptFlags.register(promptCmd, prompt.DefaultCriteria().Limit)
	promptCmd.Flags().StringVar(&promptContext, "context", "", "conversation context to embed")
	rootCmd.AddCommand(grouped(groupChat, promptCmd)...)
}
