package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/internal/service/prompt"
	"github.com/spf13/cobra"
)

var personalityCmd = &cobra.Command{
	Use:   "personality",
	Short: "Inspect and tune the agent personality",
}

var personalityShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the profile as it appears in prompts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			p, err := rt.Personality.Get(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt.FormatPersonality(p))
			return nil
		})
	},
}

var setFlags struct {
	name        string
	description string
}

var personalitySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the name or description",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch core.PersonalityPatch
		if cmd.Flags().Changed("name") {
			patch.Name = &setFlags.name
		}
		if cmd.Flags().Changed("description") {
			patch.Description = &setFlags.description
		}

		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			p, err := rt.Personality.Update(ctx, patch)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt.FormatPersonality(p))
			return nil
		})
	},
}

var personalityTraitCmd = &cobra.Command{
	Use:   "trait <name> <value>",
	Short: "Set a trait strength in [0,1]",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid trait value %q: %w", args[1], core.ErrValidation)
		}

		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			return rt.Personality.UpdateTrait(ctx, args[0], v)
		})
	},
}

var personalityValueCmd = &cobra.Command{
	Use:   "value",
	Short: "Manage core values",
}

var personalityValueAddCmd = &cobra.Command{
	Use:   "add <value>",
	Short: "Add a core value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			return rt.Personality.AddValue(ctx, args[0])
		})
	},
}

var personalityValueRemoveCmd = &cobra.Command{
	Use:     "rm <value>",
	Aliases: []string{"remove"},
	Short:   "Remove a core value",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			return rt.Personality.RemoveValue(ctx, args[0])
		})
	},
}

var styleFlags struct {
	style    string
	tone     string
	patterns []string
}

var personalityStyleCmd = &cobra.Command{
	Use:   "style",
	Short: "Change communication style, tone or patterns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch core.CommunicationPatch
		if cmd.Flags().Changed("style") {
			patch.Style = &styleFlags.style
		}
		if cmd.Flags().Changed("tone") {
			patch.Tone = &styleFlags.tone
		}
		if cmd.Flags().Changed("pattern") {
			patch.Patterns = styleFlags.patterns
		}

		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			return rt.Personality.UpdateCommunicationStyle(ctx, patch)
		})
	},
}

func init() {
	personalitySetCmd.Flags().StringVar(&setFlags.name, "name", "", "agent name")
	personalitySetCmd.Flags().StringVar(&setFlags.description, "description", "", "agent description")

	personalityStyleCmd.Flags().StringVar(&styleFlags.style, "style", "", "communication style")
	personalityStyleCmd.Flags().StringVar(&styleFlags.tone, "tone", "", "communication tone")
	personalityStyleCmd.Flags().StringSliceVar(&styleFlags.patterns, "pattern", nil, "communication patterns, replaces the current list")

	personalityValueCmd.AddCommand(personalityValueAddCmd, personalityValueRemoveCmd)
	personalityCmd.AddCommand(
		personalityShowCmd,
		personalitySetCmd,
		personalityTraitCmd,
		personalityValueCmd,
		personalityStyleCmd,
	)
	rootCmd.AddCommand(grouped(groupState, personalityCmd)...)
}
