package main

import (
	"context"
	"os"

	"github.com/sandevgo/glimpse/internal/config"
	"github.com/sandevgo/glimpse/internal/service/ui"
	"github.com/sandevgo/glimpse/pkg/log"
	"github.com/spf13/cobra"
)

const (
	groupChat  = "chat"
	groupState = "state"
	groupSetup = "setup"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "glimpse",
	Short: "Glimpse, an agent that remembers",
	Long: `Glimpse chats through a configured model and keeps what it learns:
each exchange is classified, stored in a linked memory graph and recalled into
later prompts alongside the agent's personality profile.`,
	Example: `  glimpse init
  glimpse start
  glimpse memory search coffee --importance 0.6 -n 3
  glimpse personality trait curiosity 0.9
  glimpse prompt "what did I say about my garden?"`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging (or GLIMPSE_DEBUG=1)")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupChat, Title: "Conversation"},
		&cobra.Group{ID: groupState, Title: "Memory and personality"},
		&cobra.Group{ID: groupSetup, Title: "Setup"},
	)
	rootCmd.SetHelpCommandGroupID(groupSetup)
	rootCmd.SetCompletionCommandGroupID(groupSetup)
}

// grouped assigns commands to a help section.
func grouped(group string, cmds ...*cobra.Command) []*cobra.Command {
	for _, c := range cmds {
		c.GroupID = group
	}
	return cmds
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	return log.NewContextWithLogger(ctx, debug || config.IsDebug())
}

// CustomizeHelp renders help with the ui palette and command groups.
func CustomizeHelp(rootCmd *cobra.Command) {
	cobra.AddTemplateFunc("Title", ui.TitleStyle.Render)
	cobra.AddTemplateFunc("Usage", ui.UsageStyle.Render)
	cobra.AddTemplateFunc("Desc", ui.DescStyle.Render)

	rootCmd.SetHelpTemplate(`{{with .Long}}{{.}}{{else}}{{.Short}}{{end}}

{{Title "Usage"}}  {{Usage .UseLine}}{{if .HasAvailableSubCommands}}
  {{Usage (printf "%s <command>" .CommandPath)}}{{end}}
{{if .HasExample}}
{{Title "Examples"}}{{.Example}}
{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}
{{Title "Commands"}}{{range $cmds}}{{if .IsAvailableCommand}}
  {{rpad .Name .NamePadding}} {{Desc .Short}}{{end}}{{end}}
{{else}}{{range $group := .Groups}}
{{Title $group.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) .IsAvailableCommand)}}
  {{rpad .Name .NamePadding}} {{Desc .Short}}{{end}}{{end}}
{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}
{{Title "Flags"}}{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}
{{Title "Global flags"}}{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}`)
}
