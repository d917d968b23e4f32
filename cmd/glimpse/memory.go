package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/internal/service/memory"
	"github.com/sandevgo/glimpse/internal/service/ui"
	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:     "memory",
	Aliases: []string{"mem"},
	Short:   "Inspect and edit the memory graph",
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every memory in creation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			all, err := rt.Memories.GetAll(ctx)
			if err != nil {
				return err
			}
			printMemories(cmd.OutOrStdout(), all)
			return nil
		})
	},
}

var memoryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one memory and mark it accessed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			m, ok, err := rt.Memories.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("memory %s: %w", args[0], core.ErrNotFound)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.MemoryDetail(m))
			return nil
		})
	},
}

var searchFlags criteriaFlags

var memorySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search memories, most important first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var query string
		if len(args) == 1 {
			query = args[0]
		}
		criteria, err := searchFlags.criteria(cmd, query)
		if err != nil {
			return err
		}

		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			found, err := rt.Memories.Search(ctx, criteria)
			if err != nil {
				return err
			}
			printMemories(cmd.OutOrStdout(), found)
			return nil
		})
	},
}

var addFlags struct {
	observation string
	importance  float64
	emotion     float64
	focus       string
	links       []string
	classify    bool
}

var memoryAddCmd = &cobra.Command{
	Use:   "add <text>...",
	Short: "Store new memories",
	Long: `Stores each argument as a memory. With --classify the texts are sent to the
configured model and the classification fills in every field; otherwise the flags do.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			drafts, err := buildDrafts(ctx, rt, args)
			if err != nil {
				return err
			}

			for _, d := range drafts {
				m, err := rt.Memories.Create(ctx, d)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.MemoryBadge(m))
			}
			return nil
		})
	},
}

func buildDrafts(ctx context.Context, rt *Runtime, texts []string) ([]core.MemoryDraft, error) {
	drafts := make([]core.MemoryDraft, 0, len(texts))

	if addFlags.classify {
		_, cls, err := rt.NewChat(ctx)
		if err != nil {
			return nil, err
		}
		for i, c := range cls.ClassifyBatch(ctx, texts) {
			drafts = append(drafts, memory.DraftFromClassification(texts[i], core.Conversation{}, c))
		}
		return drafts, nil
	}

	for _, text := range texts {
		drafts = append(drafts, core.MemoryDraft{
			Text:           text,
			Observation:    addFlags.observation,
			Context:        core.MemoryContext{FocusArea: addFlags.focus},
			Importance:     addFlags.importance,
			EmotionScore:   addFlags.emotion,
			LinkedMemories: addFlags.links,
		})
	}
	return drafts, nil
}

var memoryLinkCmd = &cobra.Command{
	Use:   "link <id> <id>",
	Short: "Link two memories in both directions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			return rt.Memories.Link(ctx, args[0], args[1])
		})
	},
}

var memoryRemoveCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Delete memories and every link pointing at them",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			for _, id := range args {
				if err := rt.Memories.Delete(ctx, id); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var memoryEdgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "Print the link graph with mean-importance weights",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			edges, err := rt.Memories.Edges(ctx)
			if err != nil {
				return err
			}
			for _, e := range edges {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -- %s  %.2f\n", e.From, e.To, e.Weight)
			}
			return nil
		})
	},
}

var memorySimilarityCmd = &cobra.Command{
	Use:   "similarity <text> <text>",
	Short: "Ask the model how similar two texts are",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			_, cls, err := rt.NewChat(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", cls.Similarity(ctx, args[0], args[1]))
			return nil
		})
	},
}

var memoryCompactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Rewrite the stored snapshot with normalized records",
	Long:  `Loads the snapshot, which drops duplicate ids and clamps scores into range, and writes it back.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
			if err := rt.Memories.Load(ctx); err != nil {
				return err
			}
			return rt.Memories.Flush(ctx)
		})
	},
}

func printMemories(w io.Writer, memories []core.Memory) {
	if len(memories) == 0 {
		fmt.Fprintln(w, ui.DescStyle.Render("no memories"))
		return
	}
	for _, m := range memories {
		fmt.Fprintln(w, ui.MemoryRow(m))
	}
}

func init() {
	searchFlags.register(memorySearchCmd, 0)

	memoryAddCmd.Flags().StringVar(&addFlags.observation, "observation", "", "observation to attach")
	memoryAddCmd.Flags().Float64Var(&addFlags.importance, "importance", 0.5, "importance [0,1]")
	memoryAddCmd.Flags().Float64Var(&addFlags.emotion, "emotion", 0, "emotion score [-1,1]")
	memoryAddCmd.Flags().StringVar(&addFlags.focus, "focus", "general", "focus area")
	memoryAddCmd.Flags().StringSliceVar(&addFlags.links, "link", nil, "memory ids to link to")
	memoryAddCmd.Flags().BoolVar(&addFlags.classify, "classify", false, "classify the texts with the configured model")

	memoryCmd.AddCommand(
		memoryListCmd,
		memoryShowCmd,
		memorySearchCmd,
		memoryAddCmd,
		memoryLinkCmd,
		memoryRemoveCmd,
		memoryEdgesCmd,
		memorySimilarityCmd,
		memoryCompactCmd,
	)
	rootCmd.AddCommand(grouped(groupState, memoryCmd)...)
}
