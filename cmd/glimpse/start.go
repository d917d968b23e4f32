package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/sandevgo/glimpse/internal/service/memory"
	"github.com/sandevgo/glimpse/internal/transport/cli"
	"github.com/sandevgo/glimpse/pkg/log"
	"github.com/sandevgo/glimpse/pkg/srv"
	"github.com/spf13/cobra"
)

const journalBuffer = 128

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an interactive chat session",
	Long:  `Starts the chat loop. Every exchange is classified and stored in the memory graph, and recalled memories shape the next prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting glimpse")

		rt, err := NewRuntime(ctx)
		if err != nil {
			return err
		}

		// Fail fast on an unreadable snapshot instead of on the first message
		if err := rt.Memories.Load(ctx); err != nil {
			rt.Close()
			return err
		}

		ag, _, err := rt.NewChat(ctx)
		if err != nil {
			rt.Close()
			return err
		}

		repl, err := cli.NewReadLine(ag, rt.Config.GetHistoryPath())
		if err != nil {
			rt.Close()
			return err
		}

		// Background services; storage closes last
		services := []srv.Service{
			srv.NewCleanup(rt.Close),
			memory.NewJournal(rt.Memories, journalBuffer),
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		errCh := srv.StartServices(ctx, services)

		// Leaving the chat loop ends the session.
		replErr := make(chan error, 1)
		go func() { replErr <- repl.Start(ctx) }()

		select {
		case err = <-replErr:
		case err = <-errCh:
		case <-ctx.Done():
		}
		cancel()

		srv.ShutdownServices(context.WithoutCancel(ctx), append(services, repl))
		logger.Info().Msg("glimpse has been shut down gracefully")

		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(grouped(groupChat, startCmd)...)
}
