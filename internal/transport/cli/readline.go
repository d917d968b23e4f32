package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/glimpse/internal/service/agent"
	"github.com/sandevgo/glimpse/internal/service/ui"
	"github.com/sandevgo/glimpse/pkg/log"
)

type Agent interface {
	Run(ctx context.Context, input string) (agent.Turn, error)
	Reset()
}

type ReadLine struct {
	agent Agent
	rl    *readline.Instance
}

func NewReadLine(agent Agent, historyPath string) (*ReadLine, error) {
	if err := os.MkdirAll(filepath.Dir(historyPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		agent: agent,
		rl:    rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("ReadLine chat started. Type 'exit' to quit, '/reset' to clear the session.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit":
			return nil
		case "/reset":
			r.agent.Reset()
			fmt.Fprintln(r.rl.Stdout(), ui.DescStyle.Render("session cleared"))
			continue
		}

		turn, err := r.agent.Run(ctx, line)
		if err != nil {
			logger.Error().Err(err).Msg("agent run failed")
			fmt.Fprintf(r.rl.Stdout(), "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(r.rl.Stdout(), "%s\n", turn.Reply)
		if turn.Memory != nil {
			fmt.Fprintln(r.rl.Stdout(), ui.DescStyle.Render(ui.MemoryBadge(*turn.Memory)))
		}
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
