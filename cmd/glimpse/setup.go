package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/glimpse/internal/config"
	"github.com/sandevgo/glimpse/internal/core"
	"github.com/sandevgo/glimpse/internal/providers/llm"
	"github.com/sandevgo/glimpse/internal/service/agent"
	"github.com/sandevgo/glimpse/internal/service/classifier"
	"github.com/sandevgo/glimpse/internal/service/memory"
	"github.com/sandevgo/glimpse/internal/service/personality"
	"github.com/sandevgo/glimpse/internal/service/prompt"
	"github.com/sandevgo/glimpse/internal/storage/file"
	"github.com/sandevgo/glimpse/internal/storage/sqlite"
	"github.com/sandevgo/glimpse/pkg/log"
)

// Runtime holds the storage-backed services shared by every subcommand.
type Runtime struct {
	Config      *config.AppConfig
	Snapshots   core.SnapshotRepository
	Memories    *memory.Graph
	Personality *personality.Store
	Prompts     *prompt.Assembler
}

// NewRuntime loads the environment, opens storage and wires the stores.
// No model provider is needed, so offline commands work without API keys.
func NewRuntime(ctx context.Context) (*Runtime, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to parse App config: %w", err)
	}

	snapshots, err := initStorage(ctx, appCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	graph := memory.NewGraph(snapshots)
	store := personality.NewStore(snapshots)

	return &Runtime{
		Config:      appCfg,
		Snapshots:   snapshots,
		Memories:    graph,
		Personality: store,
		Prompts:     prompt.NewAssembler(graph, store),
	}, nil
}

func (r *Runtime) Close() error {
	return r.Snapshots.Close()
}

// NewChat adds the model provider, the classifier and the agent on top of the runtime.
func (r *Runtime) NewChat(ctx context.Context) (*agent.Agent, *classifier.Classifier, error) {
	provider, err := r.NewProvider(ctx)
	if err != nil {
		return nil, nil, err
	}

	cls := classifier.NewClassifier(provider, r.Config.ClassifyConcurrency)
	return agent.NewAgent(provider, r.Prompts, cls, r.Memories), cls, nil
}

func (r *Runtime) NewProvider(ctx context.Context) (core.AIProvider, error) {
	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM config: %w", err)
	}

	provider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	return provider, nil
}

func initStorage(ctx context.Context, cfg core.AppConfig) (core.SnapshotRepository, error) {
	logger := log.FromCtx(ctx)

	switch cfg.GetStorageBackend() {
	case config.StorageFile:
		logger.Debug().Str("dir", cfg.GetSnapshotDir()).Msg("using file snapshots")
		snapshots, err := file.NewSnapshots(cfg.GetSnapshotDir(), cfg.GetAgentID())
		if err != nil {
			return nil, err
		}
		return snapshots, nil
	case config.StorageSQLite, "":
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("path", cfg.GetDatabasePath()).Msg("using sqlite snapshots")
		return sqlite.NewSnapshots(db, cfg.GetAgentID()), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.GetStorageBackend())
	}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}

// withRuntime wraps a command body with logger setup and runtime lifetime.
func withRuntime(ctx context.Context, fn func(ctx context.Context, rt *Runtime) error) error {
	var flushLog func()
	ctx, flushLog = setupLogger(ctx)
	defer flushLog()

	rt, err := NewRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("failed to close storage")
		}
	}()

	return fn(ctx, rt)
}
