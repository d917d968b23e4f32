package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/glimpse/pkg/log"
)

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
)

type AppConfig struct {
	RuntimePath string `env:"GLIMPSE_RUNTIME_PATH" envDefault:".glimpse"`
	// Snapshot backend: sqlite or file
	Storage string `env:"GLIMPSE_STORAGE" envDefault:"sqlite"`
	// Namespace for persisted snapshots
	AgentID string `env:"GLIMPSE_AGENT_ID" envDefault:"default"`

	// Batch classification fan-out
	ClassifyConcurrency int `env:"GLIMPSE_CLASSIFY_CONCURRENCY" envDefault:"4"`
}

func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "glimpse.db")
}

func (c AppConfig) GetSnapshotDir() string {
	return filepath.Join(c.RuntimePath, "snapshots")
}

func (c AppConfig) GetHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}

func (c AppConfig) GetStorageBackend() string {
	return c.Storage
}

func (c AppConfig) GetAgentID() string {
	return c.AgentID
}
