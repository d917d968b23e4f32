package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/glimpse/internal/config"
	"github.com/sandevgo/glimpse/pkg/env"
	"github.com/sandevgo/glimpse/pkg/log"
	"github.com/spf13/cobra"
)

var force bool

var initCmd = &cobra.Command{
	Use:          "init",
	Short:        "Write a default .env into the runtime directory",
	Long:         `Writes the current configuration, defaults included, to <runtime>/.env so it can be edited by hand.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		runtimePath := config.GetRuntimePath()
		envPath := filepath.Join(runtimePath, ".env")

		if _, err := os.Stat(envPath); err == nil && !force {
			return fmt.Errorf(".env file already exists at %s", envPath)
		}

		appCfg, err := config.LoadAppConfig()
		if err != nil {
			return err
		}
		llmCfg, err := config.LoadLLMConfig()
		if err != nil {
			return err
		}

		content, err := env.MarshalEnv(appCfg, llmCfg)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(runtimePath, 0755); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}
		if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
			return err
		}

		// Read it back so a malformed value surfaces now rather than on start
		if _, err := godotenv.Read(envPath); err != nil {
			return fmt.Errorf("written .env does not parse: %w", err)
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Edit the .env file, then run 'glimpse start'.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing .env")
	rootCmd.AddCommand(grouped(groupSetup, initCmd)...)
}
