package commands

import (
	"context"
	"fmt"
	"indicadores-backend/internal/config"
	"indicadores-backend/lib/telemetry"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "indicadores"

var (
	configPath string
	verbose    bool
	dumpDir    string
)

var exporters telemetry.Telemetry

var rootCmd = &cobra.Command{
	Use:          "indicadores",
	Short:        "indicadores keeps a history of chilean economic indicators scraped from the SII and Previred.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)
		var err error
		exporters, err = telemetry.SetupFromEnv(cmd.Context(), serviceName)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return exporters.Shutdown(context.Background())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "The json5 config file, a <name>.local.json5 next to it overrides it.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write debug logs.")
	rootCmd.PersistentFlags().StringVar(&dumpDir, "dump-dir", "", "Write every http exchange with the sources to this directory.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Debug("command failed", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
