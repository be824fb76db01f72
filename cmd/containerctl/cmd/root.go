package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/forensiccase/containerctl/internal/config"
	"github.com/forensiccase/containerctl/internal/forensiclog"
	"github.com/forensiccase/containerctl/internal/pathutil"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "containerctl",
	Short: "Inspect, verify, and extract forensic evidence containers",
	Long: `containerctl opens AD1, EWF (E01/L01/Ex01/Lx01), raw dd, and UFED
mobile-extraction containers, reports their structure, verifies their
integrity against embedded or sidecar hashes, and extracts their
payload to disk.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded

		if err := pathutil.CheckFileDirectoryWritable(cfg.Logging.File, "log"); err != nil {
			return err
		}

		level := slog.LevelInfo
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
		forensiclog.Init(forensiclog.Options{
			Level:    level,
			JSON:     cfg.Logging.JSON,
			FilePath: cfg.Logging.File,
		})
		return nil
	},
}

// Execute runs the root command; it is the sole entry point main calls.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")
}
