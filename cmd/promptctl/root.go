package main

import (
	"fmt"
	"io"
	"os"

	"promptvault-backend/config"
	"promptvault-backend/internal/bootstrap"
	"promptvault-backend/pkg/logger"

	"github.com/spf13/cobra"
)

var userID uint

var rootCmd = &cobra.Command{
	Use:   "promptctl",
	Short: "Administer promptvault prompt libraries",
	Long: `promptctl works directly against the promptvault database, using the
same environment configuration as the API server.

Changes are announced on the realtime channel, so connected clients pick
them up when Redis is configured.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().UintVar(&userID, "user", 0, "id of the user whose library is used")

	rootCmd.AddCommand(backupCmd, restoreCmd, exportCmd)
}

// openApp loads the configuration and connects to the backing services. Logs
// go to the log file only because stdout may carry command output.
func openApp(cmd *cobra.Command) (*bootstrap.App, error) {
	if userID == 0 {
		return nil, fmt.Errorf("--user is required")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
		Quiet:      true,
	}); err != nil {
		return nil, err
	}
	return bootstrap.Open(cmd.Context(), cfg, logger.Named("promptctl"))
}

// createOutput opens path for writing; "-" is stdout.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
