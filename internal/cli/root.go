// Package cli implements the object-cueing CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/object-cueing/internal/config"
	"github.com/rcliao/object-cueing/internal/logging"
	"github.com/rcliao/object-cueing/internal/store"
)

var (
	dbPath     string
	configPath string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "object-cueing",
	Short: "Object-based attentional cueing experiment",
	Long: "Runs object-based cueing trials with saccade or keypress responses, " +
		"stores trials, aborted attempts and saccades in SQLite, and reports on them.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $OBJCUE_DATABASE_PATH or ~/.object-cueing/experiment.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./object-cueing.yaml or ~/.object-cueing/object-cueing.yaml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return cfg, nil
}

func openStore() (*store.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(cfg.Database.Path)
}

func newLogger(cfg *config.Config) *zap.Logger {
	log, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		exitErr("init logger", err)
	}
	return log
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
