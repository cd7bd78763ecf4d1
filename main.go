// Command layouteval evaluates trained cooperative agents on a set of
// task layouts, greedily or by sampling actions, and reports reward
// statistics and replays of each layout.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	_ "github.com/samuelfneumann/layouteval/agent/linear"
	_ "github.com/samuelfneumann/layouteval/agent/nonlinear"
)

// Environment variables providing flag defaults
const (
	checkpointsEnv = "LAYOUTEVAL_CHECKPOINTS"
	outEnv         = "LAYOUTEVAL_OUT"
)

func main() {
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd returns the layouteval command with all subcommands
func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "layouteval",
		Short: "Evaluate trained cooperative agents across task layouts",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel, logFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text or json")

	rootCmd.AddCommand(newEvaluateCmd(), newCheckpointCmd(), newLayoutsCmd())
	return rootCmd
}

// newLogger returns a logger writing to stderr
func newLogger(level, format string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: l}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", format)
}

// envDefault returns the value of an environment variable, or def if it
// is not set
func envDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
