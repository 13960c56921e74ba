package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chatmodeld",
		Short:         "Serve local chat models over HTTP and websocket",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (.yaml|.json|.toml); flags override file values")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", envOr("CHATMODELD_LOG_LEVEL", "info"), "Log level: trace|debug|info|warn|error")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "Log format: console|json")
	root.AddCommand(buildServeCmd(), buildModelsCmd(), buildVersionCmd())
	return root
}

// Execute runs the CLI. A bare invocation serves, matching how the
// daemon is launched from init scripts.
func Execute() error {
	root := buildRootCmd()
	if len(os.Args) == 1 {
		root.SetArgs([]string{"serve"})
	}
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds the process logger from the persistent flags.
// Console output is the default; json is for collectors.
func newLogger() zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(flagLogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var w io.Writer = os.Stderr
	if flagLogFormat != "json" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
