// Package cmd is the infrasense-be command line.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"infrasense-be/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is stamped at build time.
var Version = "dev"

// NewRootCmd builds the command tree. Running the root command serves the API.
func NewRootCmd(v *viper.Viper) *cobra.Command {
	serve := newServeCmd(v)

	root := &cobra.Command{
		Use:           "infrasense-be",
		Short:         "InfraSense civic issue reporting backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newTokenCmd(v))
	return root
}

// Execute loads .env, runs the command tree and exits non-zero on failure.
func Execute() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("could not read .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(config.NewViper()).ExecuteContext(ctx); err != nil {
		slog.Error("infrasense-be failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
