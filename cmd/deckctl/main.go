// Command deckctl runs operator tasks against the deck database: schema
// migration, bulk CSV import and an on-demand reminder sweep.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/app"
	"github.com/noah-isme/deck-tracker-api/pkg/config"
	"github.com/noah-isme/deck-tracker-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "deckctl",
	Short:         "Operator tooling for the deck tracker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(migrateCmd, importCmd, remindCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and assembles the application without the
// mail queue, so notifications are delivered before the command returns.
func bootstrap(overrides ...func(*config.Config)) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, override := range overrides {
		override(cfg)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.New(cfg, logr)
	if err != nil {
		logr.Error("bootstrap failed", zap.Error(err))
		return nil, err
	}
	return a, nil
}
