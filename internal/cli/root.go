// Package cli implements the iiko-bot commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KirillkoTankisto/iiko-bot/internal/app"
	"github.com/KirillkoTankisto/iiko-bot/internal/config"
	"github.com/KirillkoTankisto/iiko-bot/internal/infra/logger"
)

var configPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:          "iiko-bot",
	Short:        "Telegram bot for iiko cash shift and sales reports",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $IIKO_BOT_CONFIG or "+config.DefaultPath+")")
}

// Execute runs the root command and returns its error.
func Execute() error {
	return RootCmd.Execute()
}

// openApp loads the configuration and builds the application. serve is set
// for the long-running bot, which exports metrics. The returned cleanup
// closes the app and flushes the logger.
func openApp(ctx context.Context, serve bool) (*app.App, *zap.Logger, func(), error) {
	path := config.ResolvePath(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, nil, nil, err
	}

	var opts []app.Option
	if !serve {
		opts = append(opts, app.WithoutMetricsExport())
	}
	application, err := app.New(ctx, cfg, path, log, opts...)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("create app: %w", err)
	}

	cleanup := func() {
		if err := application.Close(); err != nil {
			log.Warn("close app", zap.Error(err))
		}
		_ = log.Sync()
	}
	return application, log, cleanup, nil
}
