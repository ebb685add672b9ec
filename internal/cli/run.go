package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Serve the Telegram bot until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runBot,
	})
}

func runBot(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, log, cleanup, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := application.Run(ctx); err != nil {
		return err
	}
	log.Info("bot stopped")
	return nil
}
