package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sandevgo/smartctx/internal/transport/cli"
	"github.com/sandevgo/smartctx/pkg/srv"
	"github.com/spf13/cobra"
)

var chatID string

var chatCmd = &cobra.Command{
	Use:          "chat",
	Short:        "Chat in the terminal",
	Long:         `Opens an interactive chat. Slash commands such as /topics and /filter work as in Telegram.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLoggerTo(ctx, os.Stderr)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer shutdown(ctx, a)

		rl, err := cli.NewReadLine(a.agent, a.router, a.cfg, chatID)
		if err != nil {
			return err
		}
		defer rl.Shutdown(ctx)

		return rl.Start(ctx)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatID, "chat", "c", cli.DefaultChatID, "chat identifier")
	rootCmd.AddCommand(chatCmd)
}

// shutdown drains background work of the app.
func shutdown(ctx context.Context, a *app) {
	srv.Stop(ctx, a.services, srv.DefaultShutdownTimeout)
}
