package main

import (
	"os"
	"os/signal"

	mcptransport "github.com/sandevgo/smartctx/internal/transport/mcp"
	"github.com/sandevgo/smartctx/pkg/log"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:          "mcp",
	Short:        "Serve the context commands as MCP tools on stdio",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// stdout carries the protocol.
		var flushLog func()
		ctx, flushLog = setupLoggerTo(ctx, os.Stderr)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer shutdown(ctx, a)

		s := mcptransport.NewStdio(mcptransport.NewServer(a.dispatcher), os.Stdin, os.Stdout)
		err = s.Start(ctx)
		log.FromCtx(ctx).Info().Msg("mcp server stopped")
		return err
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
