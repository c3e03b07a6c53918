package main

import (
	"fmt"

	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/pkg/env"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Print the effective configuration",
	Long:         `Prints the configuration resolved from the environment and the runtime .env file. Secrets are masked.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLoggerTo(cmd.Context(), cmd.ErrOrStderr())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		appCfg, err := config.LoadAppConfig()
		if err != nil {
			return err
		}
		providerCfg, err := config.LoadProviderConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, c := range []any{appCfg, providerCfg} {
			s, err := env.MarshalEnv(c, "LLM_API_KEY")
			if err != nil {
				return err
			}
			fmt.Fprint(out, s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
