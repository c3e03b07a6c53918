package main

import (
	"fmt"

	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/internal/service/installer"
	"github.com/sandevgo/smartctx/internal/service/ui"
	"github.com/sandevgo/smartctx/pkg/log"
	"github.com/spf13/cobra"
)

var forceInstall bool

var installCmd = &cobra.Command{
	Use:          "install",
	Short:        "Write the runtime configuration interactively",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		runtimePath := config.GetRuntimePath()
		if _, err := installer.RunWizard(runtimePath, forceInstall); err != nil {
			return err
		}

		log.FromCtx(ctx).Info().Str("path", runtimePath).Msg("configuration saved")
		fmt.Fprintln(cmd.OutOrStdout(), ui.TitleStyle.Render("Done. Run `smartctx start` or `smartctx chat`."))
		return nil
	},
}

func init() {
	installCmd.Flags().BoolVarP(&forceInstall, "force", "f", false, "overwrite an existing .env")
	rootCmd.AddCommand(installCmd)
}
