package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/command"
	"github.com/sandevgo/smartctx/internal/service/ui"
	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:          "topics [chat_id]",
	Short:        "Show extracted topics",
	Long:         `Without arguments lists known chats, most recent first. With a chat id prints its topics.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLoggerTo(cmd.Context(), cmd.ErrOrStderr())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer shutdown(ctx, a)

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			chats, err := a.chats.ListChats(ctx)
			if err != nil {
				return err
			}
			printChats(out, chats)
			return nil
		}

		resp, err := a.dispatcher.GetTopics(ctx, command.GetTopicsRequest{ChatID: args[0]})
		if err != nil {
			return err
		}
		printTopics(out, args[0], resp.Topics, resp.TotalMessages)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}

func printChats(out io.Writer, chats []string) {
	if len(chats) == 0 {
		fmt.Fprintln(out, ui.DescStyle.Render("no chats yet"))
		return
	}
	fmt.Fprintln(out, ui.TitleStyle.Render("CHATS"))
	for _, id := range chats {
		fmt.Fprintf(out, "  %s\n", id)
	}
}

func printTopics(out io.Writer, chatID string, topics []core.Topic, total int) {
	fmt.Fprintln(out, ui.TitleStyle.Render(strings.ToUpper(chatID)))
	if len(topics) == 0 {
		fmt.Fprintln(out, ui.DescStyle.Render("no topics extracted yet"))
		return
	}

	for _, t := range topics {
		label := ui.UsageStyle.Render(t.Label)
		if t.Sticky {
			label = ui.StickyStyle.Render(t.Label)
		}
		fmt.Fprintf(out, "  %s %s\n", label, ui.DescStyle.Render(fmt.Sprintf("(%d)", t.Count)))
	}
	fmt.Fprintln(out, ui.DescStyle.Render(fmt.Sprintf("%d messages", total)))
}
