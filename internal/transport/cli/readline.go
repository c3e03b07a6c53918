package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/agent"
	"github.com/sandevgo/smartctx/pkg/log"
)

const DefaultChatID = "cli-local"

type ReadLine struct {
	cfg    *config.AppConfig
	agent  *agent.Agent
	router core.CmdRouter
	chatID string
	rl     *readline.Instance
}

func NewReadLine(agent *agent.Agent, router core.CmdRouter, cfg *config.AppConfig, chatID string) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}
	if chatID == "" {
		chatID = DefaultChatID
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          chatID + " >>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		AutoComplete:    completer(router),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:    cfg,
		agent:  agent,
		router: router,
		chatID: chatID,
		rl:     rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Str("chat_id", r.chatID).Msg("chat started, type 'exit' to quit or /help for commands")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		r.handle(ctx, r.rl.Stdout(), line)
	}
}

func (r *ReadLine) handle(ctx context.Context, out io.Writer, line string) {
	if res, ok := r.router.Execute(ctx, r.chatID, line); ok {
		fmt.Fprintln(out, res)
		return
	}

	_, err := r.agent.Run(ctx, r.chatID, line, func(msg core.Message) {
		if msg.Content != "" {
			fmt.Fprintf(out, "%s\n", msg.Content)
		}
	})
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("agent run failed")
		fmt.Fprintf(out, "Error: %v\n", err)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

func completer(router core.CmdRouter) *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{readline.PcItem("/help")}
	for _, cmd := range router.ListCommands() {
		items = append(items, readline.PcItem("/"+cmd.Name()))
	}
	return readline.NewPrefixCompleter(items...)
}
