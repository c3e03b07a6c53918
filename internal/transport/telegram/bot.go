package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/agent"
	"github.com/sandevgo/smartctx/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Bot struct {
	bot     *tele.Bot
	cfg     *config.TelegramConfig
	agent   *agent.Agent
	router  core.CmdRouter
	sender  *sender
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	agent *agent.Agent,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		cfg:     cfg,
		agent:   agent,
		router:  router,
		sender:  newSender(b),
		ownerID: cfg.OwnerID,
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Only the owner may talk to the bot.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	if err := b.SetCommands(botCommands(router)); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to register telegram commands")
	}

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	chatID := chatKey(c.Chat().ID)

	if out, ok := b.router.Execute(ctx, chatID, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Chat(), out, true)
	}

	_ = c.Notify(tele.Typing)

	_, err := b.agent.Run(ctx, chatID, c.Text(), func(msg core.Message) {
		if strings.TrimSpace(msg.Content) == "" {
			return
		}
		if err := b.sender.sendMarkdown(ctx, c.Chat(), msg.Content, false); err != nil {
			logger.Error().Err(err).Str("chat_id", chatID).Msg("failed to send telegram message")
		}
	})
	if err != nil {
		logger.Error().Err(err).Str("chat_id", chatID).Msg("agent run failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}

	return nil
}

func chatKey(id int64) string {
	return fmt.Sprintf("telegram-%d", id)
}

// botCommands mirrors the router registry in the Telegram command menu.
func botCommands(router core.CmdRouter) []tele.Command {
	cmds := router.ListCommands()
	out := make([]tele.Command, 0, len(cmds))
	for _, cmd := range cmds {
		out = append(out, tele.Command{
			Text:        strings.TrimPrefix(cmd.Name(), "/"),
			Description: cmd.Description(),
		})
	}
	return out
}
