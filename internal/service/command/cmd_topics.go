package command

import (
	"context"
	"fmt"
)

type TopicsCommand struct {
	dispatcher *Dispatcher
	formatter  *ResponseFormatter
}

func NewTopicsCommand(dispatcher *Dispatcher) *TopicsCommand {
	return &TopicsCommand{
		dispatcher: dispatcher,
		formatter:  NewResponseFormatter(),
	}
}

func (c *TopicsCommand) Name() string {
	return "topics"
}

func (c *TopicsCommand) Description() string {
	return "Show topics of this chat"
}

func (c *TopicsCommand) Execute(ctx context.Context, chatID string, args []string) (string, error) {
	resp, err := c.dispatcher.GetTopics(ctx, GetTopicsRequest{ChatID: chatID})
	if err != nil {
		return "", fmt.Errorf("failed to load topics: %w", err)
	}

	if len(resp.Topics) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Topics"),
			c.formatter.Label("Messages", fmt.Sprint(resp.TotalMessages)),
			c.formatter.Tip("Topics appear after the first assistant reply."),
		), nil
	}

	return c.formatter.Combine(
		c.formatter.Info("Topics"),
		c.formatter.Label("Messages", fmt.Sprint(resp.TotalMessages)),
		c.formatter.List(c.formatter.Topics(resp.Topics)),
		c.formatter.Usage("/filter topic one, topic two"),
	), nil
}
