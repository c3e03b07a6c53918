package command

import (
	"context"
	"fmt"
	"strings"
)

type SimilarityCommand struct {
	dispatcher *Dispatcher
	formatter  *ResponseFormatter
}

func NewSimilarityCommand(dispatcher *Dispatcher) *SimilarityCommand {
	return &SimilarityCommand{
		dispatcher: dispatcher,
		formatter:  NewResponseFormatter(),
	}
}

func (c *SimilarityCommand) Name() string {
	return "similarity"
}

func (c *SimilarityCommand) Description() string {
	return "Turn embedding based filtering on or off"
}

func (c *SimilarityCommand) Execute(ctx context.Context, chatID string, args []string) (string, error) {
	if len(args) != 1 {
		return c.usage(), nil
	}

	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on", "true", "1":
		enabled = true
	case "off", "false", "0":
		enabled = false
	default:
		return "", fmt.Errorf("expected on or off, got %q", args[0])
	}

	resp, err := c.dispatcher.SetSimilarityMode(ctx, SetSimilarityModeRequest{ChatID: chatID, Enabled: &enabled})
	if err != nil {
		return "", err
	}

	if !resp.SimilaritySearchEnabled {
		return c.formatter.Success("Similarity filtering disabled, topics cleared"), nil
	}
	return c.formatter.Combine(
		c.formatter.Success("Similarity filtering enabled"),
		c.formatter.Usage("/filter topic one, topic two"),
	), nil
}

func (c *SimilarityCommand) usage() string {
	return c.formatter.Combine(
		c.formatter.Info("Similarity Mode"),
		c.formatter.Usage("/similarity on|off"),
	)
}
