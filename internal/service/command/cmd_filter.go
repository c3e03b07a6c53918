package command

import (
	"context"
	"fmt"
	"strings"
)

type FilterCommand struct {
	dispatcher *Dispatcher
	formatter  *ResponseFormatter
}

func NewFilterCommand(dispatcher *Dispatcher) *FilterCommand {
	return &FilterCommand{
		dispatcher: dispatcher,
		formatter:  NewResponseFormatter(),
	}
}

func (c *FilterCommand) Name() string {
	return "filter"
}

func (c *FilterCommand) Description() string {
	return "Focus the context on topics, or clear the focus"
}

// Execute takes a comma separated list of labels. Without arguments the
// filter is cleared.
func (c *FilterCommand) Execute(ctx context.Context, chatID string, args []string) (string, error) {
	labels := splitLabels(strings.Join(args, " "))

	resp, err := c.dispatcher.SetFilter(ctx, SetFilterRequest{ChatID: chatID, Topics: labels})
	if err != nil {
		return "", err
	}

	if len(resp.ActiveTopics) == 0 {
		return c.formatter.Combine(
			c.formatter.Success("Filter cleared, full history in use"),
			c.formatter.Usage("/filter topic one, topic two"),
		), nil
	}

	return c.formatter.Combine(
		c.formatter.Success(fmt.Sprintf("Filtering by %d topic(s)", len(resp.ActiveTopics))),
		c.formatter.List(resp.ActiveTopics),
	), nil
}

func splitLabels(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}
