package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/smartctx/internal/core"
)

// Router parses slash commands typed into a chat transport.
type Router struct {
	commands  map[string]core.Command
	formatter *ResponseFormatter
}

func New(commands []core.Command) *Router {
	c := &Router{
		commands:  make(map[string]core.Command),
		formatter: NewResponseFormatter(),
	}

	for _, cmd := range commands {
		c.commands[cmd.Name()] = cmd
	}
	return c
}

// Execute runs input if it is a slash command. The bool reports whether
// input was consumed.
func (c *Router) Execute(ctx context.Context, chatID, input string) (string, bool) {
	if !strings.HasPrefix(input, "/") {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.TrimPrefix(parts[0], "/")
	// telegram appends the bot name in groups: /topics@my_bot
	name, _, _ = strings.Cut(name, "@")
	args := parts[1:]

	if name == "help" {
		return c.help(), true
	}

	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Sprintf("Unknown command: /%s", name), true
	}

	result, err := cmd.Execute(ctx, chatID, args)
	if err != nil {
		return c.formatter.Error(name, err), true
	}
	return result, true
}

func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		res = append(res, cmd)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}

func (c *Router) help() string {
	items := make([]string, 0, len(c.commands))
	for _, cmd := range c.ListCommands() {
		items = append(items, fmt.Sprintf("/%s – %s", cmd.Name(), cmd.Description()))
	}
	return c.formatter.Combine(
		c.formatter.Info("Commands"),
		c.formatter.List(items),
	)
}
