package command

import (
	"github.com/sandevgo/smartctx/internal/core"
)

func NewCommands(dispatcher *Dispatcher) []core.Command {
	return []core.Command{
		NewTopicsCommand(dispatcher),
		NewFilterCommand(dispatcher),
		NewSimilarityCommand(dispatcher),
	}
}
