package agent

import (
	"os"

	"github.com/sandevgo/smartctx/internal/core"
)

const defaultSystemPrompt = "You are a helpful assistant. Answer concisely and follow the user's standing instructions."

type PromptConfig interface {
	GetSystemPath() string
}

// SysPrompt reads SYSTEM.md from the runtime dir on every turn so edits
// apply without a restart.
type SysPrompt struct {
	cfg PromptConfig
}

func NewSysPrompt(cfg PromptConfig) *SysPrompt {
	return &SysPrompt{
		cfg: cfg,
	}
}

func (p *SysPrompt) Build() []core.Message {
	content, err := os.ReadFile(p.cfg.GetSystemPath())
	if err != nil || len(content) == 0 {
		return []core.Message{{Role: core.RoleSystem, Content: defaultSystemPrompt}}
	}
	return []core.Message{{Role: core.RoleSystem, Content: string(content)}}
}
