package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep fills in values derived from the answers.
type FinalizationStep struct{}

func NewFinalizationStep() *FinalizationStep {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState) (Step, tea.Cmd) {
	finalize(state)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

func finalize(state *InstallState) {
	if state.is("EMBEDDING_CACHE_BACKEND", "redis") {
		state.EnvVars["ENABLE_REDIS"] = "true"
	}
	if state.is("ENABLE_TELEGRAM", "false") {
		delete(state.EnvVars, "ENABLE_TELEGRAM")
	}
}

// SaveEnvStep writes the collected values to <runtime>/.env.
type SaveEnvStep struct {
	runtimePath string
	force       bool
	err         error
	saved       bool
}

func NewSaveEnvStep(runtimePath string, force bool) *SaveEnvStep {
	return &SaveEnvStep{runtimePath: runtimePath, force: force}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState) (Step, tea.Cmd) {
	if s.saved || s.err != nil {
		return nil, nil
	}

	if err := SaveEnv(s.runtimePath, state.EnvVars, s.force); err != nil {
		s.err = err
		return nil, nil
	}
	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return renderError(s.err)
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// SaveEnv writes vars to dir/.env with sorted keys.
func SaveEnv(dir string, vars map[string]string, force bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil && !force {
		return fmt.Errorf(".env file already exists at %s", envPath)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var content strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&content, "%s=%s\n", k, vars[k])
	}

	return os.WriteFile(envPath, []byte(content.String()), 0600)
}
