// Package installer runs the terminal setup wizard that writes the runtime
// .env file.
package installer

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrInterrupted = errors.New("installation interrupted")

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Step is one screen of the wizard. Update returns nil when the step is done.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState) (Step, tea.Cmd)
	View(state *InstallState) string
}

// skipper is implemented by steps that only apply to some answers.
type skipper interface {
	Skip(state *InstallState) bool
}

type InstallState struct {
	EnvVars map[string]string
}

func NewInstallState() *InstallState {
	return &InstallState{EnvVars: make(map[string]string)}
}

func (s *InstallState) is(key, value string) bool {
	return s.EnvVars[key] == value
}

func getSteps(runtimePath string, force bool) []Step {
	return []Step{
		NewChoiceStep("LLM_PROVIDER", "Select your LLM provider:", "openrouter", "openai", "ollama", "custom"),
		NewInputStep("LLM_BASE_URL", "Enter the provider base URL", "https://api.example.com").
			When(func(s *InstallState) bool { return s.is("LLM_PROVIDER", "custom") }),
		NewInputStep("LLM_BASE_URL", "Enter the Ollama URL", "http://localhost:11434").
			Optional().
			When(func(s *InstallState) bool { return s.is("LLM_PROVIDER", "ollama") }),
		NewInputStep("LLM_API_KEY", "Enter your API key", "sk-...").
			Secret().
			When(func(s *InstallState) bool { return !s.is("LLM_PROVIDER", "ollama") }),
		NewChoiceStep("EMBEDDING_CACHE_BACKEND", "Where should embeddings be cached?", "file", "sqlite", "redis"),
		NewInputStep("REDIS_ADDR", "Enter the Redis address", "localhost:6379").
			When(func(s *InstallState) bool { return s.is("EMBEDDING_CACHE_BACKEND", "redis") }),
		NewChoiceStep("ENABLE_TELEGRAM", "Enable the Telegram bot?", "false", "true"),
		NewInputStep("TELEGRAM_TOKEN", "Enter your Telegram bot token", "123456789:ABCDEF...").
			Secret().
			When(func(s *InstallState) bool { return s.is("ENABLE_TELEGRAM", "true") }),
		NewInputStep("TELEGRAM_OWNER_ID", "Enter your Telegram user id", "123456789").
			When(func(s *InstallState) bool { return s.is("ENABLE_TELEGRAM", "true") }),
		NewFinalizationStep(),
		NewSaveEnvStep(runtimePath, force),
	}
}

type nextMsg struct{}

type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
}

func newModel(steps []Step) model {
	m := model{steps: steps, state: NewInstallState()}
	m.currentStep = m.skipFrom(0)
	return m
}

func (m model) Init() tea.Cmd {
	if m.currentStep < len(m.steps) {
		return m.steps[m.currentStep].Init()
	}
	return tea.Quit
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	next, cmd := m.steps[m.currentStep].Update(msg, m.state)
	if next == nil {
		m.currentStep = m.skipFrom(m.currentStep + 1)
		if m.currentStep >= len(m.steps) {
			return m, tea.Quit
		}
		return m, m.steps[m.currentStep].Init()
	}

	m.steps[m.currentStep] = next
	return m, cmd
}

// skipFrom returns the first step at or after i that applies.
func (m model) skipFrom(i int) int {
	for i < len(m.steps) {
		if s, ok := m.steps[i].(skipper); !ok || !s.Skip(m.state) {
			return i
		}
		i++
	}
	return i
}

func (m model) View() string {
	if m.quitting {
		return "Installation cancelled.\n"
	}
	if m.currentStep >= len(m.steps) {
		return "Configuration complete!\n"
	}
	return titleStyle.Render("Setting up smartctx") + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard runs the TUI and writes runtimePath/.env. An existing file is
// only replaced when force is set.
func RunWizard(runtimePath string, force bool) (*InstallState, error) {
	p := tea.NewProgram(newModel(getSteps(runtimePath, force)), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	final := m.(model)
	if final.quitting {
		return nil, ErrInterrupted
	}
	if save, ok := final.steps[len(final.steps)-1].(*SaveEnvStep); ok && save.err != nil {
		return nil, save.err
	}
	return final.state, nil
}

func renderError(err error) string {
	return errorStyle.Render(fmt.Sprintf("Error: %v", err)) + "\n\n(press ctrl+c to quit)\n"
}
