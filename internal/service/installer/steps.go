package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ChoiceStep stores one of a fixed set of values under key.
type ChoiceStep struct {
	key     string
	title   string
	choices []string
	cursor  int
}

func NewChoiceStep(key, title string, choices ...string) *ChoiceStep {
	return &ChoiceStep{key: key, title: title, choices: choices}
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState) (Step, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.choices)-1 {
			s.cursor++
		}
	case "enter":
		state.EnvVars[s.key] = s.choices[s.cursor]
		return nil, nil
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, choice := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render("❯ "+choice) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+choice) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}

// InputStep reads free text into key.
type InputStep struct {
	key      string
	title    string
	input    textinput.Model
	optional bool
	when     func(*InstallState) bool
}

func NewInputStep(key, title, placeholder string) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = placeholder

	return &InputStep{key: key, title: title, input: ti}
}

// Secret hides the typed value.
func (s *InputStep) Secret() *InputStep {
	s.input.EchoMode = textinput.EchoPassword
	s.input.EchoCharacter = '•'
	return s
}

// Optional accepts an empty value. Nothing is stored then.
func (s *InputStep) Optional() *InputStep {
	s.optional = true
	return s
}

// When limits the step to states where cond holds.
func (s *InputStep) When(cond func(*InstallState) bool) *InputStep {
	s.when = cond
	return s
}

func (s *InputStep) Skip(state *InstallState) bool {
	return s.when != nil && !s.when(state)
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" && !s.optional {
			return s, nil
		}
		if val != "" {
			state.EnvVars[s.key] = val
		}
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	hint := ""
	if s.optional {
		hint = " (optional, press enter to skip)"
	}
	return fmt.Sprintf("%s%s:\n\n%s\n\n(press enter to confirm)\n", s.title, hint, s.input.View())
}
