package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle uses ANSI 6 (cyan), readable on light and dark terminals.
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle is dimmed (ANSI 8) so descriptions recede behind names.
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// ActiveStyle marks topics that are part of the current filter.
	ActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)

	// StickyStyle marks the standing instructions topic.
	StickyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)
