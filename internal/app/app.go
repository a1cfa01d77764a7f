package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Run starts the full-screen UI and blocks until it exits.
func Run(opts Options) error {
	setMarkdownBackgroundDark(lipgloss.HasDarkBackground())
	model := NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	model.notifier.attach(p.Send)
	_, err := p.Run()
	model.autosave.Close()
	return err
}
