package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"jotter/internal/prefs"
)

const (
	settingsRowColor = iota
	settingsRowFont
	settingsRowCount
)

// SettingsPanel edits the color and font preferences. Every change is
// persisted immediately.
type SettingsPanel struct {
	open bool
	row  int
	err  string
}

func NewSettingsPanel() *SettingsPanel {
	return &SettingsPanel{}
}

func (s *SettingsPanel) IsOpen() bool { return s != nil && s.open }

func (s *SettingsPanel) Open() {
	s.open = true
	s.row = settingsRowColor
	s.err = ""
}

func (s *SettingsPanel) Close() {
	s.open = false
	s.err = ""
}

// HandleKey applies a key. It reports whether the preferences changed.
func (s *SettingsPanel) HandleKey(msg tea.KeyMsg, p *prefs.Preferences) bool {
	if !s.IsOpen() || p == nil {
		return false
	}
	var err error
	changed := false
	switch msg.String() {
	case "esc", "q", "enter":
		s.Close()
		return false
	case "up", "k", "shift+tab":
		s.row = (s.row + settingsRowCount - 1) % settingsRowCount
		return false
	case "down", "j", "tab":
		s.row = (s.row + 1) % settingsRowCount
		return false
	case "right", "l", " ":
		if s.row == settingsRowColor {
			err = p.CycleColor()
		} else {
			err = p.CycleFont()
		}
		changed = true
	case "left", "h":
		if s.row == settingsRowColor {
			err = p.SetColor(prev(prefs.ColorNames(), p.ColorName()))
		} else {
			err = p.SetFont(prev(prefs.FontNames(), p.FontName()))
		}
		changed = true
	default:
		return false
	}
	s.err = ""
	if err != nil {
		// The choice still applies for this run.
		s.err = "could not save preferences: " + err.Error()
	}
	return changed
}

func prev(order []string, current string) string {
	for i, name := range order {
		if name == current {
			return order[(i+len(order)-1)%len(order)]
		}
	}
	return order[0]
}

func (s *SettingsPanel) View(width int, p *prefs.Preferences, t theme) string {
	if !s.IsOpen() || p == nil {
		return ""
	}
	lines := []string{t.header.Render("Settings"), ""}
	rows := []struct {
		label   string
		options []string
		current string
	}{
		{"Color", prefs.ColorNames(), p.ColorName()},
		{"Font", prefs.FontNames(), p.FontName()},
	}
	for i, row := range rows {
		label := "  " + row.label
		if i == s.row {
			label = t.accent.Render("› " + row.label)
		}
		options := make([]string, 0, len(row.options))
		for _, option := range row.options {
			if option == row.current {
				options = append(options, t.selected.Render(" "+option+" "))
			} else {
				options = append(options, " "+option+" ")
			}
		}
		lines = append(lines, label, "  "+strings.Join(options, " "), "")
	}
	lines = append(lines, mutedStyle.Render("Font: "+p.Font().Name))
	if s.err != "" {
		lines = append(lines, errorStyle.Render(truncateToWidth(s.err, width)))
	}
	lines = append(lines, "", helpStyle.Render("←/→ change • ↑/↓ move • esc close"))
	return t.focused.Padding(0, 1).Render(strings.Join(lines, "\n"))
}
