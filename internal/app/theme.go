package app

import (
	"github.com/charmbracelet/lipgloss"

	"jotter/internal/prefs"
)

var (
	helpStyle                = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	mutedStyle               = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dividerStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	errorStyle               = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	warningStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	badgeStyle               = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("239")).Padding(0, 1)
	menuDropStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235"))
	contextMenuHeaderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("251")).Background(lipgloss.Color("235")).Bold(true)
	confirmDialogBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208"))
	toastInfoStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastErrorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)

// theme holds the styles that follow the chosen accent color and font.
type theme struct {
	palette prefs.Palette
	font    prefs.Font

	header    lipgloss.Style
	title     lipgloss.Style
	selected  lipgloss.Style
	accent    lipgloss.Style
	tag       lipgloss.Style
	highlight lipgloss.Style
	button    lipgloss.Style
	focused   lipgloss.Style
	pane      lipgloss.Style
	body      lipgloss.Style
}

func newTheme(palette prefs.Palette, font prefs.Font) theme {
	primary := lipgloss.Color(palette.Primary)
	hover := lipgloss.Color(palette.PrimaryHover)
	light := lipgloss.Color(palette.PrimaryLight)
	accent := lipgloss.Color(palette.Accent)

	body := lipgloss.NewStyle()
	title := lipgloss.NewStyle().Bold(true)
	if font.Italic {
		body = body.Italic(true)
		title = title.Italic(true)
	}
	return theme{
		palette:   palette,
		font:      font,
		header:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		title:     title,
		selected:  lipgloss.NewStyle().Foreground(light).Background(hover).Bold(true),
		accent:    lipgloss.NewStyle().Foreground(primary),
		tag:       lipgloss.NewStyle().Foreground(hover).Background(accent),
		highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("220")),
		button:    lipgloss.NewStyle().Foreground(light).Background(primary).Bold(true).Padding(0, 1),
		focused:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(primary),
		pane:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")),
		body:      body,
	}
}

func themeFromPrefs(p *prefs.Preferences) theme {
	if p == nil {
		return newTheme(prefs.Palette{Primary: "63", PrimaryHover: "62", PrimaryLight: "230", Accent: "236"}, prefs.Font{})
	}
	return newTheme(p.Palette(), p.Font())
}

// frame draws a bordered pane of the given outer size.
func (t theme) frame(content string, width, height int, focused bool) string {
	style := t.pane
	if focused {
		style = t.focused
	}
	innerWidth := max(1, width-2)
	innerHeight := max(1, height-2)
	return style.Width(innerWidth).Height(innerHeight).MaxHeight(height).Render(content)
}
