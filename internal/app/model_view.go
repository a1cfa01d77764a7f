package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jotter/internal/autosave"
	"jotter/internal/notes"
)

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.screen == screenAuth {
		form := m.authForm.View(m.width, m.theme)
		if m.authForm.Submitting() {
			form += "\n" + m.spinner.View()
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}

	bodyHeight := max(3, m.height-footerHeight)
	body := m.renderPanes(bodyHeight)
	if m.settings.IsOpen() {
		panel := m.settings.View(m.width, m.prefs, m.theme)
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, panel)
	}
	if m.confirm.IsOpen() {
		block, y := m.confirm.View(m.width, bodyHeight)
		body = overlayLines(body, block, y)
	}
	return body + "\n" + m.renderFooter()
}

func (m *Model) renderPanes(height int) string {
	width := m.width
	var panes []string
	if m.layout.Compact() {
		switch {
		case m.layout.EditorVisible():
			panes = append(panes, m.renderEditorPane(width, height))
		case m.layout.SidebarVisible():
			side := min(compactSidebarWidth, width/2)
			panes = append(panes, m.renderSidebarPane(side, height), m.renderListPane(width-side, height))
		default:
			panes = append(panes, m.renderListPane(width, height))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	}

	remaining := width
	if m.layout.SidebarVisible() {
		panes = append(panes, m.renderSidebarPane(sidebarWidth, height))
		remaining -= sidebarWidth
	}
	list := min(listWidth, remaining/2)
	panes = append(panes, m.renderListPane(list, height))
	remaining -= list
	panes = append(panes, m.renderEditorPane(remaining, height))
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func (m *Model) renderSidebarPane(width, height int) string {
	inner := m.sidebar.View(width-2, height-2, m.view, m.sessionEmail(), m.focus == focusSidebar, m.theme)
	return m.theme.frame(inner, width, height, m.focus == focusSidebar)
}

func (m *Model) renderListPane(width, height int) string {
	innerWidth := max(1, width-2)
	m.search.Placeholder = m.view.SearchPlaceholder()
	m.search.Width = max(1, innerWidth-3)
	searchLine := m.search.View()
	list := listView(m.view, m.visible, innerWidth, max(1, height-4), m.controller.Loading(), m.controller.Err(), m.theme)
	inner := searchLine + "\n" + dividerStyle.Render(strings.Repeat("─", innerWidth)) + "\n" + list
	focused := m.focus == focusList || m.focus == focusSearch
	return m.theme.frame(inner, width, height, focused)
}

func (m *Model) renderEditorPane(width, height int) string {
	innerWidth := max(1, width-2)
	innerHeight := max(1, height-2)
	m.editor.Resize(innerWidth, innerHeight)
	status := m.autosave.Status()
	if status.NoteID != m.editor.NoteID() {
		status = autosave.Status{}
	}
	inner := m.editor.View(innerWidth, innerHeight, status, m.view.Filter.Query, m.theme)
	return m.theme.frame(inner, width, height, m.focus == focusEditor)
}

func (m *Model) renderFooter() string {
	left := m.status
	switch {
	case m.statusErr && left != "":
		left = toastErrorStyle.Render(" " + left + " ")
	case m.controller.Loading():
		left = m.spinner.View() + " loading notes"
	case m.autosave.State() == autosave.Saving:
		left = m.spinner.View() + " saving"
	case left != "":
		left = mutedStyle.Render(left)
	}
	right := mutedStyle.Render(notes.CountLabel(len(m.visible)) + " • " + m.layout.Mode().String())
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	statusLine := truncateToWidth(left+strings.Repeat(" ", gap)+right, m.width)
	return statusLine + "\n" + truncateToWidth(m.help.View(m.keys), m.width)
}

// overlayLines replaces base rows starting at y with the rows of block.
func overlayLines(base, block string, y int) string {
	baseLines := strings.Split(base, "\n")
	for i, line := range strings.Split(block, "\n") {
		if row := y + i; row >= 0 && row < len(baseLines) {
			baseLines[row] = line
		}
	}
	return strings.Join(baseLines, "\n")
}
