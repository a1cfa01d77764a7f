package app

import (
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"jotter/internal/markup"
	"jotter/internal/notes"
	"jotter/internal/types"
)

const (
	listRowTagLimit = 3
	listRowHeight   = 4
)

// renderTags shows up to limit tags followed by "+N" for the rest.
func renderTags(tags []string, limit int, t theme) string {
	if len(tags) == 0 {
		return ""
	}
	shown := tags
	if limit >= 0 && len(tags) > limit {
		shown = tags[:limit]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, tag := range shown {
		parts = append(parts, t.tag.Render("#"+tag))
	}
	if rest := len(tags) - len(shown); rest > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("+%d", rest)))
	}
	return strings.Join(parts, " ")
}

// noteRow renders one list entry: title with badge, tags, preview, date.
func noteRow(note types.Note, query string, width int, selected bool, t theme) []string {
	title := strings.TrimSpace(note.Title)
	if title == "" {
		title = "Untitled"
	}
	badge := ""
	if note.Archived {
		badge = " " + badgeStyle.Render("Archived")
	}
	titleWidth := max(1, width-xansi.StringWidth(badge))
	titleText := markup.HighlightTerm(truncatePlain(title, titleWidth), query, t.highlight.Render)
	first := t.title.Render(titleText) + badge

	preview := markup.Preview(note.Content, markup.PreviewLength)
	previewLine := markup.HighlightTerm(truncatePlain(preview, width), query, t.highlight.Render)

	meta := mutedStyle.Render(markup.FormatDate(note.UpdatedAt))
	if tags := renderTags(note.Tags, listRowTagLimit, t); tags != "" {
		meta = tags + "  " + meta
	}
	lines := []string{first, t.body.Render(previewLine), truncateToWidth(meta, width)}
	if selected {
		for i, line := range lines {
			lines[i] = t.accent.Render("▌") + truncateToWidth(line, max(1, width-1))
		}
	} else {
		for i, line := range lines {
			lines[i] = " " + truncateToWidth(line, max(1, width-1))
		}
	}
	return append(lines, "")
}

// listView renders the header, count and as many rows as fit, scrolled so
// the selected note stays visible.
func listView(view notes.View, visible []types.Note, width, height int, loading bool, loadErr error, t theme) string {
	lines := []string{
		t.header.Render(truncatePlain(view.HeaderTitle(), width)),
		mutedStyle.Render(notes.CountLabel(len(visible))),
		"",
	}
	switch {
	case loading && len(visible) == 0:
		lines = append(lines, mutedStyle.Render("Loading notes..."))
		return strings.Join(fitHeight(lines, height), "\n")
	case loadErr != nil && len(visible) == 0:
		lines = append(lines, errorStyle.Render(truncatePlain("Could not load notes", width)), helpStyle.Render("ctrl+r to retry"))
		return strings.Join(fitHeight(lines, height), "\n")
	case len(visible) == 0:
		title, hint := notes.EmptyMessage(view.Filter.Query)
		lines = append(lines, t.title.Render(title), mutedStyle.Render(truncatePlain(hint, width)))
		return strings.Join(fitHeight(lines, height), "\n")
	}

	rowsFit := max(1, (height-len(lines))/listRowHeight)
	selectedIndex := 0
	for i, note := range visible {
		if note.ID == view.SelectedID {
			selectedIndex = i
			break
		}
	}
	start := 0
	if selectedIndex >= rowsFit {
		start = selectedIndex - rowsFit + 1
	}
	end := min(len(visible), start+rowsFit)
	for _, note := range visible[start:end] {
		lines = append(lines, noteRow(note, view.Filter.Query, width, note.ID == view.SelectedID, t)...)
	}
	return strings.Join(fitHeight(lines, height), "\n")
}
