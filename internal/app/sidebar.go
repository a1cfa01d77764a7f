package app

import (
	"strings"

	"jotter/internal/notes"
)

type sidebarEntryKind int

const (
	sidebarEntryAll sidebarEntryKind = iota
	sidebarEntryArchived
	sidebarEntryTag
	sidebarEntrySettings
)

type sidebarEntry struct {
	kind sidebarEntryKind
	tag  string
}

func (e sidebarEntry) label() string {
	switch e.kind {
	case sidebarEntryArchived:
		return "Archived"
	case sidebarEntryTag:
		return "#" + e.tag
	case sidebarEntrySettings:
		return "Settings"
	default:
		return "All Notes"
	}
}

// active reports whether the entry describes the view currently shown.
func (e sidebarEntry) active(view notes.View) bool {
	switch e.kind {
	case sidebarEntryAll:
		return !view.Filter.ShowArchived && view.Filter.Tag == ""
	case sidebarEntryArchived:
		return view.Filter.ShowArchived
	case sidebarEntryTag:
		return view.Filter.Tag == e.tag
	}
	return false
}

// Sidebar lists the views, the tag universe and settings.
type Sidebar struct {
	entries []sidebarEntry
	cursor  int
}

func NewSidebar() *Sidebar {
	s := &Sidebar{}
	s.SetTags(nil)
	return s
}

// SetTags rebuilds the entries, keeping the cursor on the same entry when
// it still exists.
func (s *Sidebar) SetTags(tags []string) {
	var current sidebarEntry
	hadCurrent := s.cursor < len(s.entries)
	if hadCurrent {
		current = s.entries[s.cursor]
	}
	entries := []sidebarEntry{{kind: sidebarEntryAll}, {kind: sidebarEntryArchived}}
	for _, tag := range tags {
		entries = append(entries, sidebarEntry{kind: sidebarEntryTag, tag: tag})
	}
	entries = append(entries, sidebarEntry{kind: sidebarEntrySettings})
	s.entries = entries
	s.cursor = 0
	if hadCurrent {
		for i, entry := range entries {
			if entry == current {
				s.cursor = i
				break
			}
		}
	}
}

func (s *Sidebar) Move(delta int) {
	if len(s.entries) == 0 {
		return
	}
	s.cursor = max(0, min(len(s.entries)-1, s.cursor+delta))
}

func (s *Sidebar) Current() sidebarEntry {
	if s.cursor >= len(s.entries) {
		return sidebarEntry{}
	}
	return s.entries[s.cursor]
}

func (s *Sidebar) Entries() []sidebarEntry {
	return append([]sidebarEntry(nil), s.entries...)
}

func (s *Sidebar) View(width, height int, view notes.View, email string, focused bool, t theme) string {
	lines := []string{t.header.Render(truncateToWidth("jotter", width)), ""}
	for i, entry := range s.entries {
		if entry.kind == sidebarEntryTag && (i == 0 || s.entries[i-1].kind != sidebarEntryTag) {
			lines = append(lines, "", mutedStyle.Render("Tags"))
		}
		if entry.kind == sidebarEntrySettings {
			lines = append(lines, "")
		}
		label := truncatePlain(entry.label(), max(1, width-2))
		prefix := "  "
		if entry.active(view) {
			prefix = t.accent.Render("• ")
		}
		line := prefix + label
		if focused && i == s.cursor {
			line = t.selected.Render(padToWidth(prefix+label, width))
		}
		lines = append(lines, line)
	}
	lines = fitHeight(lines, max(1, height-1))
	if email != "" {
		lines = append(lines, mutedStyle.Render(truncatePlain(email, width)))
	}
	return strings.Join(lines, "\n")
}
