package notes

import (
	"fmt"
	"strings"

	"jotter/internal/types"
)

// View combines the filter with the current selection and implements the
// navigation rules of the sidebar.
type View struct {
	Filter     Filter
	SelectedID string
}

// ShowAll returns to active notes and clears the tag and query.
func (v *View) ShowAll() {
	v.Filter = Filter{}
}

// ShowArchived switches to archived notes and clears the tag.
func (v *View) ShowArchived() {
	v.Filter.ShowArchived = true
	v.Filter.Tag = ""
}

func (v *View) SelectTag(tag string) {
	v.Filter.Tag = tag
}

func (v *View) SetQuery(query string) {
	v.Filter.Query = query
}

func (v *View) Select(id string) {
	v.SelectedID = id
}

func (v *View) ClearSelection() {
	v.SelectedID = ""
}

// AfterCreate focuses a freshly created note in the active view.
func (v *View) AfterCreate(id string) {
	v.Filter = Filter{}
	v.SelectedID = id
}

// AfterArchive clears the selection when a note leaves the active view.
func (v *View) AfterArchive(archived bool) {
	if archived && !v.Filter.ShowArchived {
		v.SelectedID = ""
	}
}

// Reset clears everything, used on sign-out.
func (v *View) Reset() {
	*v = View{}
}

// Visible filters list and reconciles the selection against the result.
func (v *View) Visible(list []types.Note) []types.Note {
	visible := Apply(list, v.Filter)
	v.SelectedID = ReconcileSelection(v.SelectedID, visible)
	return visible
}

// HeaderTitle names the current view.
func (v View) HeaderTitle() string {
	switch {
	case v.Filter.ShowArchived:
		return "Archived Notes"
	case v.Filter.Tag != "":
		return "#" + v.Filter.Tag
	default:
		return "All Notes"
	}
}

func (v View) SearchPlaceholder() string {
	if v.Filter.ShowArchived {
		return "Search archived notes..."
	}
	return "Search notes..."
}

// CountLabel renders "1 note" or "N notes".
func CountLabel(n int) string {
	if n == 1 {
		return "1 note"
	}
	return fmt.Sprintf("%d notes", n)
}

// EmptyMessage is shown when the visible set is empty.
func EmptyMessage(query string) (title, hint string) {
	if strings.TrimSpace(query) != "" {
		return "No notes found", "Try adjusting your search terms"
	}
	return "No notes found", "Create your first note to get started"
}

// NewNoteDraft is the draft used by the create action.
func NewNoteDraft() types.NoteDraft {
	return types.NoteDraft{Title: "Untitled Note", Tags: []string{}}
}
