package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"jotter/internal/autosave"
	"jotter/internal/markup"
	"jotter/internal/notes"
	"jotter/internal/types"
)

type editorField int

const (
	editorFieldTitle editorField = iota
	editorFieldContent
	editorFieldTags
	editorFieldCount
)

// NoteEditor holds the editable copy of the selected note. Content is
// edited as markdown; the stored markup is converted on load.
type NoteEditor struct {
	noteID    string
	archived  bool
	updatedAt time.Time

	title    textinput.Model
	content  textarea.Model
	tagInput textinput.Model
	tags     []string
	field    editorField
	focused  bool
	preview  bool
	port     viewport.Model
}

func NewNoteEditor() *NoteEditor {
	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Note title"
	title.CharLimit = 200

	content := textarea.New()
	content.Placeholder = "Start writing..."
	content.ShowLineNumbers = false
	content.CharLimit = 0
	content.Prompt = ""

	tagInput := textinput.New()
	tagInput.Prompt = ""
	tagInput.Placeholder = "Add tags..."
	tagInput.CharLimit = 64

	return &NoteEditor{title: title, content: content, tagInput: tagInput, port: viewport.New(0, 0)}
}

// Load replaces the editor contents with note and returns the fields the
// autosave session should treat as saved.
func (e *NoteEditor) Load(note types.Note) autosave.Fields {
	e.noteID = note.ID
	e.archived = note.Archived
	e.updatedAt = note.UpdatedAt
	e.title.SetValue(note.Title)
	e.title.CursorEnd()
	e.content.SetValue(markup.ToMarkdown(note.Content))
	e.tagInput.SetValue("")
	e.tags = append([]string{}, note.Tags...)
	e.field = editorFieldTitle
	e.applyFocus()
	return e.Fields()
}

// Refresh picks up server-side metadata without touching typed text.
func (e *NoteEditor) Refresh(note types.Note) {
	if note.ID != e.noteID {
		return
	}
	e.archived = note.Archived
	e.updatedAt = note.UpdatedAt
}

func (e *NoteEditor) Clear() {
	e.noteID = ""
	e.archived = false
	e.updatedAt = time.Time{}
	e.title.SetValue("")
	e.content.SetValue("")
	e.tagInput.SetValue("")
	e.tags = nil
	e.preview = false
	e.port.SetContent("")
}

func (e *NoteEditor) NoteID() string { return e.noteID }

func (e *NoteEditor) Fields() autosave.Fields {
	return autosave.Fields{
		Title:   e.title.Value(),
		Content: e.content.Value(),
		Tags:    append([]string{}, e.tags...),
	}
}

func (e *NoteEditor) Tags() []string { return append([]string{}, e.tags...) }

func (e *NoteEditor) Focus() {
	e.focused = true
	e.applyFocus()
}

func (e *NoteEditor) Blur() {
	e.focused = false
	e.applyFocus()
}

func (e *NoteEditor) Field() editorField { return e.field }

func (e *NoteEditor) SetField(field editorField) {
	e.field = (field + editorFieldCount) % editorFieldCount
	e.applyFocus()
}

func (e *NoteEditor) NextField() { e.SetField(e.field + 1) }

func (e *NoteEditor) PrevField() { e.SetField(e.field - 1) }

func (e *NoteEditor) TogglePreview() {
	e.preview = !e.preview
	e.port.GotoTop()
	e.applyFocus()
}

func (e *NoteEditor) Previewing() bool { return e.preview }

func (e *NoteEditor) applyFocus() {
	e.title.Blur()
	e.content.Blur()
	e.tagInput.Blur()
	if !e.focused || e.preview {
		return
	}
	switch e.field {
	case editorFieldTitle:
		e.title.Focus()
	case editorFieldContent:
		e.content.Focus()
	case editorFieldTags:
		e.tagInput.Focus()
	}
}

// Update routes a message to the focused field. It reports whether the
// note's fields changed.
func (e *NoteEditor) Update(msg tea.Msg) (bool, tea.Cmd) {
	if e.noteID == "" {
		return false, nil
	}
	if e.preview {
		var cmd tea.Cmd
		e.port, cmd = e.port.Update(msg)
		return false, cmd
	}
	before := e.Fields()
	var cmd tea.Cmd
	switch e.field {
	case editorFieldTitle:
		e.title, cmd = e.title.Update(msg)
	case editorFieldContent:
		e.content, cmd = e.content.Update(msg)
	case editorFieldTags:
		cmd = e.updateTags(msg)
	}
	return !before.Equal(e.Fields()), cmd
}

// updateTags adds on enter or comma and removes the last tag on backspace
// over an empty input.
func (e *NoteEditor) updateTags(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			e.tags, _ = notes.AddTag(e.tags, e.tagInput.Value())
			e.tagInput.SetValue("")
			return nil
		case "backspace":
			if e.tagInput.Value() == "" {
				e.tags = notes.RemoveLastTag(e.tags)
				return nil
			}
		}
	}
	var cmd tea.Cmd
	e.tagInput, cmd = e.tagInput.Update(msg)
	complete, pending := notes.SplitTagInput(e.tagInput.Value())
	if len(complete) > 0 || strings.Contains(e.tagInput.Value(), ",") {
		for _, tag := range complete {
			e.tags, _ = notes.AddTag(e.tags, tag)
		}
		e.tagInput.SetValue(strings.TrimLeft(pending, " "))
	}
	return cmd
}

func (e *NoteEditor) Resize(width, height int) {
	width = max(10, width)
	e.title.Width = width
	e.tagInput.Width = width
	e.content.SetWidth(width)
	e.content.SetHeight(max(3, height))
}

// saveStatus renders the autosave indicator.
func saveStatus(status autosave.Status, updatedAt time.Time) string {
	switch status.State {
	case autosave.Saving:
		return warningStyle.Render("Saving...")
	case autosave.Dirty:
		if status.Err != nil && len(status.FieldErrors) == 0 {
			return errorStyle.Render("Save failed, will retry on next save")
		}
		return warningStyle.Render("Unsaved changes")
	}
	edited := updatedAt
	if status.SavedAt.After(edited) {
		edited = status.SavedAt
	}
	if edited.IsZero() {
		return ""
	}
	return mutedStyle.Render("Last edited " + markup.FormatDate(edited))
}

func (e *NoteEditor) View(width, height int, status autosave.Status, query string, t theme) string {
	if e.noteID == "" {
		lines := []string{"", mutedStyle.Render("Select a note to view or edit"), "", helpStyle.Render("ctrl+n creates a new note")}
		return strings.Join(fitHeight(lines, height), "\n")
	}

	header := saveStatus(status, e.updatedAt)
	if e.archived {
		header = badgeStyle.Render("Archived") + " " + header
	}
	lines := []string{truncateToWidth(header, width)}

	titleLabel := "Title"
	if e.focused && e.field == editorFieldTitle && !e.preview {
		titleLabel = t.accent.Render("› Title")
	}
	lines = append(lines, titleLabel)
	if e.preview {
		lines = append(lines, t.title.Render(truncateToWidth(e.title.Value(), width)))
	} else {
		lines = append(lines, e.title.View())
	}
	if msg := status.FieldErrors[notes.FieldTitle]; msg != "" {
		lines = append(lines, errorStyle.Render(truncateToWidth(msg, width)))
	}

	tagLabel := "Tags"
	if e.focused && e.field == editorFieldTags && !e.preview {
		tagLabel = t.accent.Render("› Tags")
	}
	tagLine := renderTags(e.tags, len(e.tags), t)
	if !e.preview {
		tagLine = strings.TrimSpace(tagLine + " " + e.tagInput.View())
	}
	lines = append(lines, tagLabel, truncateToWidth(tagLine, width))

	contentLabel := "Content"
	if e.preview {
		contentLabel = "Preview"
	} else if e.focused && e.field == editorFieldContent {
		contentLabel = t.accent.Render("› Content")
	}
	lines = append(lines, contentLabel)
	contentErr := status.FieldErrors[notes.FieldContent]
	remaining := height - len(lines)
	if contentErr != "" {
		remaining--
	}
	if e.preview {
		e.port.Width = width
		e.port.Height = max(1, remaining)
		e.port.SetContent(renderPreview(e.content.Value(), query, width, t.font.Raw))
		lines = append(lines, e.port.View())
	} else {
		e.content.SetHeight(max(3, remaining))
		lines = append(lines, e.content.View())
	}
	if contentErr != "" {
		lines = append(lines, errorStyle.Render(truncateToWidth(contentErr, width)))
	}
	return strings.Join(lines, "\n")
}
