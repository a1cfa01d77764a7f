package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"jotter/internal/autosave"
	"jotter/internal/logging"
	"jotter/internal/markup"
	"jotter/internal/notes"
)

const quitSaveTimeout = 3 * time.Second

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.reduceKey(msg)
	case tea.MouseMsg:
		if handled, choice := m.confirm.HandleMouse(msg, m.width, m.height); handled {
			return m, m.resolveConfirm(choice)
		}
		return m, nil
	case authResultMsg:
		return m, m.reduceAuthResult(msg)
	case signedOutMsg:
		m.reduceSignedOut(msg)
		return m, nil
	case notesLoadedMsg:
		m.reduceNotesLoaded(msg)
		return m, nil
	case noteCreatedMsg:
		m.reduceNoteCreated(msg)
		return m, nil
	case noteArchivedMsg:
		m.reduceNoteArchived(msg)
		return m, nil
	case noteDeletedMsg:
		m.reduceNoteDeleted(msg)
		return m, nil
	case autosaveChangedMsg:
		m.refreshVisible()
		return m, nil
	case saveResultMsg:
		m.reduceSaveResult(msg)
		return m, nil
	case searchDebounceMsg:
		if msg.seq == m.searchSeq {
			m.applySearch()
		}
		return m, nil
	case copiedMsg:
		if msg.err != nil {
			m.setError("copy failed", msg.err)
		} else {
			m.setStatus("copied note to " + msg.method.String() + " clipboard")
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) reduceKey(msg tea.KeyMsg) tea.Cmd {
	if m.keys.Matches(msg, KeyCommandQuit) {
		m.flushAutosave()
		return tea.Quit
	}
	if m.screen == screenAuth {
		return m.reduceAuthKey(msg)
	}
	if m.confirm.IsOpen() {
		_, choice := m.confirm.HandleKey(msg)
		return m.resolveConfirm(choice)
	}
	if m.settings.IsOpen() {
		if m.settings.HandleKey(msg, m.prefs) {
			m.theme = themeFromPrefs(m.prefs)
		}
		return nil
	}
	if m.focus == focusSearch {
		return m.reduceSearchKey(msg)
	}
	if handled, cmd := m.reduceGlobalKey(msg); handled {
		return cmd
	}
	switch m.focus {
	case focusSidebar:
		return m.reduceSidebarKey(msg)
	case focusEditor:
		return m.reduceEditorKey(msg)
	default:
		return m.reduceListKey(msg)
	}
}

func (m *Model) reduceAuthKey(msg tea.KeyMsg) tea.Cmd {
	submit, cmd := m.authForm.Update(msg)
	if !submit {
		return cmd
	}
	if errs := m.authForm.Validate(); errs != nil {
		return nil
	}
	if m.auth == nil {
		m.authForm.Finish(errors.New("no auth service configured"))
		return nil
	}
	email, password := m.authForm.Credentials()
	m.authForm.BeginSubmit()
	return authenticateCmd(m.auth, m.authForm.Mode(), email, password)
}

// reduceGlobalKey handles the ctrl chords that work from any pane.
func (m *Model) reduceGlobalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case m.keys.Matches(msg, KeyCommandNotesNew):
		return true, m.createNote()
	case m.keys.Matches(msg, KeyCommandNotesSave):
		return true, m.saveNow()
	case m.keys.Matches(msg, KeyCommandNotesDelete):
		return true, m.requestDelete()
	case m.keys.Matches(msg, KeyCommandNotesArchive):
		return true, m.toggleArchive()
	case m.keys.Matches(msg, KeyCommandNotesCopy):
		return true, m.copySelected()
	case m.keys.Matches(msg, KeyCommandNotesPreview):
		if m.editor.NoteID() != "" {
			m.editor.TogglePreview()
		}
		return true, nil
	case m.keys.Matches(msg, KeyCommandNotesRefresh):
		return true, loadNotesCmd(m.controller, m.sessionUserID())
	case m.keys.Matches(msg, KeyCommandToggleSidebar):
		m.layout.ToggleSidebar()
		if m.focus == focusSidebar && !m.layout.SidebarVisible() {
			m.setFocus(focusList)
		}
		return true, nil
	case m.keys.Matches(msg, KeyCommandSettings):
		m.settings.Open()
		return true, nil
	case m.keys.Matches(msg, KeyCommandSignOut):
		if m.auth == nil {
			return true, nil
		}
		m.setStatus("signing out...")
		return true, signOutCmd(m.auth)
	}
	if m.focus == focusEditor {
		return false, nil
	}
	switch {
	case m.keys.Matches(msg, KeyCommandOpenSearch):
		m.setFocus(focusSearch)
		return true, nil
	case m.keys.Matches(msg, KeyCommandNextPane):
		m.cycleFocus(1)
		return true, nil
	case m.keys.Matches(msg, KeyCommandPrevPane):
		m.cycleFocus(-1)
		return true, nil
	}
	return false, nil
}

func (m *Model) reduceSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.searchSeq++
		m.applySearch()
		m.setFocus(focusList)
		return nil
	case "esc":
		m.setFocus(focusList)
		return nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return cmd
	}
	m.searchSeq++
	return tea.Batch(cmd, searchDebounceCmd(m.searchSeq, m.searchDebounce))
}

func (m *Model) reduceSidebarKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.keys.Matches(msg, KeyCommandUp):
		m.sidebar.Move(-1)
	case m.keys.Matches(msg, KeyCommandDown):
		m.sidebar.Move(1)
	case m.keys.Matches(msg, KeyCommandOpen):
		m.activateSidebarEntry(m.sidebar.Current())
	}
	return nil
}

func (m *Model) activateSidebarEntry(entry sidebarEntry) {
	switch entry.kind {
	case sidebarEntryAll:
		m.view.ShowAll()
		m.search.SetValue("")
		m.searchSeq++
	case sidebarEntryArchived:
		m.view.ShowArchived()
	case sidebarEntryTag:
		m.view.SelectTag(entry.tag)
	case sidebarEntrySettings:
		m.settings.Open()
		return
	}
	m.refreshVisible()
	m.setFocus(focusList)
}

func (m *Model) reduceListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.keys.Matches(msg, KeyCommandUp):
		m.moveSelection(-1)
	case m.keys.Matches(msg, KeyCommandDown):
		m.moveSelection(1)
	case m.keys.Matches(msg, KeyCommandOpen):
		m.openSelected()
	}
	return nil
}

func (m *Model) moveSelection(delta int) {
	if len(m.visible) == 0 {
		return
	}
	index := -1
	for i, note := range m.visible {
		if note.ID == m.view.SelectedID {
			index = i
			break
		}
	}
	next := max(0, min(len(m.visible)-1, index+delta))
	if index < 0 {
		next = 0
	}
	m.view.Select(m.visible[next].ID)
	m.syncEditor()
}

func (m *Model) reduceEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.keys.Matches(msg, KeyCommandBack):
		if m.editor.Previewing() {
			m.editor.TogglePreview()
			return nil
		}
		m.layout.Back()
		m.setFocus(focusList)
		return nil
	case m.keys.Matches(msg, KeyCommandNextPane):
		if m.editor.Field() == editorFieldTags && !m.layout.Compact() {
			m.cycleFocus(1)
			return nil
		}
		m.editor.NextField()
		return nil
	case m.keys.Matches(msg, KeyCommandPrevPane):
		if m.editor.Field() == editorFieldTitle && !m.layout.Compact() {
			m.cycleFocus(-1)
			return nil
		}
		m.editor.PrevField()
		return nil
	}
	changed, cmd := m.editor.Update(msg)
	if changed {
		m.autosave.Edit(m.editor.Fields())
	}
	return cmd
}

func (m *Model) createNote() tea.Cmd {
	if m.sessionUserID() == "" {
		return nil
	}
	m.setStatus("creating note...")
	return createNoteCmd(m.controller, notes.NewNoteDraft())
}

func (m *Model) saveNow() tea.Cmd {
	if m.editor.NoteID() == "" {
		return nil
	}
	if m.autosave.Status().InFlight {
		m.setStatus("save already in progress")
		return nil
	}
	return saveNowCmd(m.autosave)
}

func (m *Model) requestDelete() tea.Cmd {
	note, ok := m.selectedNote()
	if !ok {
		return nil
	}
	if !m.confirmDelete {
		return deleteNoteCmd(m.controller, note.ID)
	}
	m.pendingDeleteID = note.ID
	title := note.Title
	if title == "" {
		title = "Untitled"
	}
	m.confirm.Open("Delete note", fmt.Sprintf("Delete %q? This cannot be undone.", title), "Delete", "Cancel")
	return nil
}

func (m *Model) resolveConfirm(choice confirmChoice) tea.Cmd {
	switch choice {
	case confirmChoiceConfirm:
		id := m.pendingDeleteID
		m.pendingDeleteID = ""
		m.confirm.Close()
		if id == "" {
			return nil
		}
		return deleteNoteCmd(m.controller, id)
	case confirmChoiceCancel:
		m.pendingDeleteID = ""
		m.confirm.Close()
	}
	return nil
}

func (m *Model) toggleArchive() tea.Cmd {
	note, ok := m.selectedNote()
	if !ok {
		return nil
	}
	return archiveNoteCmd(m.controller, note.ID, !note.Archived)
}

func (m *Model) copySelected() tea.Cmd {
	note, ok := m.selectedNote()
	if !ok {
		return nil
	}
	body := m.editor.Fields().Content
	title := m.editor.Fields().Title
	if m.editor.NoteID() != note.ID {
		body = markup.ToMarkdown(note.Content)
		title = note.Title
	}
	text := "# " + title
	if body != "" {
		text += "\n\n" + body
	}
	return copyTextCmd(text)
}

func (m *Model) reduceAuthResult(msg authResultMsg) tea.Cmd {
	m.authForm.Finish(msg.err)
	if msg.err != nil {
		m.logger.Info("auth_failed", logging.F("error", msg.err))
		return nil
	}
	m.resetView()
	m.enterNotes()
	if msg.session != nil {
		m.setStatus("signed in as " + msg.session.User.Email)
	}
	return loadNotesCmd(m.controller, m.sessionUserID())
}

func (m *Model) reduceSignedOut(msg signedOutMsg) {
	if msg.err != nil {
		m.logger.Warn("sign_out_failed", logging.F("error", msg.err))
	}
	m.resetView()
	// No owner: clears the collection without a remote call.
	_ = m.controller.Load(context.Background(), "")
	m.screen = screenAuth
	m.authForm.Reset()
	m.setStatus("signed out")
}

func (m *Model) reduceNotesLoaded(msg notesLoadedMsg) {
	if msg.ownerID != m.sessionUserID() {
		return
	}
	if msg.err != nil {
		m.setError("load failed", msg.err)
	}
	m.refreshVisible()
}

func (m *Model) reduceNoteCreated(msg noteCreatedMsg) {
	if msg.err != nil {
		m.setError("create failed", msg.err)
		return
	}
	m.view.AfterCreate(msg.note.ID)
	m.search.SetValue("")
	m.searchSeq++
	m.refreshVisible()
	m.openSelected()
	m.editor.SetField(editorFieldTitle)
	m.setStatus("note created")
}

func (m *Model) reduceNoteArchived(msg noteArchivedMsg) {
	if msg.err != nil {
		m.setError("archive failed", msg.err)
		return
	}
	m.view.AfterArchive(msg.note.Archived)
	m.refreshVisible()
	if msg.note.Archived {
		m.setStatus("note archived")
	} else {
		m.setStatus("note restored")
	}
}

func (m *Model) reduceNoteDeleted(msg noteDeletedMsg) {
	if msg.err != nil {
		m.setError("delete failed", msg.err)
		return
	}
	if m.view.SelectedID == msg.id {
		m.view.ClearSelection()
	}
	m.layout.Deselect()
	m.refreshVisible()
	if m.focus == focusEditor {
		m.setFocus(focusList)
	}
	m.setStatus("note deleted")
}

func (m *Model) reduceSaveResult(msg saveResultMsg) {
	switch {
	case msg.err == nil:
		m.setStatus("saved")
	case errors.Is(msg.err, autosave.ErrSaveInFlight):
		m.setStatus("save already in progress")
	case errors.Is(msg.err, notes.ErrValidation):
		m.status = "cannot save: " + describeError(msg.err)
		m.statusErr = true
	default:
		m.setError("save failed", msg.err)
	}
	m.refreshVisible()
}

// flushAutosave saves pending edits before exit. Validation failures and
// remote errors are logged; the edits are dropped.
func (m *Model) flushAutosave() {
	if m.autosave.State() == autosave.Dirty {
		ctx, cancel := context.WithTimeout(context.Background(), quitSaveTimeout)
		err := m.autosave.SaveNow(ctx)
		cancel()
		if err != nil {
			m.logger.Warn("quit_save_failed", logging.F("note_id", m.editor.NoteID()), logging.F("error", err))
		}
	}
	m.autosave.Close()
}
