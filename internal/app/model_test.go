package app

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"jotter/internal/autosave"
	"jotter/internal/notes"
	"jotter/internal/types"
)

func TestInitWithoutSessionShowsAuth(t *testing.T) {
	env := newTestEnv(t, false)
	env.drain(t, env.model.Init())
	if env.model.screen != screenAuth {
		t.Fatalf("expected auth screen, got %v", env.model.screen)
	}
	if !strings.Contains(env.model.View(), "Sign in to jotter") {
		t.Fatalf("expected sign-in form in view")
	}
}

func TestInitLoadsNotesAndSelectsFirst(t *testing.T) {
	env := newTestEnv(t, true)
	env.seed(t, types.NoteDraft{Title: "Alpha", Content: "<p>first</p>"})
	env.seed(t, types.NoteDraft{Title: "Beta", Content: "<p>second</p>", Tags: []string{"work"}})

	env.drain(t, env.model.Init())
	m := env.model
	if m.screen != screenNotes {
		t.Fatalf("expected notes screen")
	}
	if len(m.visible) != 2 {
		t.Fatalf("expected 2 visible notes, got %d", len(m.visible))
	}
	if m.view.SelectedID != m.visible[0].ID {
		t.Fatalf("expected first visible note selected, got %q", m.view.SelectedID)
	}
	if m.editor.NoteID() != m.view.SelectedID {
		t.Fatalf("expected editor to hold the selected note")
	}
	if got := m.sidebar.Entries(); len(got) != 4 || got[2].tag != "work" {
		t.Fatalf("expected tag entry for work, got %+v", got)
	}
	if m.autosave.State() != autosave.Clean {
		t.Fatalf("expected clean autosave state, got %v", m.autosave.State())
	}
}

func TestSignInFromForm(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	if _, err := env.client.SignUp(ctx, "ada@example.com", "secret-pass"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	env.seed(t, types.NoteDraft{Title: "Alpha"})
	if err := env.client.SignOut(ctx); err != nil {
		t.Fatalf("signout: %v", err)
	}

	m := env.model
	m.authForm.email.SetValue("ada@example.com")
	m.authForm.password.SetValue("wrong-pass")
	m.authForm.focus = 1
	env.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenAuth {
		t.Fatalf("expected to stay on auth screen after bad credentials")
	}
	if got := m.authForm.RemoteError(); got != "Invalid email or password" {
		t.Fatalf("unexpected remote error %q", got)
	}

	m.authForm.password.SetValue("secret-pass")
	env.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenNotes {
		t.Fatalf("expected notes screen after sign in")
	}
	if len(m.visible) != 1 || m.visible[0].Title != "Alpha" {
		t.Fatalf("expected the user's note to load, got %+v", m.visible)
	}
}

func TestSignInFormBlocksInvalidInput(t *testing.T) {
	env := newTestEnv(t, false)
	m := env.model
	m.authForm.email.SetValue("not-an-email")
	m.authForm.password.SetValue("123")
	m.authForm.focus = 1
	env.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if m.authForm.Submitting() {
		t.Fatalf("expected no submission with invalid input")
	}
	if got := m.authForm.FieldError(authFieldEmail); got != "Please enter a valid email" {
		t.Fatalf("unexpected email error %q", got)
	}
	if got := m.authForm.FieldError(authFieldPassword); got != "Password must be at least 6 characters" {
		t.Fatalf("unexpected password error %q", got)
	}
}

func TestCreateNoteResetsViewAndOpensEditor(t *testing.T) {
	env := newTestEnv(t, true)
	env.seed(t, types.NoteDraft{Title: "Alpha", Tags: []string{"x"}})
	env.drain(t, env.model.Init())
	m := env.model
	m.view.ShowArchived()
	m.view.SetQuery("zzz")
	m.search.SetValue("zzz")
	m.refreshVisible()

	env.key(t, ctrlKey(tea.KeyCtrlN))
	if m.view.Filter != (notes.Filter{}) {
		t.Fatalf("expected filters cleared, got %+v", m.view.Filter)
	}
	if m.search.Value() != "" {
		t.Fatalf("expected search cleared")
	}
	if m.focus != focusEditor {
		t.Fatalf("expected editor focus, got %v", m.focus)
	}
	note, ok := m.selectedNote()
	if !ok || note.Title != "Untitled Note" {
		t.Fatalf("expected new note selected, got %+v", note)
	}
	if m.editor.Fields().Title != "Untitled Note" {
		t.Fatalf("expected editor to load the new note")
	}
	if len(m.visible) != 2 || m.visible[0].ID != note.ID {
		t.Fatalf("expected new note first in list")
	}
}

func TestEditorAutosaveAfterQuietPeriod(t *testing.T) {
	env := newTestEnv(t, true)
	seeded := env.seed(t, types.NoteDraft{Title: "Alpha", Content: "<p>body</p>"})
	env.drain(t, env.model.Init())
	m := env.model
	env.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if m.focus != focusEditor {
		t.Fatalf("expected editor focus after enter")
	}

	env.typeText(t, "!!")
	if m.autosave.State() != autosave.Dirty {
		t.Fatalf("expected dirty after typing, got %v", m.autosave.State())
	}
	if fired := env.clock.fire(); fired != 1 {
		t.Fatalf("expected exactly one armed timer, fired %d", fired)
	}
	if m.autosave.State() != autosave.Clean {
		t.Fatalf("expected clean after autosave, got %v (err %v)", m.autosave.State(), m.autosave.Status().Err)
	}
	m.Update(autosaveChangedMsg{})
	note, ok := m.controller.Note(seeded.ID)
	if !ok || note.Title != "Alpha!!" {
		t.Fatalf("expected saved title, got %+v", note)
	}
	if note.Content != "<p>body</p>" {
		t.Fatalf("expected content round trip, got %q", note.Content)
	}
}

func TestManualSaveBlockedByEmptyTitle(t *testing.T) {
	env := newTestEnv(t, true)
	seeded := env.seed(t, types.NoteDraft{Title: "A", Content: "<p>body</p>"})
	env.drain(t, env.model.Init())
	m := env.model
	env.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	m.editor.title.SetCursor(1)
	env.key(t, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.editor.Fields().Title != "" {
		t.Fatalf("expected empty title, got %q", m.editor.Fields().Title)
	}

	env.key(t, ctrlKey(tea.KeyCtrlS))
	if !m.statusErr || !strings.Contains(m.status, notes.MsgTitleRequired) {
		t.Fatalf("expected title validation status, got %q", m.status)
	}
	if note, _ := m.controller.Note(seeded.ID); note.Title != "A" {
		t.Fatalf("expected remote untouched, got %q", note.Title)
	}

	env.typeText(t, "B")
	env.key(t, ctrlKey(tea.KeyCtrlS))
	if m.status != "saved" {
		t.Fatalf("expected saved status, got %q", m.status)
	}
	if note, _ := m.controller.Note(seeded.ID); note.Title != "B" {
		t.Fatalf("expected saved title B, got %q", note.Title)
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	env := newTestEnv(t, true)
	first := env.seed(t, types.NoteDraft{Title: "Alpha"})
	env.seed(t, types.NoteDraft{Title: "Beta"})
	env.drain(t, env.model.Init())
	m := env.model
	m.view.Select(first.ID)
	m.syncEditor()

	env.key(t, ctrlKey(tea.KeyCtrlD))
	if !m.confirm.IsOpen() {
		t.Fatalf("expected confirmation prompt")
	}
	env.key(t, tea.KeyMsg{Type: tea.KeyEsc})
	if m.confirm.IsOpen() || len(m.controller.Notes()) != 2 {
		t.Fatalf("expected cancel to keep the note")
	}

	env.key(t, ctrlKey(tea.KeyCtrlD))
	env.key(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if _, ok := m.controller.Note(first.ID); ok {
		t.Fatalf("expected note deleted")
	}
	if m.view.SelectedID == first.ID || m.view.SelectedID == "" {
		t.Fatalf("expected selection to move to the remaining note, got %q", m.view.SelectedID)
	}
	if m.editor.NoteID() != m.view.SelectedID {
		t.Fatalf("expected editor to follow the selection")
	}
}

func TestArchiveClearsSelectionInActiveView(t *testing.T) {
	env := newTestEnv(t, true)
	first := env.seed(t, types.NoteDraft{Title: "Alpha"})
	second := env.seed(t, types.NoteDraft{Title: "Beta"})
	env.drain(t, env.model.Init())
	m := env.model
	m.view.Select(first.ID)
	m.syncEditor()

	env.key(t, ctrlKey(tea.KeyCtrlE))
	note, ok := m.controller.Note(first.ID)
	if !ok || !note.Archived {
		t.Fatalf("expected note archived, got %+v", note)
	}
	if m.view.SelectedID != second.ID {
		t.Fatalf("expected selection on remaining active note, got %q", m.view.SelectedID)
	}
	for _, visible := range m.visible {
		if visible.Archived {
			t.Fatalf("archived note leaked into the active view")
		}
	}

	m.activateSidebarEntry(sidebarEntry{kind: sidebarEntryArchived})
	if len(m.visible) != 1 || m.visible[0].ID != first.ID {
		t.Fatalf("expected archived view to show the archived note, got %+v", m.visible)
	}
	if m.view.HeaderTitle() != "Archived Notes" {
		t.Fatalf("unexpected header %q", m.view.HeaderTitle())
	}
}

func TestSearchDebounceAppliesLatestOnly(t *testing.T) {
	env := newTestEnv(t, true)
	env.seed(t, types.NoteDraft{Title: "Alpha"})
	env.seed(t, types.NoteDraft{Title: "Gamma"})
	env.drain(t, env.model.Init())
	m := env.model

	env.key(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if m.focus != focusSearch {
		t.Fatalf("expected search focus")
	}
	env.typeText(t, "alp")
	if m.view.Filter.Query != "" {
		t.Fatalf("expected query to wait for the debounce")
	}
	m.Update(searchDebounceMsg{seq: m.searchSeq - 1})
	if m.view.Filter.Query != "" {
		t.Fatalf("expected stale debounce to be ignored")
	}
	m.Update(searchDebounceMsg{seq: m.searchSeq})
	if m.view.Filter.Query != "alp" {
		t.Fatalf("expected query applied, got %q", m.view.Filter.Query)
	}
	if len(m.visible) != 1 || m.visible[0].Title != "Alpha" {
		t.Fatalf("expected only Alpha, got %+v", m.visible)
	}
}

func TestSignOutClearsEverything(t *testing.T) {
	env := newTestEnv(t, true)
	env.seed(t, types.NoteDraft{Title: "Alpha", Tags: []string{"x"}})
	env.drain(t, env.model.Init())
	m := env.model
	m.view.SelectTag("x")
	m.refreshVisible()

	env.key(t, ctrlKey(tea.KeyCtrlO))
	if m.screen != screenAuth {
		t.Fatalf("expected auth screen after sign out")
	}
	if len(m.controller.Notes()) != 0 || m.controller.OwnerID() != "" {
		t.Fatalf("expected collection cleared")
	}
	if m.view != (notes.View{}) {
		t.Fatalf("expected view reset, got %+v", m.view)
	}
	if m.editor.NoteID() != "" {
		t.Fatalf("expected editor cleared")
	}
	if env.client.Session() != nil {
		t.Fatalf("expected client session cleared")
	}
}

func TestCompactLayoutSwapsListAndEditor(t *testing.T) {
	env := newTestEnv(t, true)
	env.seed(t, types.NoteDraft{Title: "Alpha"})
	env.drain(t, env.model.Init())
	m := env.model
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !m.layout.Compact() {
		t.Fatalf("expected compact layout at 100 columns")
	}
	if m.layout.SidebarVisible() || !m.layout.EditorVisible() || m.layout.ListVisible() {
		t.Fatalf("expected the selected note's editor after entering compact layout")
	}
	if m.focus != focusEditor {
		t.Fatalf("expected focus to follow the editor, got %v", m.focus)
	}

	env.key(t, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.layout.ListVisible() || m.focus != focusList {
		t.Fatalf("expected back to return to the list")
	}
	if view := m.View(); !strings.Contains(view, "All Notes") {
		t.Fatalf("expected list header in compact view")
	}

	env.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.layout.EditorVisible() || m.layout.ListVisible() {
		t.Fatalf("expected editor to replace the list")
	}
}

func TestCompactWithoutNotesKeepsList(t *testing.T) {
	env := newTestEnv(t, true)
	env.drain(t, env.model.Init())
	m := env.model
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !m.layout.SidebarVisible() || !m.layout.ListVisible() {
		t.Fatalf("expected list to stay visible with nothing selected")
	}
}

func TestEditorTagInput(t *testing.T) {
	env := newTestEnv(t, true)
	env.seed(t, types.NoteDraft{Title: "Alpha"})
	env.drain(t, env.model.Init())
	m := env.model
	env.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	m.editor.SetField(editorFieldTags)

	env.typeText(t, "Work,")
	if got := m.editor.Tags(); len(got) != 1 || got[0] != "work" {
		t.Fatalf("expected work tag, got %v", got)
	}
	env.typeText(t, "WORK")
	env.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.editor.Tags(); len(got) != 1 {
		t.Fatalf("expected duplicate ignored, got %v", got)
	}
	env.typeText(t, "home")
	env.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	env.key(t, tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.editor.Tags(); len(got) != 1 || got[0] != "work" {
		t.Fatalf("expected backspace to drop last tag, got %v", got)
	}
	if m.autosave.State() != autosave.Dirty {
		t.Fatalf("expected tag edits to mark dirty")
	}
}

func TestSettingsPersistAndRetheme(t *testing.T) {
	env := newTestEnv(t, true)
	store := &memoryPrefsStore{}
	env.model.prefs = newTestPrefs(store)
	m := env.model

	env.key(t, ctrlKey(tea.KeyCtrlT))
	if !m.settings.IsOpen() {
		t.Fatalf("expected settings open")
	}
	env.key(t, tea.KeyMsg{Type: tea.KeyRight})
	if m.prefs.ColorName() != "purple" || store.saved.Color != "purple" {
		t.Fatalf("expected purple persisted, got %q / %q", m.prefs.ColorName(), store.saved.Color)
	}
	if m.theme.palette.Primary != m.prefs.Palette().Primary {
		t.Fatalf("expected theme to follow the palette")
	}
	env.key(t, tea.KeyMsg{Type: tea.KeyDown})
	env.key(t, tea.KeyMsg{Type: tea.KeyLeft})
	if m.prefs.FontName() != "mono" {
		t.Fatalf("expected font to wrap to mono, got %q", m.prefs.FontName())
	}
	env.key(t, tea.KeyMsg{Type: tea.KeyEsc})
	if m.settings.IsOpen() {
		t.Fatalf("expected settings closed")
	}
}
