package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"jotter/internal/autosave"
	"jotter/internal/layout"
	"jotter/internal/logging"
	"jotter/internal/markup"
	"jotter/internal/notes"
	"jotter/internal/prefs"
	"jotter/internal/types"
)

const (
	defaultCellWidth      = 8
	defaultSearchDebounce = 300 * time.Millisecond
	sidebarWidth          = 24
	listWidth             = 40
	compactSidebarWidth   = 20
	footerHeight          = 2
)

type screen int

const (
	screenAuth screen = iota
	screenNotes
)

type focusArea int

const (
	focusSidebar focusArea = iota
	focusList
	focusEditor
	focusSearch
)

func (f focusArea) String() string {
	switch f {
	case focusSidebar:
		return "sidebar"
	case focusEditor:
		return "editor"
	case focusSearch:
		return "search"
	default:
		return "list"
	}
}

// Options wires the model to its collaborators.
type Options struct {
	Auth           AuthAPI
	Remote         notes.Remote
	Preferences    *prefs.Preferences
	Logger         logging.Logger
	Keybindings    *Keybindings
	CellWidth      int
	ConfirmDelete  bool
	SearchDebounce time.Duration
	AutosaveQuiet  time.Duration
	AutosaveClock  autosave.Clock
}

// notifier forwards messages from background goroutines into the running
// program. It is a no-op until a program is attached.
type notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (n *notifier) attach(send func(tea.Msg)) {
	n.mu.Lock()
	n.send = send
	n.mu.Unlock()
}

func (n *notifier) notify(msg tea.Msg) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		// Program.Send blocks until Update reads it, and Update may be
		// the caller.
		go send(msg)
	}
}

type Model struct {
	auth       AuthAPI
	controller *notes.Controller
	autosave   *autosave.Scheduler
	prefs      *prefs.Preferences
	logger     logging.Logger
	keys       *Keybindings
	notifier   *notifier

	cellWidth      int
	confirmDelete  bool
	searchDebounce time.Duration

	screen   screen
	authForm *AuthForm
	view     notes.View
	visible  []types.Note
	layout   layout.State
	focus    focusArea

	sidebar  *Sidebar
	editor   *NoteEditor
	settings *SettingsPanel
	confirm  *ConfirmController
	search   textinput.Model
	spinner  spinner.Model
	help     help.Model
	theme    theme

	searchSeq       int
	pendingDeleteID string
	status          string
	statusErr       bool
	width           int
	height          int
}

func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	keys := opts.Keybindings
	if keys == nil {
		keys = DefaultKeybindings()
	}
	cellWidth := opts.CellWidth
	if cellWidth <= 0 {
		cellWidth = defaultCellWidth
	}
	debounce := opts.SearchDebounce
	if debounce <= 0 {
		debounce = defaultSearchDebounce
	}

	search := textinput.New()
	search.Prompt = "⌕ "
	search.Placeholder = "Search notes..."
	search.CharLimit = 200

	loader := spinner.New()
	loader.Spinner = spinner.Line

	controller := notes.NewController(opts.Remote, logger.With(logging.F("component", "notes")))
	n := &notifier{}
	m := &Model{
		auth:           opts.Auth,
		controller:     controller,
		prefs:          opts.Preferences,
		logger:         logger,
		keys:           keys,
		notifier:       n,
		cellWidth:      cellWidth,
		confirmDelete:  opts.ConfirmDelete,
		searchDebounce: debounce,
		authForm:       NewAuthForm(),
		layout:         layout.New(0, false),
		focus:          focusList,
		sidebar:        NewSidebar(),
		editor:         NewNoteEditor(),
		settings:       NewSettingsPanel(),
		confirm:        NewConfirmController(),
		search:         search,
		spinner:        loader,
		help:           help.New(),
		theme:          themeFromPrefs(opts.Preferences),
	}
	m.autosave = autosave.New(saveFieldsFunc(controller), autosave.Options{
		QuietPeriod: opts.AutosaveQuiet,
		Clock:       opts.AutosaveClock,
		Logger:      logger.With(logging.F("component", "autosave")),
		OnChange: func(autosave.Status) {
			n.notify(autosaveChangedMsg{})
		},
	})
	return m
}

// saveFieldsFunc persists editor fields through the controller. Content
// is stored as markup.
func saveFieldsFunc(controller *notes.Controller) autosave.SaveFunc {
	return func(ctx context.Context, id string, fields autosave.Fields) error {
		content, err := markup.ToHTML(fields.Content)
		if err != nil {
			return err
		}
		title := strings.TrimSpace(fields.Title)
		tags := notes.NormalizeTags(fields.Tags)
		_, err = controller.Update(ctx, id, types.NotePatch{
			Title:   &title,
			Content: &content,
			Tags:    &tags,
		})
		return err
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if owner := m.sessionUserID(); owner != "" {
		m.enterNotes()
		cmds = append(cmds, loadNotesCmd(m.controller, owner))
	}
	return tea.Batch(cmds...)
}

func (m *Model) sessionUserID() string {
	if m.auth == nil {
		return ""
	}
	if session := m.auth.Session(); session != nil {
		return session.User.ID
	}
	return ""
}

func (m *Model) sessionEmail() string {
	if m.auth == nil {
		return ""
	}
	if session := m.auth.Session(); session != nil {
		return session.User.Email
	}
	return ""
}

func (m *Model) enterNotes() {
	m.screen = screenNotes
	m.setFocus(focusList)
}

// refreshVisible recomputes the filtered list, the tag universe and the
// selection from the controller's collection.
func (m *Model) refreshVisible() {
	all := m.controller.Notes()
	m.sidebar.SetTags(notes.TagUniverse(all))
	m.visible = m.view.Visible(all)
	m.syncEditor()
}

// syncEditor opens the selected note in the editor when the selection
// changed. Switching notes cancels a pending autosave.
func (m *Model) syncEditor() {
	id := m.view.SelectedID
	if id == m.editor.NoteID() {
		if note, ok := m.controller.Note(id); ok {
			m.editor.Refresh(note)
		}
		return
	}
	note, ok := m.controller.Note(id)
	if id == "" || !ok {
		m.editor.Clear()
		m.autosave.Close()
		m.layout.Deselect()
		if m.focus == focusEditor {
			m.setFocus(focusList)
		}
		return
	}
	saved := m.editor.Load(note)
	m.autosave.Open(note.ID, saved)
	m.layout.SetSelected(true)
}

func (m *Model) selectedNote() (types.Note, bool) {
	if m.view.SelectedID == "" {
		return types.Note{}, false
	}
	return m.controller.Note(m.view.SelectedID)
}

// openSelected shows the editor for the selected note, hiding the list in
// compact layout.
func (m *Model) openSelected() {
	if m.view.SelectedID == "" {
		return
	}
	m.layout.Select()
	m.setFocus(focusEditor)
}

func (m *Model) setFocus(focus focusArea) {
	m.focus = focus
	if focus == focusEditor && m.editor.NoteID() != "" {
		m.editor.Focus()
	} else {
		m.editor.Blur()
	}
	if focus == focusSearch {
		m.search.Focus()
	} else {
		m.search.Blur()
	}
}

// panes lists the focusable panes currently on screen, in tab order.
func (m *Model) panes() []focusArea {
	if m.layout.Compact() {
		if m.layout.EditorVisible() {
			return []focusArea{focusEditor}
		}
		if m.layout.SidebarVisible() {
			return []focusArea{focusSidebar, focusList}
		}
		return []focusArea{focusList}
	}
	out := []focusArea{}
	if m.layout.SidebarVisible() {
		out = append(out, focusSidebar)
	}
	out = append(out, focusList)
	if m.editor.NoteID() != "" {
		out = append(out, focusEditor)
	}
	return out
}

func (m *Model) cycleFocus(delta int) {
	panes := m.panes()
	if len(panes) == 0 {
		return
	}
	current := 0
	for i, pane := range panes {
		if pane == m.focus {
			current = i
			break
		}
	}
	next := panes[(current+delta+len(panes))%len(panes)]
	if next == focusEditor {
		m.openSelected()
		return
	}
	m.setFocus(next)
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(prefix string, err error) {
	m.status = prefix + ": " + describeError(err)
	m.statusErr = true
	m.logger.Warn("ui_error", logging.F("action", prefix), logging.F("error", err))
}

func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, notes.ErrValidation):
		if fields := notes.FieldErrorsOf(err); len(fields) > 0 {
			return fields.String()
		}
		return "invalid note"
	case errors.Is(err, notes.ErrNotFound):
		return "note no longer exists"
	}
	return err.Error()
}

// resize maps terminal columns to logical pixels for the breakpoint.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.layout.Resize(width * m.cellWidth)
	m.help.Width = width
	m.keepFocusOnScreen()
}

// keepFocusOnScreen moves focus to the first visible pane when the focused
// one was hidden by a layout change.
func (m *Model) keepFocusOnScreen() {
	if m.focus == focusSearch && m.layout.ListVisible() {
		return
	}
	panes := m.panes()
	for _, pane := range panes {
		if pane == m.focus {
			return
		}
	}
	if len(panes) > 0 {
		m.setFocus(panes[0])
	}
}

// applySearch applies the search box to the filter immediately.
func (m *Model) applySearch() {
	m.view.SetQuery(m.search.Value())
	m.refreshVisible()
}

// resetView clears selection, filters and the editor, as on sign-out.
func (m *Model) resetView() {
	m.view.Reset()
	m.visible = nil
	m.search.SetValue("")
	m.searchSeq++
	m.autosave.Close()
	m.editor.Clear()
	m.layout.Deselect()
	m.settings.Close()
	m.confirm.Close()
	m.pendingDeleteID = ""
	m.sidebar.SetTags(nil)
}
