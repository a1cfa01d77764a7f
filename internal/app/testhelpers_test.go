package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"jotter/internal/autosave"
	"jotter/internal/client"
	"jotter/internal/daemon"
	"jotter/internal/prefs"
	"jotter/internal/store"
	"jotter/internal/types"
)

// stepClock collects autosave timers so tests fire them explicitly.
type stepClock struct {
	mu     sync.Mutex
	timers []*stepTimer
}

type stepTimer struct {
	f       func()
	stopped bool
}

func (t *stepTimer) Stop() bool {
	active := !t.stopped
	t.stopped = true
	return active
}

func (c *stepClock) AfterFunc(_ time.Duration, f func()) autosave.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &stepTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *stepClock) Now() time.Time { return time.Now() }

// fire runs every timer that is still armed.
func (c *stepClock) fire() int {
	c.mu.Lock()
	pending := c.timers
	c.timers = nil
	c.mu.Unlock()
	fired := 0
	for _, t := range pending {
		if t.stopped {
			continue
		}
		t.stopped = true
		t.f()
		fired++
	}
	return fired
}

type testEnv struct {
	model  *Model
	client *client.Client
	clock  *stepClock
}

func newTestEnv(t *testing.T, signedIn bool) *testEnv {
	t.Helper()
	dir := t.TempDir()
	repo := store.NewFileRepository(store.RepositoryPaths{
		NotesPath: filepath.Join(dir, "notes.json"),
		UsersPath: filepath.Join(dir, "users.json"),
	})
	d := daemon.New("127.0.0.1:0", "test", repo, daemon.Options{
		Secret:        []byte("0123456789abcdef0123456789abcdef"),
		SessionTTL:    time.Hour,
		AuthPerMinute: 100,
	})
	handler, err := d.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api := client.NewWithBaseURL(server.URL, "")
	if signedIn {
		if _, err := api.SignUp(context.Background(), "ada@example.com", "secret-pass"); err != nil {
			t.Fatalf("signup: %v", err)
		}
	}
	clock := &stepClock{}
	m := NewModel(Options{
		Auth:           api,
		Remote:         client.NewRemoteStore(api),
		ConfirmDelete:  true,
		SearchDebounce: time.Millisecond,
		AutosaveClock:  clock,
	})
	staticCursors(m)
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return &testEnv{model: m, client: api, clock: clock}
}

func (e *testEnv) seed(t *testing.T, draft types.NoteDraft) types.Note {
	t.Helper()
	note, err := e.client.InsertNote(context.Background(), draft)
	if err != nil {
		t.Fatalf("seed note: %v", err)
	}
	return *note
}

// drain runs cmd and feeds the domain messages it produces back into the
// model, following the commands those return. Timers and blink/spinner
// ticks are dropped.
func (e *testEnv) drain(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			e.drain(t, sub)
		}
	case notesLoadedMsg, noteCreatedMsg, noteArchivedMsg, noteDeletedMsg,
		authResultMsg, signedOutMsg, saveResultMsg, copiedMsg:
		_, next := e.model.Update(msg)
		e.drain(t, next)
	}
}

func (e *testEnv) key(t *testing.T, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := e.model.Update(msg)
	e.drain(t, cmd)
}

func (e *testEnv) typeText(t *testing.T, text string) {
	t.Helper()
	for _, r := range text {
		e.key(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func ctrlKey(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

type memoryPrefsStore struct {
	saved prefs.Values
}

func (s *memoryPrefsStore) Load() (prefs.Values, error) { return s.saved, nil }

func (s *memoryPrefsStore) Save(values prefs.Values) error {
	s.saved = values
	return nil
}

func newTestPrefs(store prefs.Store) *prefs.Preferences {
	return prefs.Init(store, nil)
}

// staticCursors stops cursor blinking so key commands return without
// waiting on blink timers.
func staticCursors(m *Model) {
	m.search.Cursor.SetMode(cursor.CursorStatic)
	m.authForm.email.Cursor.SetMode(cursor.CursorStatic)
	m.authForm.password.Cursor.SetMode(cursor.CursorStatic)
	m.authForm.confirm.Cursor.SetMode(cursor.CursorStatic)
	m.editor.title.Cursor.SetMode(cursor.CursorStatic)
	m.editor.tagInput.Cursor.SetMode(cursor.CursorStatic)
	m.editor.content.Cursor.SetMode(cursor.CursorStatic)
}
