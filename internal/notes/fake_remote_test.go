package notes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jotter/internal/types"
)

var errRemoteDown = errors.New("connection refused")

// fakeRemote is an in-memory Remote with per-owner isolation and failure
// injection.
type fakeRemote struct {
	mu      sync.Mutex
	notes   map[string]types.Note
	nextID  int
	now     time.Time
	calls   []string
	failAll error

	// updateGate, when set, blocks UpdateNote until it is closed.
	updateGate  chan struct{}
	inflight    int
	maxInflight int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		notes: make(map[string]types.Note),
		now:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRemote) tick() time.Time {
	f.now = f.now.Add(time.Minute)
	return f.now
}

func (f *fakeRemote) seed(owner string, note types.Note) {
	f.mu.Lock()
	defer f.mu.Unlock()
	note.OwnerID = owner
	f.notes[note.ID] = note
}

func (f *fakeRemote) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) ListNotes(ctx context.Context, ownerID string) ([]types.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list")
	if f.failAll != nil {
		return nil, f.failAll
	}
	out := make([]types.Note, 0, len(f.notes))
	for _, note := range f.notes {
		if note.OwnerID == ownerID {
			out = append(out, note)
		}
	}
	return out, nil
}

func (f *fakeRemote) InsertNote(ctx context.Context, ownerID string, draft types.NoteDraft) (types.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "insert")
	if f.failAll != nil {
		return types.Note{}, f.failAll
	}
	f.nextID++
	now := f.tick()
	note := types.Note{
		ID:        fmt.Sprintf("n%d", f.nextID),
		OwnerID:   ownerID,
		Title:     draft.Title,
		Content:   draft.Content,
		Tags:      append([]string{}, draft.Tags...),
		Archived:  draft.Archived,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.notes[note.ID] = note
	return note, nil
}

func (f *fakeRemote) UpdateNote(ctx context.Context, ownerID, id string, patch types.NotePatch) (types.Note, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "update:"+id)
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	gate := f.updateGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	if f.failAll != nil {
		return types.Note{}, f.failAll
	}
	note, ok := f.notes[id]
	if !ok || note.OwnerID != ownerID {
		return types.Note{}, NotFoundError("", id, errors.New("no such note"))
	}
	note = patch.Apply(note)
	note.UpdatedAt = f.tick()
	f.notes[id] = note
	return note, nil
}

func (f *fakeRemote) DeleteNote(ctx context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete:"+id)
	if f.failAll != nil {
		return f.failAll
	}
	note, ok := f.notes[id]
	if !ok || note.OwnerID != ownerID {
		return NotFoundError("", id, errors.New("no such note"))
	}
	delete(f.notes, id)
	return nil
}
