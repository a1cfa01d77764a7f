package notes

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"jotter/internal/logging"
	"jotter/internal/types"
)

var errNoOwner = errors.New("no signed-in user")

// Controller owns the in-memory note collection for one owner. Local state
// changes only after the remote confirms a mutation.
type Controller struct {
	remote Remote
	logger logging.Logger

	mu      sync.RWMutex
	ownerID string
	notes   []types.Note
	loading bool
	err     error
	// generation advances on every owner change so results that arrive
	// for a previous owner are dropped.
	generation uint64

	updates keyedLocks
}

func NewController(remote Remote, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Controller{remote: remote, logger: logger}
}

// Load replaces the collection with ownerID's notes, newest update first.
// An empty ownerID clears the collection without a remote call.
func (c *Controller) Load(ctx context.Context, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.ownerID = ownerID
	c.notes = nil
	c.err = nil
	c.loading = ownerID != ""
	c.mu.Unlock()

	if ownerID == "" {
		return nil
	}
	list, err := c.remote.ListNotes(ctx, ownerID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return nil
	}
	c.loading = false
	if err != nil {
		c.err = wrap("load", "", err)
		c.logger.Warn("notes_load_failed", logging.F("owner_id", ownerID), logging.F("error", err))
		return c.err
	}
	sorted := make([]types.Note, 0, len(list))
	for _, note := range list {
		sorted = append(sorted, note.Clone())
	}
	sortByUpdatedDesc(sorted)
	c.notes = dedupeByID(sorted)
	c.logger.Debug("notes_loaded", logging.F("owner_id", ownerID), logging.F("count", len(c.notes)))
	return nil
}

// Create inserts a note and prepends the confirmed result.
func (c *Controller) Create(ctx context.Context, draft types.NoteDraft) (types.Note, error) {
	ownerID, gen, err := c.owner("create", "")
	if err != nil {
		return types.Note{}, err
	}
	draft.Tags = NormalizeTags(draft.Tags)
	created, err := c.remote.InsertNote(ctx, ownerID, draft)
	if err != nil {
		return types.Note{}, wrap("create", "", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		c.notes = append([]types.Note{created.Clone()}, removeByID(c.notes, created.ID)...)
	}
	return created.Clone(), nil
}

// Update sends a merge patch and replaces the local entry by id. Updates to
// the same id are serialized: a second call waits for the first to settle.
func (c *Controller) Update(ctx context.Context, id string, patch types.NotePatch) (types.Note, error) {
	return c.update(ctx, "update", id, patch)
}

// Archive is Update restricted to the archived flag.
func (c *Controller) Archive(ctx context.Context, id string, archived bool) (types.Note, error) {
	return c.update(ctx, "archive", id, types.NotePatch{Archived: &archived})
}

func (c *Controller) update(ctx context.Context, op, id string, patch types.NotePatch) (types.Note, error) {
	id = strings.TrimSpace(id)
	ownerID, gen, err := c.owner(op, id)
	if err != nil {
		return types.Note{}, err
	}
	if id == "" {
		return types.Note{}, NotFoundError(op, id, errors.New("note id is required"))
	}
	if patch.Tags != nil {
		tags := NormalizeTags(*patch.Tags)
		patch.Tags = &tags
	}

	unlock := c.updates.lock(id)
	defer unlock()

	updated, err := c.remote.UpdateNote(ctx, ownerID, id, patch)
	if err != nil {
		return types.Note{}, wrap(op, id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		for i := range c.notes {
			if c.notes[i].ID == updated.ID {
				c.notes[i] = updated.Clone()
				break
			}
		}
	}
	return updated.Clone(), nil
}

// Delete removes remotely, then locally.
func (c *Controller) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	ownerID, gen, err := c.owner("delete", id)
	if err != nil {
		return err
	}
	if id == "" {
		return NotFoundError("delete", id, errors.New("note id is required"))
	}
	if err := c.remote.DeleteNote(ctx, ownerID, id); err != nil {
		return wrap("delete", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		c.notes = removeByID(c.notes, id)
	}
	return nil
}

// Notes returns a copy of the collection in stored order.
func (c *Controller) Notes() []types.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Note, 0, len(c.notes))
	for _, note := range c.notes {
		out = append(out, note.Clone())
	}
	return out
}

func (c *Controller) Note(id string) (types.Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, note := range c.notes {
		if note.ID == id {
			return note.Clone(), true
		}
	}
	return types.Note{}, false
}

func (c *Controller) OwnerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ownerID
}

func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err reports the last load failure, nil after a successful load.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Controller) owner(op, id string) (string, uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ownerID == "" {
		return "", 0, NetworkError(op, id, errNoOwner)
	}
	return c.ownerID, c.generation, nil
}

func sortByUpdatedDesc(list []types.Note) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
}

func dedupeByID(list []types.Note) []types.Note {
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, note := range list {
		if _, ok := seen[note.ID]; ok {
			continue
		}
		seen[note.ID] = struct{}{}
		out = append(out, note)
	}
	return out
}

func removeByID(list []types.Note, id string) []types.Note {
	out := make([]types.Note, 0, len(list))
	for _, note := range list {
		if note.ID != id {
			out = append(out, note)
		}
	}
	return out
}

// keyedLocks hands out one mutex per key, dropping it once unused.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
