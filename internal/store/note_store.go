package store

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jotter/internal/types"
)

var ErrNoteNotFound = errors.New("note not found")

const noteSchemaVersion = 1

// NoteFilter narrows List results. An empty OwnerID lists every owner and
// is only used for seeding and export.
type NoteFilter struct {
	OwnerID  string
	Archived *bool
}

type NoteStore interface {
	List(ctx context.Context, filter NoteFilter) ([]*types.Note, error)
	Get(ctx context.Context, id string) (*types.Note, bool, error)
	Upsert(ctx context.Context, note *types.Note) (*types.Note, error)
	Delete(ctx context.Context, id string) error
}

var nowUTC = func() time.Time { return time.Now().UTC() }

type FileNoteStore struct {
	path string
	mu   sync.Mutex
}

type noteFile struct {
	Version int           `json:"version"`
	Notes   []*types.Note `json:"notes"`
}

func NewFileNoteStore(path string) *FileNoteStore {
	return &FileNoteStore{path: path}
}

func (s *FileNoteStore) List(ctx context.Context, filter NoteFilter) ([]*types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*types.Note, 0, len(file.Notes))
	for _, note := range file.Notes {
		if !matchesNoteFilter(note, filter) {
			continue
		}
		out = append(out, cloneNote(note))
	}
	sortNotesByRecency(out)
	return out, nil
}

func (s *FileNoteStore) Get(ctx context.Context, id string) (*types.Note, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, false, err
	}
	for _, note := range file.Notes {
		if note.ID == id {
			return cloneNote(note), true, nil
		}
	}
	return nil, false, nil
}

func (s *FileNoteStore) Upsert(ctx context.Context, note *types.Note) (*types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note == nil {
		return nil, errors.New("note is required")
	}
	file, err := s.load()
	if err != nil {
		return nil, err
	}

	var existing *types.Note
	index := -1
	for i, candidate := range file.Notes {
		if note.ID != "" && candidate.ID == note.ID {
			existing = candidate
			index = i
			break
		}
	}
	normalized, err := normalizeNote(note, existing)
	if err != nil {
		return nil, err
	}
	if index >= 0 {
		file.Notes[index] = normalized
	} else {
		file.Notes = append(file.Notes, normalized)
	}
	if err := s.save(file); err != nil {
		return nil, err
	}
	return cloneNote(normalized), nil
}

func (s *FileNoteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	filtered := file.Notes[:0]
	found := false
	for _, note := range file.Notes {
		if note.ID == id {
			found = true
			continue
		}
		filtered = append(filtered, note)
	}
	if !found {
		return ErrNoteNotFound
	}
	file.Notes = filtered
	return s.save(file)
}

func (s *FileNoteStore) load() (*noteFile, error) {
	file := &noteFile{Version: noteSchemaVersion}
	if err := readJSON(s.path, file); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, errEmptyFile) {
			return &noteFile{Version: noteSchemaVersion, Notes: []*types.Note{}}, nil
		}
		return nil, err
	}
	if file.Notes == nil {
		file.Notes = []*types.Note{}
	}
	return file, nil
}

func (s *FileNoteStore) save(file *noteFile) error {
	file.Version = noteSchemaVersion
	return writeJSONAtomic(s.path, file)
}

func matchesNoteFilter(note *types.Note, filter NoteFilter) bool {
	if note == nil {
		return false
	}
	if owner := strings.TrimSpace(filter.OwnerID); owner != "" && note.OwnerID != owner {
		return false
	}
	if filter.Archived != nil && note.Archived != *filter.Archived {
		return false
	}
	return true
}

// sortNotesByRecency orders by UpdatedAt descending, newest creation first on ties.
func sortNotesByRecency(notes []*types.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
}

// normalizeNote assigns identity and timestamps. Updates keep the original
// owner and CreatedAt and always refresh UpdatedAt.
func normalizeNote(note *types.Note, existing *types.Note) (*types.Note, error) {
	normalized := note.Clone()
	now := nowUTC()
	if existing != nil {
		normalized.ID = existing.ID
		normalized.OwnerID = existing.OwnerID
		normalized.CreatedAt = existing.CreatedAt
		normalized.UpdatedAt = now
	} else {
		if strings.TrimSpace(normalized.OwnerID) == "" {
			return nil, errors.New("note owner is required")
		}
		if strings.TrimSpace(normalized.ID) == "" {
			normalized.ID = uuid.NewString()
		}
		if normalized.CreatedAt.IsZero() {
			normalized.CreatedAt = now
		}
		if normalized.UpdatedAt.IsZero() {
			normalized.UpdatedAt = normalized.CreatedAt
		}
	}
	if normalized.UpdatedAt.Before(normalized.CreatedAt) {
		normalized.UpdatedAt = normalized.CreatedAt
	}
	if normalized.Tags == nil {
		normalized.Tags = []string{}
	}
	return &normalized, nil
}

func cloneNote(note *types.Note) *types.Note {
	if note == nil {
		return nil
	}
	copy := note.Clone()
	return &copy
}
