package store

import (
	"context"
	"errors"
	"strings"
)

const (
	RepositoryBackendFile   = "file"
	RepositoryBackendBbolt  = "bbolt"
	RepositoryBackendSQLite = "sqlite"
)

type Repository interface {
	Notes() NoteStore
	Users() UserStore
	Backend() string
	Close() error
}

type RepositoryPaths struct {
	NotesPath  string
	UsersPath  string
	DBPath     string
	SQLitePath string
}

type fileRepository struct {
	notes NoteStore
	users UserStore
}

func NewFileRepository(paths RepositoryPaths) Repository {
	return &fileRepository{
		notes: NewFileNoteStore(paths.NotesPath),
		users: NewFileUserStore(paths.UsersPath),
	}
}

func (r *fileRepository) Notes() NoteStore {
	return r.notes
}

func (r *fileRepository) Users() UserStore {
	return r.users
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

func OpenRepository(paths RepositoryPaths, backend string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", RepositoryBackendBbolt:
		if strings.TrimSpace(paths.DBPath) == "" {
			return nil, errors.New("db path is required for bbolt repository")
		}
		return NewBboltRepository(paths.DBPath)
	case RepositoryBackendSQLite:
		if strings.TrimSpace(paths.SQLitePath) == "" {
			return nil, errors.New("db path is required for sqlite repository")
		}
		return NewSQLiteRepository(paths.SQLitePath)
	case RepositoryBackendFile:
		if strings.TrimSpace(paths.NotesPath) == "" || strings.TrimSpace(paths.UsersPath) == "" {
			return nil, errors.New("notes and users paths are required for file repository")
		}
		return NewFileRepository(paths), nil
	default:
		return nil, errors.New("unsupported repository backend: " + backend)
	}
}

// SeedRepositoryFromFiles copies users and notes from the JSON files into
// dst when dst holds no users yet, so switching a data dir from the file
// backend to a database keeps existing accounts.
func SeedRepositoryFromFiles(ctx context.Context, dst Repository, paths RepositoryPaths) error {
	if dst == nil || dst.Backend() == RepositoryBackendFile {
		return nil
	}
	if strings.TrimSpace(paths.NotesPath) == "" || strings.TrimSpace(paths.UsersPath) == "" {
		return nil
	}
	src := NewFileRepository(paths)
	defer src.Close()

	seeded, err := seedUsers(ctx, dst.Users(), src.Users())
	if err != nil || !seeded {
		return err
	}
	return seedNotes(ctx, dst.Notes(), src.Notes())
}

func seedUsers(ctx context.Context, dst UserStore, src UserStore) (bool, error) {
	current, err := dst.List(ctx)
	if err != nil {
		return false, err
	}
	if len(current) > 0 {
		return false, nil
	}
	legacy, err := src.List(ctx)
	if err != nil {
		return false, err
	}
	for _, user := range legacy {
		if _, err := dst.Create(ctx, user); err != nil {
			return false, err
		}
	}
	return len(legacy) > 0, nil
}

func seedNotes(ctx context.Context, dst NoteStore, src NoteStore) error {
	legacy, err := src.List(ctx, NoteFilter{})
	if err != nil {
		return err
	}
	for _, note := range legacy {
		if _, err := dst.Upsert(ctx, note); err != nil {
			return err
		}
	}
	return nil
}
