package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"jotter/internal/types"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

type sqliteRepository struct {
	db    *sql.DB
	notes NoteStore
	users UserStore
}

func NewSQLiteRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}
	return &sqliteRepository{
		db:    db,
		notes: &sqliteNoteStore{db: db},
		users: &sqliteUserStore{db: db},
	}, nil
}

func (r *sqliteRepository) Notes() NoteStore {
	return r.notes
}

func (r *sqliteRepository) Users() UserStore {
	return r.users
}

func (r *sqliteRepository) Backend() string {
	return RepositoryBackendSQLite
}

func (r *sqliteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

const sqliteNoteColumns = "id, owner_id, title, content, tags, archived, pinned, created_at, updated_at"

type sqliteNoteStore struct {
	db *sql.DB
	mu sync.Mutex
}

func (s *sqliteNoteStore) List(ctx context.Context, filter NoteFilter) ([]*types.Note, error) {
	query := "SELECT " + sqliteNoteColumns + " FROM notes WHERE 1=1"
	args := []any{}
	if owner := strings.TrimSpace(filter.OwnerID); owner != "" {
		query += " AND owner_id = ?"
		args = append(args, owner)
	}
	if filter.Archived != nil {
		query += " AND archived = ?"
		args = append(args, *filter.Archived)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*types.Note, 0)
	for rows.Next() {
		note, err := scanSQLiteNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Timestamps are stored as text, so ordering happens in Go.
	sortNotesByRecency(out)
	return out, nil
}

func (s *sqliteNoteStore) Get(ctx context.Context, id string) (*types.Note, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sqliteNoteColumns+" FROM notes WHERE id = ?", id)
	note, err := scanSQLiteNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return note, true, nil
}

func (s *sqliteNoteStore) Upsert(ctx context.Context, note *types.Note) (*types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note == nil {
		return nil, errors.New("note is required")
	}
	var existing *types.Note
	if strings.TrimSpace(note.ID) != "" {
		current, ok, err := s.Get(ctx, note.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			existing = current
		}
	}
	normalized, err := normalizeNote(note, existing)
	if err != nil {
		return nil, err
	}
	tags, err := json.Marshal(normalized.Tags)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO notes (`+sqliteNoteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			tags = excluded.tags,
			archived = excluded.archived,
			pinned = excluded.pinned,
			updated_at = excluded.updated_at`,
		normalized.ID, normalized.OwnerID, normalized.Title, normalized.Content, string(tags),
		normalized.Archived, normalized.Pinned,
		formatSQLiteTime(normalized.CreatedAt), formatSQLiteTime(normalized.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	return cloneNote(normalized), nil
}

func (s *sqliteNoteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

type sqliteScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteNote(row sqliteScanner) (*types.Note, error) {
	var (
		note               types.Note
		tags               string
		createdAt, updated string
	)
	if err := row.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content, &tags,
		&note.Archived, &note.Pinned, &createdAt, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &note.Tags); err != nil {
		return nil, fmt.Errorf("decode tags for note %s: %w", note.ID, err)
	}
	var err error
	if note.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if note.UpdatedAt, err = parseSQLiteTime(updated); err != nil {
		return nil, err
	}
	return &note, nil
}

type sqliteUserStore struct {
	db *sql.DB
}

func (s *sqliteUserStore) Create(ctx context.Context, user *types.User) (*types.User, error) {
	normalized, err := normalizeUser(user)
	if err != nil {
		return nil, err
	}
	if _, ok, err := s.GetByEmail(ctx, normalized.Email); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrUserExists
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		normalized.ID, normalized.Email, normalized.PasswordHash, formatSQLiteTime(normalized.CreatedAt))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrUserExists
		}
		return nil, err
	}
	copy := *normalized
	return &copy, nil
}

func (s *sqliteUserStore) Get(ctx context.Context, id string) (*types.User, bool, error) {
	return s.queryOne(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE id = ?", id)
}

func (s *sqliteUserStore) GetByEmail(ctx context.Context, email string) (*types.User, bool, error) {
	return s.queryOne(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE email = ?", NormalizeEmail(email))
}

func (s *sqliteUserStore) List(ctx context.Context) ([]*types.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, email, password_hash, created_at FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*types.User, 0)
	for rows.Next() {
		user, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func (s *sqliteUserStore) queryOne(ctx context.Context, query string, arg string) (*types.User, bool, error) {
	user, err := scanSQLiteUser(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func scanSQLiteUser(row sqliteScanner) (*types.User, error) {
	var (
		user      types.User
		createdAt string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if user.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseSQLiteTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, raw)
}
