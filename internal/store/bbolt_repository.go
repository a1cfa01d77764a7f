package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"jotter/internal/types"
)

var (
	bucketNotes        = []byte("notes")
	bucketUsers        = []byte("users")
	bucketUsersByEmail = []byte("users_by_email")
)

type bboltRepository struct {
	db    *bolt.DB
	notes NoteStore
	users UserStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:    db,
		notes: &bboltNoteStore{db: db},
		users: &bboltUserStore{db: db},
	}, nil
}

func (r *bboltRepository) Notes() NoteStore {
	return r.notes
}

func (r *bboltRepository) Users() UserStore {
	return r.users
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketNotes, bucketUsers, bucketUsersByEmail} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
}

type bboltNoteStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltNoteStore) List(ctx context.Context, filter NoteFilter) ([]*types.Note, error) {
	out := make([]*types.Note, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var note types.Note
			if err := json.Unmarshal(v, &note); err != nil {
				return err
			}
			if !matchesNoteFilter(&note, filter) {
				return nil
			}
			out = append(out, &note)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortNotesByRecency(out)
	return out, nil
}

func (s *bboltNoteStore) Get(ctx context.Context, id string) (*types.Note, bool, error) {
	var (
		note *types.Note
		ok   bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(id))
		if len(raw) == 0 {
			return nil
		}
		var item types.Note
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		note = &item
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return note, ok, nil
}

func (s *bboltNoteStore) Upsert(ctx context.Context, note *types.Note) (*types.Note, error) {
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
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		if b == nil {
			return errors.New("notes bucket missing")
		}
		return b.Put([]byte(normalized.ID), raw)
	}); err != nil {
		return nil, err
	}
	return cloneNote(normalized), nil
}

func (s *bboltNoteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		if b == nil {
			return errors.New("notes bucket missing")
		}
		key := []byte(id)
		if b.Get(key) == nil {
			return ErrNoteNotFound
		}
		return b.Delete(key)
	})
}

type bboltUserStore struct {
	db *bolt.DB
}

func (s *bboltUserStore) Create(ctx context.Context, user *types.User) (*types.User, error) {
	normalized, err := normalizeUser(user)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(bucketUsers)
		byEmail := tx.Bucket(bucketUsersByEmail)
		if users == nil || byEmail == nil {
			return errors.New("users bucket missing")
		}
		if byEmail.Get([]byte(normalized.Email)) != nil || users.Get([]byte(normalized.ID)) != nil {
			return ErrUserExists
		}
		if err := users.Put([]byte(normalized.ID), raw); err != nil {
			return err
		}
		return byEmail.Put([]byte(normalized.Email), []byte(normalized.ID))
	})
	if err != nil {
		return nil, err
	}
	copy := *normalized
	return &copy, nil
}

func (s *bboltUserStore) Get(ctx context.Context, id string) (*types.User, bool, error) {
	var user *types.User
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		user, err = readBboltUser(tx, []byte(id))
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return user, user != nil, nil
}

func (s *bboltUserStore) GetByEmail(ctx context.Context, email string) (*types.User, bool, error) {
	var user *types.User
	err := s.db.View(func(tx *bolt.Tx) error {
		byEmail := tx.Bucket(bucketUsersByEmail)
		if byEmail == nil {
			return nil
		}
		id := byEmail.Get([]byte(NormalizeEmail(email)))
		if id == nil {
			return nil
		}
		var err error
		user, err = readBboltUser(tx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return user, user != nil, nil
}

func (s *bboltUserStore) List(ctx context.Context) ([]*types.User, error) {
	out := make([]*types.User, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var user types.User
			if err := json.Unmarshal(v, &user); err != nil {
				return err
			}
			out = append(out, &user)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readBboltUser(tx *bolt.Tx, id []byte) (*types.User, error) {
	b := tx.Bucket(bucketUsers)
	if b == nil {
		return nil, nil
	}
	raw := b.Get(id)
	if len(raw) == 0 {
		return nil, nil
	}
	var user types.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
