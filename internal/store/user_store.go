package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"jotter/internal/types"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already registered")
)

const userSchemaVersion = 1

type UserStore interface {
	Create(ctx context.Context, user *types.User) (*types.User, error)
	Get(ctx context.Context, id string) (*types.User, bool, error)
	GetByEmail(ctx context.Context, email string) (*types.User, bool, error)
	List(ctx context.Context) ([]*types.User, error)
}

type FileUserStore struct {
	path string
	mu   sync.Mutex
}

type userFile struct {
	Version int           `json:"version"`
	Users   []*types.User `json:"users"`
}

func NewFileUserStore(path string) *FileUserStore {
	return &FileUserStore{path: path}
}

func (s *FileUserStore) Create(ctx context.Context, user *types.User) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized, err := normalizeUser(user)
	if err != nil {
		return nil, err
	}
	file, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, existing := range file.Users {
		if existing.Email == normalized.Email || existing.ID == normalized.ID {
			return nil, ErrUserExists
		}
	}
	file.Users = append(file.Users, normalized)
	file.Version = userSchemaVersion
	if err := writeJSONAtomic(s.path, file); err != nil {
		return nil, err
	}
	copy := *normalized
	return &copy, nil
}

func (s *FileUserStore) Get(ctx context.Context, id string) (*types.User, bool, error) {
	return s.find(func(u *types.User) bool { return u.ID == id })
}

func (s *FileUserStore) GetByEmail(ctx context.Context, email string) (*types.User, bool, error) {
	email = NormalizeEmail(email)
	return s.find(func(u *types.User) bool { return u.Email == email })
}

func (s *FileUserStore) List(ctx context.Context) ([]*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*types.User, 0, len(file.Users))
	for _, user := range file.Users {
		copy := *user
		out = append(out, &copy)
	}
	return out, nil
}

func (s *FileUserStore) find(match func(*types.User) bool) (*types.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, false, err
	}
	for _, user := range file.Users {
		if match(user) {
			copy := *user
			return &copy, true, nil
		}
	}
	return nil, false, nil
}

func (s *FileUserStore) load() (*userFile, error) {
	file := &userFile{Version: userSchemaVersion}
	if err := readJSON(s.path, file); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, errEmptyFile) {
			return &userFile{Version: userSchemaVersion}, nil
		}
		return nil, err
	}
	return file, nil
}

// NormalizeEmail lowercases and trims so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUser(user *types.User) (*types.User, error) {
	if user == nil {
		return nil, errors.New("user is required")
	}
	normalized := *user
	normalized.Email = NormalizeEmail(normalized.Email)
	if normalized.Email == "" {
		return nil, errors.New("user email is required")
	}
	if strings.TrimSpace(normalized.ID) == "" {
		normalized.ID = uuid.NewString()
	}
	if normalized.CreatedAt.IsZero() {
		normalized.CreatedAt = nowUTC()
	}
	return &normalized, nil
}
