package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"jotter/internal/types"
)

func TestFileUserStoreContract(t *testing.T) {
	runUserStoreContract(t, NewFileUserStore(filepath.Join(t.TempDir(), "users.json")))
}

func runUserStoreContract(t *testing.T, store UserStore) {
	t.Helper()
	ctx := context.Background()

	created, err := store.Create(ctx, &types.User{Email: "  Ada@Example.com ", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Email != "ada@example.com" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected created user: %#v", created)
	}

	if _, err := store.Create(ctx, &types.User{Email: "ADA@example.com", PasswordHash: "other"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	byEmail, ok, err := store.GetByEmail(ctx, "ada@EXAMPLE.com")
	if err != nil || !ok {
		t.Fatalf("get by email: ok=%v err=%v", ok, err)
	}
	if byEmail.ID != created.ID || byEmail.PasswordHash != "hash" {
		t.Fatalf("unexpected user by email: %#v", byEmail)
	}

	byID, ok, err := store.Get(ctx, created.ID)
	if err != nil || !ok || byID.Email != created.Email {
		t.Fatalf("get by id: user=%#v ok=%v err=%v", byID, ok, err)
	}

	if _, ok, err := store.GetByEmail(ctx, "nobody@example.com"); err != nil || ok {
		t.Fatalf("expected missing user: ok=%v err=%v", ok, err)
	}

	users, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}

	if _, err := store.Create(ctx, &types.User{Email: " "}); err == nil {
		t.Fatalf("expected error for blank email")
	}
}
