package notes

import (
	"context"

	"jotter/internal/types"
)

// Remote is the CRUD service the controller delegates persistence to. Every
// call is scoped to ownerID; an id that belongs to another owner must be
// reported as not found.
type Remote interface {
	ListNotes(ctx context.Context, ownerID string) ([]types.Note, error)
	InsertNote(ctx context.Context, ownerID string, draft types.NoteDraft) (types.Note, error)
	UpdateNote(ctx context.Context, ownerID, id string, patch types.NotePatch) (types.Note, error)
	DeleteNote(ctx context.Context, ownerID, id string) error
}
