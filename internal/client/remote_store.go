package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"jotter/internal/notes"
	"jotter/internal/types"
)

// RemoteStore adapts the daemon API to notes.Remote. The daemon scopes
// every request by the session token, so ownerID only has to agree with the
// signed-in user.
type RemoteStore struct {
	client *Client
}

func NewRemoteStore(client *Client) *RemoteStore {
	return &RemoteStore{client: client}
}

func (s *RemoteStore) ListNotes(ctx context.Context, ownerID string) ([]types.Note, error) {
	const op = "list"
	if err := s.checkOwner(op, "", ownerID); err != nil {
		return nil, err
	}
	list, err := s.client.ListNotes(ctx, nil)
	if err != nil {
		return nil, mapRemoteError(op, "", err)
	}
	return list, nil
}

func (s *RemoteStore) InsertNote(ctx context.Context, ownerID string, draft types.NoteDraft) (types.Note, error) {
	const op = "insert"
	if err := s.checkOwner(op, "", ownerID); err != nil {
		return types.Note{}, err
	}
	note, err := s.client.InsertNote(ctx, draft)
	if err != nil {
		return types.Note{}, mapRemoteError(op, "", err)
	}
	return *note, nil
}

func (s *RemoteStore) UpdateNote(ctx context.Context, ownerID, id string, patch types.NotePatch) (types.Note, error) {
	const op = "update"
	if err := s.checkOwner(op, id, ownerID); err != nil {
		return types.Note{}, err
	}
	note, err := s.client.UpdateNote(ctx, id, patch)
	if err != nil {
		return types.Note{}, mapRemoteError(op, id, err)
	}
	return *note, nil
}

func (s *RemoteStore) DeleteNote(ctx context.Context, ownerID, id string) error {
	const op = "delete"
	if err := s.checkOwner(op, id, ownerID); err != nil {
		return err
	}
	if err := s.client.DeleteNote(ctx, id); err != nil {
		return mapRemoteError(op, id, err)
	}
	return nil
}

func (s *RemoteStore) checkOwner(op, id, ownerID string) error {
	if s.client == nil {
		return notes.NetworkError(op, id, errors.New("client not configured"))
	}
	current := s.client.UserID()
	if current == "" {
		return notes.NetworkError(op, id, ErrNotAuthenticated)
	}
	if ownerID != current {
		return notes.NetworkError(op, id, fmt.Errorf("owner %q is not the signed-in user", ownerID))
	}
	return nil
}

func mapRemoteError(op, id string, err error) error {
	apiErr := asAPIError(err)
	if apiErr == nil {
		return notes.NetworkError(op, id, err)
	}
	switch apiErr.StatusCode {
	case http.StatusNotFound:
		return notes.NotFoundError(op, id, err)
	case http.StatusBadRequest:
		if len(apiErr.Fields) > 0 {
			return notes.ValidationError(op, id, notes.FieldErrors(apiErr.Fields))
		}
	}
	return notes.NetworkError(op, id, err)
}
