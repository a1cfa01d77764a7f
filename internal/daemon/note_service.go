package daemon

import (
	"context"
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"jotter/internal/store"
	"jotter/internal/types"
)

// NoteService applies owner isolation, normalization and sanitizing on top
// of a NoteStore. Notes owned by someone else are reported as not found.
type NoteService struct {
	notes     store.NoteStore
	sanitizer *bluemonday.Policy
	validator *requestValidator
}

func NewNoteService(notes store.NoteStore) *NoteService {
	return &NoteService{
		notes:     notes,
		sanitizer: bluemonday.UGCPolicy(),
		validator: newRequestValidator(),
	}
}

func (s *NoteService) List(ctx context.Context, ownerID string, archived *bool) ([]*types.Note, error) {
	if s.notes == nil {
		return nil, unavailableError("note store not available", nil)
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, unauthorizedError("unauthorized", nil)
	}
	notes, err := s.notes.List(ctx, store.NoteFilter{OwnerID: ownerID, Archived: archived})
	if err != nil {
		return nil, unavailableError(err.Error(), err)
	}
	return notes, nil
}

func (s *NoteService) Create(ctx context.Context, ownerID string, draft types.NoteDraft) (*types.Note, error) {
	if s.notes == nil {
		return nil, unavailableError("note store not available", nil)
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, unauthorizedError("unauthorized", nil)
	}
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}
	note := &types.Note{
		OwnerID:  ownerID,
		Title:    strings.TrimSpace(draft.Title),
		Content:  s.sanitizeContent(draft.Content),
		Tags:     normalizeTags(draft.Tags),
		Archived: draft.Archived,
		Pinned:   draft.Pinned,
	}
	created, err := s.notes.Upsert(ctx, note)
	if err != nil {
		return nil, unavailableError(err.Error(), err)
	}
	return created, nil
}

func (s *NoteService) Update(ctx context.Context, ownerID, id string, patch types.NotePatch) (*types.Note, error) {
	if s.notes == nil {
		return nil, unavailableError("note store not available", nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalidError("note id is required", nil)
	}
	if err := s.validator.Validate(patch); err != nil {
		return nil, err
	}
	existing, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if patch.Content != nil {
		content := s.sanitizeContent(*patch.Content)
		patch.Content = &content
	}
	if patch.Tags != nil {
		tags := normalizeTags(*patch.Tags)
		patch.Tags = &tags
	}
	merged := patch.Apply(*existing)
	updated, err := s.notes.Upsert(ctx, &merged)
	if err != nil {
		return nil, unavailableError(err.Error(), err)
	}
	return updated, nil
}

func (s *NoteService) Delete(ctx context.Context, ownerID, id string) error {
	if s.notes == nil {
		return unavailableError("note store not available", nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return invalidError("note id is required", nil)
	}
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return notFoundError("note not found", err)
		}
		return unavailableError(err.Error(), err)
	}
	return nil
}

func (s *NoteService) owned(ctx context.Context, ownerID, id string) (*types.Note, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, unauthorizedError("unauthorized", nil)
	}
	existing, ok, err := s.notes.Get(ctx, id)
	if err != nil {
		return nil, unavailableError(err.Error(), err)
	}
	if !ok || existing == nil || existing.OwnerID != ownerID {
		return nil, notFoundError("note not found", store.ErrNoteNotFound)
	}
	return existing, nil
}

func (s *NoteService) sanitizeContent(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	return s.sanitizer.Sanitize(content)
}

// normalizeTags trims and lowercases, dropping blanks and repeats while
// keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
