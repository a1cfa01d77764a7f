package types

import "time"

// Note is a single user-owned note. Content holds sanitized HTML markup.
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Archived  bool      `json:"archived"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteDraft carries the caller-supplied fields of a note being created.
// Identity and timestamps are assigned by the store.
type NoteDraft struct {
	Title    string   `json:"title" validate:"max=200"`
	Content  string   `json:"content" validate:"max=1000000"`
	Tags     []string `json:"tags" validate:"max=50,dive,max=64"`
	Archived bool     `json:"archived"`
	Pinned   bool     `json:"pinned"`
}

// NotePatch is a merge patch: nil fields are left untouched.
type NotePatch struct {
	Title    *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Content  *string   `json:"content,omitempty" validate:"omitempty,max=1000000"`
	Tags     *[]string `json:"tags,omitempty" validate:"omitempty,max=50,dive,max=64"`
	Archived *bool     `json:"archived,omitempty"`
	Pinned   *bool     `json:"pinned,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil && p.Archived == nil && p.Pinned == nil
}

// Apply returns a copy of note with the patch merged in. Timestamps are
// left to the caller.
func (p NotePatch) Apply(note Note) Note {
	out := note.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.Tags != nil {
		out.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Archived != nil {
		out.Archived = *p.Archived
	}
	if p.Pinned != nil {
		out.Pinned = *p.Pinned
	}
	return out
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	out := n
	if n.Tags != nil {
		out.Tags = append([]string{}, n.Tags...)
	}
	return out
}

// HasTag reports whether tag is present, compared exactly as stored.
func (n Note) HasTag(tag string) bool {
	for _, existing := range n.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}
