package notes

import (
	"sort"
	"strings"

	"jotter/internal/types"
)

// Filter is the view state that narrows the collection.
type Filter struct {
	ShowArchived bool
	Tag          string
	Query        string
}

// Matches applies the archived, tag and query predicates in that order. A
// blank query is no filter; any other query matches as typed.
func (f Filter) Matches(note types.Note) bool {
	if note.Archived != f.ShowArchived {
		return false
	}
	if f.Tag != "" && !note.HasTag(f.Tag) {
		return false
	}
	if strings.TrimSpace(f.Query) == "" {
		return true
	}
	query := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(note.Title), query) || strings.Contains(strings.ToLower(note.Content), query) {
		return true
	}
	for _, tag := range note.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Apply returns the matching notes in input order.
func Apply(list []types.Note, f Filter) []types.Note {
	out := make([]types.Note, 0, len(list))
	for _, note := range list {
		if f.Matches(note) {
			out = append(out, note)
		}
	}
	return out
}

// TagUniverse returns every tag used anywhere in list, deduplicated and
// sorted ascending.
func TagUniverse(list []types.Note) []string {
	set := make(map[string]struct{})
	for _, note := range list {
		for _, tag := range note.Tags {
			set[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
