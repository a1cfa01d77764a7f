package notes

import "jotter/internal/types"

// ReconcileSelection returns the selection after the visible set changed.
// An empty set clears it and no selection picks the first note. Any other
// selection is kept, including one the filter no longer shows; callers
// clear it explicitly where that matters (archive, delete).
func ReconcileSelection(selectedID string, visible []types.Note) string {
	if len(visible) == 0 {
		return ""
	}
	if selectedID == "" {
		return visible[0].ID
	}
	return selectedID
}
