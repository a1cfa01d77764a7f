package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewNavigation(t *testing.T) {
	var v View
	assert.Equal(t, "All Notes", v.HeaderTitle())

	v.SelectTag("work")
	v.SetQuery("plan")
	assert.Equal(t, "#work", v.HeaderTitle())

	v.ShowArchived()
	assert.Equal(t, "Archived Notes", v.HeaderTitle())
	assert.Equal(t, "", v.Filter.Tag)
	assert.Equal(t, "plan", v.Filter.Query)
	assert.Equal(t, "Search archived notes...", v.SearchPlaceholder())

	v.ShowAll()
	assert.Equal(t, Filter{}, v.Filter)
}

func TestViewVisibleReconcilesSelection(t *testing.T) {
	v := View{}
	visible := v.Visible(sampleNotes())
	assert.Equal(t, "1", v.SelectedID)
	assert.Len(t, visible, 3)

	v.Select("4")
	v.Visible(sampleNotes())
	assert.Equal(t, "4", v.SelectedID)

	v.SetQuery("nothing matches this")
	assert.Empty(t, v.Visible(sampleNotes()))
	assert.Equal(t, "", v.SelectedID)
}

func TestViewAfterArchiveAndCreate(t *testing.T) {
	v := View{SelectedID: "a"}
	v.AfterArchive(true)
	assert.Equal(t, "", v.SelectedID)

	v = View{Filter: Filter{ShowArchived: true}, SelectedID: "a"}
	v.AfterArchive(false)
	assert.Equal(t, "a", v.SelectedID)

	v = View{Filter: Filter{ShowArchived: true, Tag: "x", Query: "q"}}
	v.AfterCreate("new")
	assert.Equal(t, View{SelectedID: "new"}, v)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "1 note", CountLabel(1))
	assert.Equal(t, "0 notes", CountLabel(0))
	assert.Equal(t, "5 notes", CountLabel(5))

	_, hint := EmptyMessage("x")
	assert.Equal(t, "Try adjusting your search terms", hint)
	_, hint = EmptyMessage("")
	assert.Equal(t, "Create your first note to get started", hint)
}
