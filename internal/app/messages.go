package app

import "jotter/internal/types"

type notesLoadedMsg struct {
	ownerID string
	err     error
}

type noteCreatedMsg struct {
	note types.Note
	err  error
}

type noteArchivedMsg struct {
	note types.Note
	err  error
}

type noteDeletedMsg struct {
	id  string
	err error
}

type authResultMsg struct {
	session *types.AuthSession
	err     error
}

type signedOutMsg struct {
	err error
}

type searchDebounceMsg struct {
	seq int
}

// autosaveChangedMsg only wakes the UI; the scheduler is read directly.
type autosaveChangedMsg struct{}

type saveResultMsg struct {
	err error
}

type copiedMsg struct {
	method clipboardMethod
	err    error
}
