package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"jotter/internal/autosave"
	"jotter/internal/notes"
	"jotter/internal/types"
)

const (
	remoteTimeout = 8 * time.Second
	authTimeout   = 10 * time.Second
)

func loadNotesCmd(controller *notes.Controller, ownerID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		err := controller.Load(ctx, ownerID)
		return notesLoadedMsg{ownerID: ownerID, err: err}
	}
}

func createNoteCmd(controller *notes.Controller, draft types.NoteDraft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		note, err := controller.Create(ctx, draft)
		return noteCreatedMsg{note: note, err: err}
	}
}

func archiveNoteCmd(controller *notes.Controller, id string, archived bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		note, err := controller.Archive(ctx, id, archived)
		return noteArchivedMsg{note: note, err: err}
	}
}

func deleteNoteCmd(controller *notes.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		err := controller.Delete(ctx, id)
		return noteDeletedMsg{id: id, err: err}
	}
}

func authenticateCmd(api AuthAPI, mode authMode, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		var (
			session *types.AuthSession
			err     error
		)
		if mode == authModeSignUp {
			session, err = api.SignUp(ctx, email, password)
		} else {
			session, err = api.SignIn(ctx, email, password)
		}
		return authResultMsg{session: session, err: err}
	}
}

func signOutCmd(api AuthAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		return signedOutMsg{err: api.SignOut(ctx)}
	}
}

func saveNowCmd(scheduler *autosave.Scheduler) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		return saveResultMsg{err: scheduler.SaveNow(ctx)}
	}
}

func searchDebounceCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
}

func copyTextCmd(text string) tea.Cmd {
	return func() tea.Msg {
		method, err := copyTextToClipboard(text)
		return copiedMsg{method: method, err: err}
	}
}
