package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"jotter/internal/markup"
	"jotter/internal/notes"
	"jotter/internal/types"
)

type LSCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewLSCommand(stdout, stderr io.Writer, newClient clientFactory) *LSCommand {
	return &LSCommand{stdout: stdout, stderr: stderr, newClient: newClient}
}

// Run lists notes through the same filter the UI uses, so archived, tag
// and query behave identically.
func (c *LSCommand) Run(args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	archived := fs.Bool("archived", false, "list archived notes")
	tag := fs.String("tag", "", "only notes with this tag")
	query := fs.String("query", "", "case-insensitive match on title and content")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	api, err := connect(ctx, c.newClient, true)
	if err != nil {
		return err
	}
	list, err := api.ListNotes(ctx, nil)
	if err != nil {
		return err
	}
	view := notes.View{}
	if *archived {
		view.ShowArchived()
	}
	if strings.TrimSpace(*tag) != "" {
		view.SelectTag(notes.NormalizeTag(*tag))
	}
	view.SetQuery(*query)
	printNotes(c.stdout, view.Visible(list))
	return nil
}

type NewCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewNewCommand(stdout, stderr io.Writer, newClient clientFactory) *NewCommand {
	return &NewCommand{stdout: stdout, stderr: stderr, newClient: newClient}
}

func (c *NewCommand) Run(args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	title := fs.String("title", "", "note title")
	content := fs.String("content", "", "note body as markdown")
	var tags stringList
	fs.Var(&tags, "tag", "tag (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	draft := notes.NewNoteDraft()
	if strings.TrimSpace(*title) != "" {
		draft.Title = strings.TrimSpace(*title)
	}
	html, err := markup.ToHTML(*content)
	if err != nil {
		return err
	}
	draft.Content = html
	for _, tag := range tags {
		draft.Tags, _ = notes.AddTag(draft.Tags, tag)
	}
	for _, tag := range markup.ExtractTags(html) {
		draft.Tags, _ = notes.AddTag(draft.Tags, tag)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	api, err := connect(ctx, c.newClient, true)
	if err != nil {
		return err
	}
	created, err := api.InsertNote(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, created.ID)
	return nil
}

type RmCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewRmCommand(stdout, stderr io.Writer, newClient clientFactory) *RmCommand {
	return &RmCommand{stdout: stdout, stderr: stderr, newClient: newClient}
}

func (c *RmCommand) Run(args []string) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("rm requires a note id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	api, err := connect(ctx, c.newClient, true)
	if err != nil {
		return err
	}
	note, err := resolveNoteID(ctx, api, fs.Arg(0))
	if err != nil {
		return err
	}
	if err := api.DeleteNote(ctx, note.ID); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}

type ArchiveCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewArchiveCommand(stdout, stderr io.Writer, newClient clientFactory) *ArchiveCommand {
	return &ArchiveCommand{stdout: stdout, stderr: stderr, newClient: newClient}
}

func (c *ArchiveCommand) Run(args []string) error {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	undo := fs.Bool("undo", false, "restore an archived note")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("archive requires a note id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	api, err := connect(ctx, c.newClient, true)
	if err != nil {
		return err
	}
	note, err := resolveNoteID(ctx, api, fs.Arg(0))
	if err != nil {
		return err
	}
	archived := !*undo
	if _, err := api.UpdateNote(ctx, note.ID, types.NotePatch{Archived: &archived}); err != nil {
		return err
	}
	if archived {
		fmt.Fprintln(c.stdout, "archived")
	} else {
		fmt.Fprintln(c.stdout, "restored")
	}
	return nil
}
