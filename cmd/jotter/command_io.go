package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"jotter/internal/noteio"
)

type ExportCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewExportCommand(stdout, stderr io.Writer, newClient clientFactory) *ExportCommand {
	return &ExportCommand{stdout: stdout, stderr: stderr, newClient: newClient}
}

func (c *ExportCommand) Run(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dir := fs.String("dir", "", "directory to write markdown files into")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*dir) == "" {
		return errors.New("export requires --dir")
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
	paths, err := noteio.Export(*dir, list)
	for _, path := range paths {
		fmt.Fprintln(c.stdout, path)
	}
	return err
}

type ImportCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewImportCommand(stdout, stderr io.Writer, newClient clientFactory) *ImportCommand {
	return &ImportCommand{stdout: stdout, stderr: stderr, newClient: newClient}
}

// Run creates one note per matched file. Files that fail to parse are
// reported and skipped.
func (c *ImportCommand) Run(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("import requires a file pattern")
	}
	var files []string
	for _, pattern := range fs.Args() {
		matches, err := noteio.Match(pattern)
		if err != nil {
			return err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return errors.New("no markdown files matched")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	api, err := connect(ctx, c.newClient, true)
	if err != nil {
		return err
	}
	imported := 0
	for _, path := range files {
		draft, err := noteio.ReadDraft(path)
		if err != nil {
			fmt.Fprintf(c.stderr, "skip %s: %v\n", path, err)
			continue
		}
		created, err := api.InsertNote(ctx, draft)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		imported++
		fmt.Fprintf(c.stdout, "%s\t%s\n", shortID(created.ID), path)
	}
	fmt.Fprintf(c.stdout, "imported %d of %d files\n", imported, len(files))
	return nil
}
