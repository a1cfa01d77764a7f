package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"jotter/internal/markup"
	"jotter/internal/notes"
	"jotter/internal/types"
)

const (
	version        = "dev"
	commandTimeout = 15 * time.Second
	idColumnWidth  = 8
)

var errNotSignedIn = errors.New("not signed in: run `jotter login` first")

// printNotes writes a table of notes. Color is applied only when out is a
// terminal; fatih/color disables itself otherwise.
func printNotes(output io.Writer, list []types.Note) {
	idColor := color.New(color.FgHiBlack)
	tagColor := color.New(color.FgCyan)
	badge := color.New(color.FgYellow)

	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tUPDATED\tTITLE\tTAGS")
	for _, note := range list {
		title := strings.TrimSpace(note.Title)
		if title == "" {
			title = "Untitled"
		}
		if note.Archived {
			title += " " + badge.Sprint("[archived]")
		}
		tags := make([]string, 0, len(note.Tags))
		for _, tag := range note.Tags {
			tags = append(tags, "#"+tag)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			idColor.Sprint(shortID(note.ID)),
			markup.FormatDate(note.UpdatedAt),
			title,
			tagColor.Sprint(strings.Join(tags, " ")),
		)
	}
	_ = writer.Flush()
	fmt.Fprintln(output, notes.CountLabel(len(list)))
}

func shortID(id string) string {
	if len(id) > idColumnWidth {
		return id[:idColumnWidth]
	}
	return id
}

// connect builds a client, makes sure a daemon is running and, when
// requireSession is set, that a session is stored.
func connect(ctx context.Context, newClient clientFactory, requireSession bool) (commandClient, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	if err := c.EnsureDaemon(ctx, "", false); err != nil {
		return nil, err
	}
	if requireSession && c.Session() == nil {
		return nil, errNotSignedIn
	}
	return c, nil
}

// resolveNoteID accepts a full id or a unique prefix of one.
func resolveNoteID(ctx context.Context, c commandClient, raw string) (types.Note, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Note{}, errors.New("note id is required")
	}
	list, err := c.ListNotes(ctx, nil)
	if err != nil {
		return types.Note{}, err
	}
	var matches []types.Note
	for _, note := range list {
		if note.ID == raw {
			return note, nil
		}
		if strings.HasPrefix(note.ID, raw) {
			matches = append(matches, note)
		}
	}
	switch len(matches) {
	case 0:
		return types.Note{}, fmt.Errorf("no note matches %q", raw)
	case 1:
		return matches[0], nil
	default:
		return types.Note{}, fmt.Errorf("%q matches %d notes; use more of the id", raw, len(matches))
	}
}

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
