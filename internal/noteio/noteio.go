package noteio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"jotter/internal/markup"
	"jotter/internal/notes"
	"jotter/internal/types"
)

const delimiter = "---"

// Frontmatter is the YAML header of an exported note.
type Frontmatter struct {
	ID       string    `yaml:"id,omitempty"`
	Title    string    `yaml:"title"`
	Tags     []string  `yaml:"tags,omitempty"`
	Archived bool      `yaml:"archived,omitempty"`
	Pinned   bool      `yaml:"pinned,omitempty"`
	Created  time.Time `yaml:"created,omitempty"`
	Updated  time.Time `yaml:"updated,omitempty"`
}

type Document struct {
	Meta Frontmatter
	Body string
}

// Encode renders note as markdown with a YAML frontmatter block.
func Encode(note types.Note) ([]byte, error) {
	meta := Frontmatter{
		ID:       note.ID,
		Title:    note.Title,
		Tags:     note.Tags,
		Archived: note.Archived,
		Pinned:   note.Pinned,
		Created:  note.CreatedAt.UTC(),
		Updated:  note.UpdatedAt.UTC(),
	}
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(meta); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	buf.WriteString(delimiter + "\n")
	if body := markup.ToMarkdown(note.Content); body != "" {
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Decode splits frontmatter from body. Files without frontmatter are all
// body.
func Decode(data []byte) (Document, error) {
	var doc Document
	if !bytes.HasPrefix(data, []byte(delimiter+"\n")) && !bytes.HasPrefix(data, []byte(delimiter+"\r\n")) {
		doc.Body = strings.TrimSpace(string(data))
		return doc, nil
	}
	rest := data[len(delimiter):]
	parts := bytes.SplitN(rest, []byte("\n"+delimiter), 2)
	if len(parts) == 1 {
		return doc, errors.New("frontmatter started but no closing delimiter found")
	}
	if err := yaml.Unmarshal(parts[0], &doc.Meta); err != nil {
		return doc, fmt.Errorf("parse frontmatter: %w", err)
	}
	doc.Body = strings.TrimSpace(string(parts[1]))
	return doc, nil
}

// Filename is a stable, filesystem-safe name for note.
func Filename(note types.Note) string {
	slug := slugify(note.Title)
	if slug == "" {
		slug = "untitled"
	}
	id := note.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return slug + ".md"
	}
	return slug + "-" + id + ".md"
}

// Export writes every note into dir and returns the written paths.
func Export(dir string, list []types.Note) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("export dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(list))
	for _, note := range list {
		data, err := Encode(note)
		if err != nil {
			return paths, fmt.Errorf("encode %s: %w", note.ID, err)
		}
		path := filepath.Join(dir, Filename(note))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Match expands a glob that may contain ** into markdown files.
func Match(pattern string) ([]string, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	out := matches[:0]
	for _, match := range matches {
		if strings.EqualFold(filepath.Ext(match), ".md") {
			out = append(out, match)
		}
	}
	return out, nil
}

// ReadDraft loads a markdown file as a note draft. The title falls back to
// the file name; tags come from frontmatter plus #hashtags in the body.
func ReadDraft(path string) (types.NoteDraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.NoteDraft{}, err
	}
	doc, err := Decode(data)
	if err != nil {
		return types.NoteDraft{}, fmt.Errorf("%s: %w", path, err)
	}
	content, err := markup.ToHTML(doc.Body)
	if err != nil {
		return types.NoteDraft{}, fmt.Errorf("%s: %w", path, err)
	}
	title := strings.TrimSpace(doc.Meta.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	tags := append(append([]string{}, doc.Meta.Tags...), markup.ExtractTags(doc.Body)...)
	return types.NoteDraft{
		Title:    title,
		Content:  content,
		Tags:     notes.NormalizeTags(tags),
		Archived: doc.Meta.Archived,
		Pinned:   doc.Meta.Pinned,
	}, nil
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
