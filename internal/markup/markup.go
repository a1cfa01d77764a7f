package markup

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const PreviewLength = 100

var (
	// htmlTagPattern detects stored content that is markup rather than
	// plain text typed before conversion existed.
	htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|u|s|strong|em|a|ul|ol|li|h[1-6]|blockquote|pre|code)[\s>/]`)
	hashtagPattern = regexp.MustCompile(`#[\w-]+`)
	spacePattern   = regexp.MustCompile(`\s+`)

	strictPolicy = bluemonday.StrictPolicy()
	converter    = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// ToMarkdown converts stored markup into the markdown the editor edits.
// Content without markup is returned unchanged.
func ToMarkdown(content string) string {
	if content == "" || !containsHTML(content) {
		return content
	}
	markdown, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(markdown)
}

// ToHTML renders editor markdown into the markup that is stored.
func ToHTML(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := converter.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// PlainText strips all markup and collapses whitespace.
func PlainText(content string) string {
	text := strictPolicy.Sanitize(content)
	text = html.UnescapeString(text)
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// Preview is the list-row snippet: plain text cut at limit runes with
// "..." appended when cut.
func Preview(content string, limit int) string {
	text := PlainText(content)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}

// HighlightTerm wraps every case-insensitive occurrence of term in text
// with mark. The term is matched literally.
func HighlightTerm(text, term string, mark func(string) string) string {
	if strings.TrimSpace(term) == "" || text == "" || mark == nil {
		return text
	}
	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(term))
	if err != nil {
		return text
	}
	return pattern.ReplaceAllStringFunc(text, mark)
}

// FormatDate renders t like "Jan 2, 2006" in local time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006")
}

// ExtractTags returns the #hashtags in content, lowercased, without the
// leading '#', in first-seen order and without repeats.
func ExtractTags(content string) []string {
	matches := hashtagPattern.FindAllString(content, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		tag := strings.ToLower(strings.TrimPrefix(match, "#"))
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
