package app

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"

	"jotter/internal/markup"
)

// Search matches are wrapped in private-use runes before rendering and
// swapped for reverse video afterwards, so glamour never sees escapes.
const (
	highlightOpen  = "\ue000"
	highlightClose = "\ue001"
	reverseOn      = "\x1b[7m"
	reverseOff     = "\x1b[27m"
)

var (
	rendererMu       sync.Mutex
	renderersByStyle = map[markdownRendererKey]*glamour.TermRenderer{}
	markdownDarkMode = true
)

type markdownRendererKey struct {
	width int
	dark  bool
}

// renderPreview renders note markdown for the preview pane with query
// matches highlighted. Raw mode skips markdown rendering.
func renderPreview(markdown, query string, width int, raw bool) string {
	markdown = strings.TrimRight(markdown, "\n")
	if markdown == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	marked := markup.HighlightTerm(markdown, query, func(match string) string {
		return highlightOpen + match + highlightClose
	})
	var out string
	if raw {
		out = xansi.Hardwrap(marked, width, true)
	} else {
		out = renderMarkdown(marked, width)
	}
	out = strings.ReplaceAll(out, highlightOpen, reverseOn)
	return strings.ReplaceAll(out, highlightClose, reverseOff)
}

func renderMarkdown(input string, width int) string {
	input = strings.TrimRight(input, "\n")
	if input == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := getRenderer(width, markdownBackgroundDark())
	if r == nil {
		return input
	}
	out, err := r.Render(input)
	if err != nil {
		return input
	}
	out = strings.TrimRight(out, "\n")
	out = xansi.Hardwrap(out, width, true)
	return strings.TrimRight(out, "\n")
}

func markdownBackgroundDark() bool {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	return markdownDarkMode
}

func setMarkdownBackgroundDark(dark bool) bool {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	changed := markdownDarkMode != dark
	markdownDarkMode = dark
	return changed
}

func getRenderer(width int, dark bool) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	key := markdownRendererKey{width: width, dark: dark}
	if renderer, ok := renderersByStyle[key]; ok && renderer != nil {
		return renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(buildStyleConfig(dark)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderersByStyle[key] = r
	return r
}

func buildStyleConfig(dark bool) glamouransi.StyleConfig {
	var base glamouransi.StyleConfig
	if dark {
		base = styles.DarkStyleConfig
	} else {
		base = styles.LightStyleConfig
	}
	// The pane border already spaces the preview.
	base.Document.StylePrimitive.BlockPrefix = ""
	base.Document.StylePrimitive.BlockSuffix = ""
	zero := uint(0)
	base.Document.Margin = &zero
	faint := true
	color := "245"
	base.BlockQuote.StylePrimitive.Faint = &faint
	base.BlockQuote.StylePrimitive.Color = &color
	return base
}
