package app

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	KeyCommandQuit          = "ui.quit"
	KeyCommandNextPane      = "ui.nextPane"
	KeyCommandPrevPane      = "ui.prevPane"
	KeyCommandToggleSidebar = "ui.toggleSidebar"
	KeyCommandOpenSearch    = "ui.openSearch"
	KeyCommandSettings      = "ui.settings"
	KeyCommandSignOut       = "ui.signOut"
	KeyCommandBack          = "ui.back"
	KeyCommandUp            = "ui.up"
	KeyCommandDown          = "ui.down"
	KeyCommandOpen          = "ui.open"
	KeyCommandNotesNew      = "notes.new"
	KeyCommandNotesSave     = "notes.save"
	KeyCommandNotesDelete   = "notes.delete"
	KeyCommandNotesArchive  = "notes.archive"
	KeyCommandNotesCopy     = "notes.copy"
	KeyCommandNotesPreview  = "notes.preview"
	KeyCommandNotesRefresh  = "notes.refresh"
)

var defaultKeybindingByCommand = map[string]string{
	KeyCommandQuit:          "ctrl+c",
	KeyCommandNextPane:      "tab",
	KeyCommandPrevPane:      "shift+tab",
	KeyCommandToggleSidebar: "ctrl+b",
	KeyCommandOpenSearch:    "/",
	KeyCommandSettings:      "ctrl+t",
	KeyCommandSignOut:       "ctrl+o",
	KeyCommandBack:          "esc",
	KeyCommandUp:            "up",
	KeyCommandDown:          "down",
	KeyCommandOpen:          "enter",
	KeyCommandNotesNew:      "ctrl+n",
	KeyCommandNotesSave:     "ctrl+s",
	KeyCommandNotesDelete:   "ctrl+d",
	KeyCommandNotesArchive:  "ctrl+e",
	KeyCommandNotesCopy:     "ctrl+y",
	KeyCommandNotesPreview:  "ctrl+p",
	KeyCommandNotesRefresh:  "ctrl+r",
}

// Secondary keys that stay bound to a command even after a remap.
var aliasKeysByCommand = map[string][]string{
	KeyCommandUp:   {"k"},
	KeyCommandDown: {"j"},
}

var helpByCommand = map[string]string{
	KeyCommandQuit:          "quit",
	KeyCommandNextPane:      "next pane",
	KeyCommandToggleSidebar: "sidebar",
	KeyCommandOpenSearch:    "search",
	KeyCommandSettings:      "settings",
	KeyCommandSignOut:       "sign out",
	KeyCommandBack:          "back",
	KeyCommandNotesNew:      "new",
	KeyCommandNotesSave:     "save",
	KeyCommandNotesDelete:   "delete",
	KeyCommandNotesArchive:  "archive",
	KeyCommandNotesCopy:     "copy",
	KeyCommandNotesPreview:  "preview",
}

// Keybindings resolves commands to key bindings, with user overrides
// applied over the defaults. Unknown commands in overrides are ignored.
type Keybindings struct {
	bindings map[string]key.Binding
}

func DefaultKeybindings() *Keybindings {
	return NewKeybindings(nil)
}

func NewKeybindings(overrides map[string]string) *Keybindings {
	byCommand := make(map[string]string, len(defaultKeybindingByCommand))
	for command, k := range defaultKeybindingByCommand {
		byCommand[command] = k
	}
	for command, k := range overrides {
		command = strings.TrimSpace(command)
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := defaultKeybindingByCommand[command]; !ok {
			continue
		}
		byCommand[command] = k
	}
	bindings := make(map[string]key.Binding, len(byCommand))
	for command, k := range byCommand {
		keys := append([]string{k}, aliasKeysByCommand[command]...)
		bindings[command] = key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(k, helpByCommand[command]),
		)
	}
	return &Keybindings{bindings: bindings}
}

func (k *Keybindings) Binding(command string) key.Binding {
	if k == nil {
		return DefaultKeybindings().Binding(command)
	}
	return k.bindings[command]
}

// KeyFor returns the primary key of command.
func (k *Keybindings) KeyFor(command string) string {
	return k.Binding(command).Help().Key
}

// Bindings maps every command to its primary key.
func (k *Keybindings) Bindings() map[string]string {
	out := make(map[string]string, len(defaultKeybindingByCommand))
	for command := range defaultKeybindingByCommand {
		out[command] = k.KeyFor(command)
	}
	return out
}

func (k *Keybindings) Matches(msg tea.KeyMsg, command string) bool {
	return key.Matches(msg, k.Binding(command))
}

// Conflicts lists keys bound to more than one command, sorted.
func (k *Keybindings) Conflicts() []string {
	seen := map[string]int{}
	for _, binding := range k.bindings {
		seen[binding.Help().Key]++
	}
	out := []string{}
	for keyName, count := range seen {
		if count > 1 {
			out = append(out, keyName)
		}
	}
	sort.Strings(out)
	return out
}

// ShortHelp and FullHelp let the bubbles help view render the bindings.
func (k *Keybindings) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Binding(KeyCommandNotesNew),
		k.Binding(KeyCommandNotesSave),
		k.Binding(KeyCommandOpenSearch),
		k.Binding(KeyCommandNextPane),
		k.Binding(KeyCommandSettings),
		k.Binding(KeyCommandQuit),
	}
}

func (k *Keybindings) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.ShortHelp(),
		{
			k.Binding(KeyCommandNotesDelete),
			k.Binding(KeyCommandNotesArchive),
			k.Binding(KeyCommandNotesCopy),
			k.Binding(KeyCommandNotesPreview),
		},
		{
			k.Binding(KeyCommandToggleSidebar),
			k.Binding(KeyCommandBack),
			k.Binding(KeyCommandSignOut),
		},
	}
}
