package prefs

import (
	"fmt"
	"strings"
	"sync"

	"jotter/internal/config"
	"jotter/internal/logging"
)

const (
	DefaultColor = "blue"
	DefaultFont  = "sans"
)

// Palette holds the accent shades for one color choice.
type Palette struct {
	Primary      string
	PrimaryHover string
	PrimaryLight string
	Accent       string
}

// Font describes how body text renders for one font choice.
type Font struct {
	Name   string
	Italic bool
	// Raw skips markdown rendering and shows the source as typed.
	Raw bool
}

var palettes = map[string]Palette{
	"blue":   {Primary: "#2563eb", PrimaryHover: "#1d4ed8", PrimaryLight: "#eff6ff", Accent: "#dbeafe"},
	"purple": {Primary: "#9333ea", PrimaryHover: "#7e22ce", PrimaryLight: "#faf5ff", Accent: "#f3e8ff"},
	"green":  {Primary: "#16a34a", PrimaryHover: "#15803d", PrimaryLight: "#f0fdf4", Accent: "#dcfce7"},
	"orange": {Primary: "#ea580c", PrimaryHover: "#c2410c", PrimaryLight: "#fff7ed", Accent: "#ffedd5"},
}

var fonts = map[string]Font{
	"sans":  {Name: "Inter"},
	"serif": {Name: "Playfair Display", Italic: true},
	"mono":  {Name: "JetBrains Mono", Raw: true},
}

var (
	colorOrder = []string{"blue", "purple", "green", "orange"}
	fontOrder  = []string{"sans", "serif", "mono"}
)

func ColorNames() []string { return append([]string(nil), colorOrder...) }

func FontNames() []string { return append([]string(nil), fontOrder...) }

// Store persists the two choices.
type Store interface {
	Load() (Values, error)
	Save(Values) error
}

type Values struct {
	Color string `toml:"color"`
	Font  string `toml:"font"`
}

// Preferences is the process-wide theme choice. It is created once with
// Init and handed to whoever renders; every change is written back.
type Preferences struct {
	store  Store
	logger logging.Logger

	mu     sync.RWMutex
	values Values
}

// Init loads persisted values, falling back to defaults for anything
// missing or unknown. A load failure is logged and yields defaults.
func Init(store Store, logger logging.Logger) *Preferences {
	if logger == nil {
		logger = logging.Nop()
	}
	p := &Preferences{store: store, logger: logger, values: Values{Color: DefaultColor, Font: DefaultFont}}
	if store == nil {
		return p
	}
	loaded, err := store.Load()
	if err != nil {
		logger.Warn("preferences_load_failed", logging.F("error", err))
		return p
	}
	if _, ok := palettes[normalize(loaded.Color)]; ok {
		p.values.Color = normalize(loaded.Color)
	}
	if _, ok := fonts[normalize(loaded.Font)]; ok {
		p.values.Font = normalize(loaded.Font)
	}
	return p
}

func (p *Preferences) Values() Values {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values
}

func (p *Preferences) ColorName() string { return p.Values().Color }

func (p *Preferences) FontName() string { return p.Values().Font }

func (p *Preferences) Palette() Palette { return palettes[p.ColorName()] }

func (p *Preferences) Font() Font { return fonts[p.FontName()] }

// SetColor switches the palette and persists. Unknown names are rejected
// and leave the current choice in place.
func (p *Preferences) SetColor(name string) error {
	name = normalize(name)
	if _, ok := palettes[name]; !ok {
		return fmt.Errorf("unknown color %q (choose from %s)", name, strings.Join(colorOrder, ", "))
	}
	return p.update(func(v *Values) { v.Color = name })
}

func (p *Preferences) SetFont(name string) error {
	name = normalize(name)
	if _, ok := fonts[name]; !ok {
		return fmt.Errorf("unknown font %q (choose from %s)", name, strings.Join(fontOrder, ", "))
	}
	return p.update(func(v *Values) { v.Font = name })
}

// CycleColor moves to the next palette in display order.
func (p *Preferences) CycleColor() error {
	return p.SetColor(next(colorOrder, p.ColorName()))
}

func (p *Preferences) CycleFont() error {
	return p.SetFont(next(fontOrder, p.FontName()))
}

func (p *Preferences) update(apply func(*Values)) error {
	p.mu.Lock()
	apply(&p.values)
	values := p.values
	p.mu.Unlock()
	if p.store == nil {
		return nil
	}
	if err := p.store.Save(values); err != nil {
		p.logger.Warn("preferences_save_failed", logging.F("error", err))
		return err
	}
	return nil
}

func next(order []string, current string) string {
	for i, name := range order {
		if name == current {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TOMLStore keeps preferences in a TOML file.
type TOMLStore struct {
	path string
}

func NewTOMLStore(path string) *TOMLStore {
	return &TOMLStore{path: path}
}

// DefaultStore uses the preferences file in the data dir.
func DefaultStore() (*TOMLStore, error) {
	path, err := config.PreferencesPath()
	if err != nil {
		return nil, err
	}
	return NewTOMLStore(path), nil
}

func (s *TOMLStore) Load() (Values, error) {
	var values Values
	if err := config.ReadTOML(s.path, &values); err != nil {
		return Values{}, err
	}
	return values, nil
}

func (s *TOMLStore) Save(values Values) error {
	return config.WriteTOML(s.path, values)
}
