package layout

// Breakpoint is the logical width below which the layout is compact.
const Breakpoint = 1024

type Mode int

const (
	Wide Mode = iota
	Compact
)

func (m Mode) String() string {
	if m == Compact {
		return "compact"
	}
	return "wide"
}

// ModeFor maps a logical width to a layout mode.
func ModeFor(widthPx int) Mode {
	if widthPx < Breakpoint {
		return Compact
	}
	return Wide
}

// State derives panel visibility from the viewport width and whether a
// note is selected. In compact mode only one of list and editor shows.
type State struct {
	mode             Mode
	selected         bool
	sidebarCollapsed bool
}

func New(widthPx int, selected bool) State {
	s := State{selected: selected}
	s.Resize(widthPx)
	return s
}

// Resize recomputes the mode. Being compact with a selection collapses
// the sidebar so the editor gets the screen.
func (s *State) Resize(widthPx int) {
	s.mode = ModeFor(widthPx)
	if s.mode == Compact && s.selected {
		s.sidebarCollapsed = true
	}
}

// Select records that a note was opened.
func (s *State) Select() {
	s.selected = true
	if s.mode == Compact {
		s.sidebarCollapsed = true
	}
}

// SetSelected tracks the selection without opening the note. A later
// resize into compact mode collapses the sidebar when a note is selected.
func (s *State) SetSelected(selected bool) {
	if !selected {
		s.Deselect()
		return
	}
	s.selected = true
}

// Deselect records that nothing is selected anymore, as after a delete.
func (s *State) Deselect() {
	s.selected = false
	if s.mode == Compact {
		s.sidebarCollapsed = false
	}
}

// Back returns from the editor to the list in compact mode.
func (s *State) Back() {
	if s.mode == Compact {
		s.sidebarCollapsed = false
	}
}

func (s *State) ToggleSidebar() {
	s.sidebarCollapsed = !s.sidebarCollapsed
}

func (s State) Mode() Mode { return s.mode }

func (s State) Compact() bool { return s.mode == Compact }

// SidebarVisible reports whether the full sidebar shows. In compact mode it
// overlays the list; in wide mode a collapsed sidebar shrinks to a rail.
func (s State) SidebarVisible() bool {
	return !s.sidebarCollapsed
}

// ListVisible is false only while compact with a note open.
func (s State) ListVisible() bool {
	return !(s.mode == Compact && s.sidebarCollapsed && s.selected)
}

func (s State) EditorVisible() bool {
	if s.mode == Wide {
		return true
	}
	return s.sidebarCollapsed && s.selected
}
