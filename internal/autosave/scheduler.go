package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"jotter/internal/logging"
	"jotter/internal/notes"
)

const DefaultQuietPeriod = 2 * time.Second

var ErrSaveInFlight = errors.New("save already in progress")

type State int

const (
	Clean State = iota
	Dirty
	Saving
)

func (s State) String() string {
	switch s {
	case Dirty:
		return "dirty"
	case Saving:
		return "saving"
	default:
		return "clean"
	}
}

// Fields are the editable parts of a note as the editor holds them.
type Fields struct {
	Title   string
	Content string
	Tags    []string
}

func (f Fields) Equal(other Fields) bool {
	return f.Title == other.Title && f.Content == other.Content && notes.EqualTags(f.Tags, other.Tags)
}

func (f Fields) clone() Fields {
	f.Tags = append([]string{}, f.Tags...)
	return f
}

// SaveFunc persists fields for note id. It is called without the
// scheduler's lock held.
type SaveFunc func(ctx context.Context, id string, fields Fields) error

// Status is a snapshot for rendering.
type Status struct {
	NoteID      string
	State       State
	InFlight    bool
	FieldErrors notes.FieldErrors
	Err         error
	SavedAt     time.Time
}

type Options struct {
	QuietPeriod time.Duration
	Clock       Clock
	Logger      logging.Logger
	// OnChange is called after every state change, outside the lock.
	OnChange func(Status)
}

// Scheduler debounces edits to one note at a time into single saves. Each
// edit restarts the quiet period; there is no maximum wait.
type Scheduler struct {
	save     SaveFunc
	quiet    time.Duration
	clock    Clock
	logger   logging.Logger
	onChange func(Status)

	mu      sync.Mutex
	noteID  string
	session uint64
	saved   Fields
	current Fields
	state   State
	timer   Timer
	// timerGen invalidates callbacks of timers that were stopped too late.
	timerGen  uint64
	inFlight  bool
	rearm     bool
	fieldErrs notes.FieldErrors
	lastErr   error
	savedAt   time.Time
}

func New(save SaveFunc, opts Options) *Scheduler {
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Scheduler{
		save:     save,
		quiet:    opts.QuietPeriod,
		clock:    opts.Clock,
		logger:   opts.Logger,
		onChange: opts.OnChange,
	}
}

// Open binds the scheduler to a note with its saved fields. Any pending
// timer is cancelled without saving.
func (s *Scheduler) Open(noteID string, saved Fields) {
	s.mu.Lock()
	s.stopTimerLocked()
	s.session++
	s.noteID = noteID
	s.saved = saved.clone()
	s.current = saved.clone()
	s.state = Clean
	s.inFlight = false
	s.rearm = false
	s.fieldErrs = nil
	s.lastErr = nil
	s.savedAt = time.Time{}
	status := s.statusLocked()
	s.mu.Unlock()
	s.notify(status)
}

// Close tears the session down, dropping unsaved edits.
func (s *Scheduler) Close() {
	s.Open("", Fields{})
}

// Edit records the editor's latest fields.
func (s *Scheduler) Edit(fields Fields) {
	s.mu.Lock()
	if s.noteID == "" {
		s.mu.Unlock()
		return
	}
	s.current = fields.clone()
	s.fieldErrs = nil
	switch {
	case s.inFlight:
		s.state = Dirty
		s.rearm = true
	case s.current.Equal(s.saved):
		s.stopTimerLocked()
		s.state = Clean
	default:
		s.state = Dirty
		s.armTimerLocked()
	}
	status := s.statusLocked()
	s.mu.Unlock()
	s.notify(status)
}

// SaveNow validates and saves immediately, cancelling the pending timer.
func (s *Scheduler) SaveNow(ctx context.Context) error {
	s.mu.Lock()
	if s.noteID == "" {
		s.mu.Unlock()
		return nil
	}
	s.stopTimerLocked()
	if s.inFlight {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	if fields := notes.ValidateForSave(s.current.Title, s.current.Content); fields != nil {
		s.fieldErrs = fields
		status := s.statusLocked()
		s.mu.Unlock()
		s.notify(status)
		return notes.ValidationError("save", status.NoteID, fields)
	}
	return s.runSaveLocked(ctx)
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) fire(session, gen uint64) {
	s.mu.Lock()
	if session != s.session || gen != s.timerGen || s.noteID == "" {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	if s.inFlight {
		s.rearm = true
		s.mu.Unlock()
		return
	}
	if fields := notes.ValidateForSave(s.current.Title, s.current.Content); fields != nil {
		s.fieldErrs = fields
		status := s.statusLocked()
		s.mu.Unlock()
		s.logger.Debug("autosave_blocked", logging.F("note_id", status.NoteID))
		s.notify(status)
		return
	}
	_ = s.runSaveLocked(context.Background())
}

// runSaveLocked is entered with s.mu held and returns with it released.
func (s *Scheduler) runSaveLocked(ctx context.Context) error {
	session := s.session
	id := s.noteID
	fields := s.current.clone()
	s.state = Saving
	s.inFlight = true
	s.rearm = false
	s.lastErr = nil
	status := s.statusLocked()
	s.mu.Unlock()
	s.notify(status)

	err := s.save(ctx, id, fields)

	s.mu.Lock()
	if session != s.session {
		s.mu.Unlock()
		return err
	}
	s.inFlight = false
	if err != nil {
		s.lastErr = err
		s.fieldErrs = notes.FieldErrorsOf(err)
		s.state = Dirty
		s.logger.Warn("autosave_failed", logging.F("note_id", id), logging.F("error", err))
	} else {
		s.saved = fields
		s.savedAt = s.clock.Now()
		if s.current.Equal(s.saved) {
			s.state = Clean
		} else {
			s.state = Dirty
		}
	}
	if s.rearm && s.state == Dirty {
		s.armTimerLocked()
	}
	s.rearm = false
	status = s.statusLocked()
	s.mu.Unlock()
	s.notify(status)
	return err
}

func (s *Scheduler) armTimerLocked() {
	s.stopTimerLocked()
	session, gen := s.session, s.timerGen
	s.timer = s.clock.AfterFunc(s.quiet, func() { s.fire(session, gen) })
}

func (s *Scheduler) stopTimerLocked() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) statusLocked() Status {
	return Status{
		NoteID:      s.noteID,
		State:       s.state,
		InFlight:    s.inFlight,
		FieldErrors: s.fieldErrs,
		Err:         s.lastErr,
		SavedAt:     s.savedAt,
	}
}

func (s *Scheduler) notify(status Status) {
	if s.onChange != nil {
		s.onChange(status)
	}
}
