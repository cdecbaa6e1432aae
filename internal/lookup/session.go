package lookup

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/at-ishikawa/pacha/internal/dictionary"
	"github.com/at-ishikawa/pacha/internal/search"
)

// ErrorMessage is the only failure text shown to users.
const ErrorMessage = "Something went wrong. Please try again."

const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultTimeout  = 10 * time.Second
)

// State is a phase of a lookup session.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateResults
	StateEmpty
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateResults:
		return "results"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is the observable state of a Session.
type Snapshot struct {
	State   State
	Query   string
	Mode    search.Mode
	Results []dictionary.Entry
	Message string
	// Seq is the sequence number of the request the snapshot belongs to.
	Seq uint64
}

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock schedules debounce timers.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SessionOptions configures a Session. Zero durations fall back to the defaults.
type SessionOptions struct {
	Debounce time.Duration
	Timeout  time.Duration
	Clock    Clock
	// OnChange is called after every state change, in order.
	// It may call State but must not call Input, SetMode or Close.
	OnChange func(Snapshot)
}

// Session turns keystroke-level input into debounced searches.
// Only the response to the most recently issued request is ever applied.
type Session struct {
	searcher search.Searcher
	debounce time.Duration
	timeout  time.Duration
	clock    Clock
	onChange func(Snapshot)

	mu       sync.Mutex
	notifyMu sync.Mutex
	text     string
	mode     search.Mode
	snapshot Snapshot
	timer    Timer
	timerGen uint64
	seq      uint64
	cancel   context.CancelFunc
	closed   bool
	wg       sync.WaitGroup
}

// NewSession creates a Session in the Idle state.
func NewSession(searcher search.Searcher, opts SessionOptions) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	return &Session{
		searcher: searcher,
		debounce: opts.Debounce,
		timeout:  opts.Timeout,
		clock:    opts.Clock,
		onChange: opts.OnChange,
		mode:     search.ModeAny,
		snapshot: Snapshot{State: StateIdle, Mode: search.ModeAny},
	}
}

// State returns the current snapshot.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Input records the current text. Blank text moves to Idle at once;
// anything else restarts the debounce timer.
func (s *Session) Input(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.text = text
	s.stopTimerLocked()

	if strings.TrimSpace(text) == "" {
		s.invalidateLocked()
		s.setLocked(Snapshot{State: StateIdle, Mode: s.mode, Seq: s.seq})
		return
	}
	s.scheduleLocked()
	s.mu.Unlock()
}

// SetMode switches the language direction, clears results and searches again
// after the debounce if there is text.
func (s *Session) SetMode(mode search.Mode) {
	if mode == "" {
		mode = search.ModeAny
	}

	s.mu.Lock()
	if s.closed || mode == s.mode {
		s.mu.Unlock()
		return
	}
	s.mode = mode
	s.stopTimerLocked()
	s.invalidateLocked()
	if strings.TrimSpace(s.text) != "" {
		s.scheduleLocked()
	}
	s.setLocked(Snapshot{State: StateIdle, Mode: mode, Seq: s.seq})
}

// Flush issues a pending debounced search at once and waits until in-flight
// requests have returned and their state changes have been delivered.
func (s *Session) Flush() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	pending := s.timer != nil
	gen := s.timerGen
	if pending {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if pending {
		s.fire(gen)
	}
	s.wg.Wait()
}

// Close stops the timer, cancels any in-flight request and waits for it to return.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.invalidateLocked()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Session) scheduleLocked() {
	s.timerGen++
	gen := s.timerGen
	s.timer = s.clock.AfterFunc(s.debounce, func() {
		s.fire(gen)
	})
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// A timer that already fired but has not taken the lock yet sees a new generation
	s.timerGen++
}

// invalidateLocked cancels the in-flight request and makes its response stale.
func (s *Session) invalidateLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.timerGen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	// Each scheduled timer fires at most once, whether from the clock or from Flush
	s.timerGen++
	text := strings.TrimSpace(s.text)
	if text == "" {
		s.mu.Unlock()
		return
	}

	s.invalidateLocked()
	seq := s.seq
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.cancel = cancel
	query := search.Query{Text: text, Mode: s.mode}
	s.wg.Add(1)
	go s.run(ctx, cancel, seq, query)

	s.setLocked(Snapshot{State: StateSearching, Query: text, Mode: query.Mode, Seq: seq})
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, seq uint64, query search.Query) {
	defer s.wg.Done()
	defer cancel()

	entries, err := s.searcher.Search(ctx, query)

	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		slog.Default().Debug("discarded stale lookup response",
			"query", query.Text,
			"seq", seq)
		return
	}
	s.cancel = nil

	snapshot := Snapshot{Query: query.Text, Mode: query.Mode, Seq: seq}
	switch {
	case err != nil:
		slog.Default().Warn("lookup failed",
			"query", query.Text,
			"mode", query.Mode,
			"error", err)
		snapshot.State = StateError
		snapshot.Message = ErrorMessage
	case len(entries) == 0:
		snapshot.State = StateEmpty
		snapshot.Results = []dictionary.Entry{}
	default:
		snapshot.State = StateResults
		snapshot.Results = entries
	}
	s.setLocked(snapshot)
}

// setLocked stores the snapshot, releases s.mu and notifies the observer.
// notifyMu is taken before s.mu is released so observers see changes in order.
func (s *Session) setLocked(snapshot Snapshot) {
	s.snapshot = snapshot
	if s.onChange == nil {
		s.mu.Unlock()
		return
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	s.onChange(snapshot)
}
