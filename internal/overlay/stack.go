package overlay

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/mediapost/internal/adapter/metrics"
	"github.com/pscheid92/mediapost/internal/platform/observer"
)

// RemovalDelay is the time between closing an entry and removing it.
const RemovalDelay = 200 * time.Millisecond

const busyLabel = "busy"

// Misuse reasons.
const (
	misuseNilEntry      = "nil_entry"
	misuseForeignEntry  = "foreign_entry"
	misuseAlreadyClosed = "already_closed"
	misuseRemoved       = "removed"
	misuseManualClose   = "manual_close_disabled"
)

// Stack is the ordered sequence of mounted overlays. Insertion order is
// stacking order. Operations never fail; misuse is logged and ignored.
type Stack struct {
	clock   clockwork.Clock
	metrics *metrics.OverlayMetrics

	mu      sync.Mutex
	entries []*Entry

	listeners observer.Listeners[[]*Entry]
}

func NewStack(clock clockwork.Clock, m *metrics.OverlayMetrics) *Stack {
	return &Stack{clock: clock, metrics: m}
}

// Open mounts a new entry on top of the stack. It is safe to call from inside
// another entry's close callback.
func (s *Stack) Open(label string, body Content, opts ...Option) *Entry {
	e := &Entry{
		id:               uuid.New(),
		label:            label,
		body:             body,
		stack:            s,
		allowManualClose: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.metrics.Mounted.Set(float64(len(s.entries)))
	s.mu.Unlock()

	s.metrics.Opened.Inc()
	slog.Debug("Overlay opened", "overlay_id", e.id, "label", label)
	s.notify()
	return e
}

// OpenBusyIndicator mounts an indeterminate progress indicator the user cannot dismiss.
func (s *Stack) OpenBusyIndicator() *Entry {
	return s.Open(busyLabel, Static{View: ProgressIndicator{Indeterminate: true}},
		WithoutManualClose(),
		WithPreventStretch(),
		WithSuppressAutoFocus(),
	)
}

// Close marks e closed, runs its close callback with result and schedules
// its removal. Closing an entry twice only logs a warning.
func (s *Stack) Close(e *Entry, result any) {
	s.close(e, result)
}

// Dismiss closes e on behalf of the user, honouring WithoutManualClose.
// It reports whether the entry was closed.
func (s *Stack) Dismiss(e *Entry) bool {
	if e != nil && e.stack == s && !e.allowManualClose {
		s.misuse(misuseManualClose, e)
		return false
	}
	return s.close(e, nil)
}

func (s *Stack) close(e *Entry, result any) bool {
	if e == nil {
		s.misuse(misuseNilEntry, nil)
		return false
	}
	if e.stack != s {
		s.misuse(misuseForeignEntry, e)
		return false
	}

	s.mu.Lock()
	switch e.state {
	case StateClosing:
		s.mu.Unlock()
		s.misuse(misuseAlreadyClosed, e)
		return false
	case StateRemoved:
		s.mu.Unlock()
		s.misuse(misuseRemoved, e)
		return false
	}
	e.state = StateClosing
	s.mu.Unlock()

	s.metrics.Closed.Inc()
	s.runOnClose(e, result)
	s.notify()

	s.clock.AfterFunc(RemovalDelay, func() { s.remove(e) })
	return true
}

// Clear discards every entry immediately, without close callbacks or delay.
// Removals still pending for discarded entries become no-ops.
func (s *Stack) Clear() {
	s.mu.Lock()
	n := len(s.entries)
	for _, e := range s.entries {
		e.state = StateRemoved
	}
	s.entries = nil
	s.metrics.Mounted.Set(0)
	s.mu.Unlock()

	if n == 0 {
		return
	}
	s.metrics.Clears.Inc()
	slog.Debug("Overlay stack cleared", "entries", n)
	s.notify()
}

// Entries returns the mounted entries in stacking order, closing ones included.
func (s *Stack) Entries() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Subscribe registers fn to be called with the entries after every change.
func (s *Stack) Subscribe(fn func([]*Entry)) func() {
	return s.listeners.Subscribe(fn)
}

func (s *Stack) remove(e *Entry) {
	s.mu.Lock()
	idx := slices.Index(s.entries, e)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	e.state = StateRemoved
	s.entries = slices.Delete(s.entries, idx, idx+1)
	s.metrics.Mounted.Set(float64(len(s.entries)))
	s.mu.Unlock()

	s.notify()
}

func (s *Stack) runOnClose(e *Entry, result any) {
	if e.onClose == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.metrics.CallbackPanics.Inc()
			slog.Error("Overlay close callback panicked", "overlay_id", e.id, "label", e.label, "panic", r)
		}
	}()
	e.onClose(result)
}

func (s *Stack) misuse(reason string, e *Entry) {
	s.metrics.Misuse.WithLabelValues(reason).Inc()
	if e == nil {
		slog.Warn("Ignoring overlay operation", "reason", reason)
		return
	}
	slog.Warn("Ignoring overlay operation", "reason", reason, "overlay_id", e.id, "label", e.label)
}

func (s *Stack) notify() {
	s.listeners.Notify(s.Entries())
}
