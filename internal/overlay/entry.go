package overlay

import (
	"log/slog"

	"github.com/google/uuid"
)

// View is whatever the render layer knows how to draw.
type View = any

// Content is the body of an entry: a Static view or a Producer.
type Content interface {
	render(e *Entry) View
}

// Static is a body that does not depend on its entry.
type Static struct {
	View View
}

func (s Static) render(*Entry) View { return s.View }

// Producer builds the body from its entry, typically to wire a close button
// to e.Close.
type Producer func(e *Entry) View

func (p Producer) render(e *Entry) View { return p(e) }

// ProgressIndicator is the body of a busy indicator.
type ProgressIndicator struct {
	Indeterminate bool
}

type State int

const (
	StateOpen State = iota
	StateClosing
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

type Option func(*Entry)

// WithOnClose registers fn to run exactly once, when the entry is closed.
func WithOnClose(fn func(result any)) Option {
	return func(e *Entry) { e.onClose = fn }
}

// WithoutManualClose prevents the user from dismissing the entry.
func WithoutManualClose() Option {
	return func(e *Entry) { e.allowManualClose = false }
}

func WithPreventStretch() Option {
	return func(e *Entry) { e.preventStretch = true }
}

func WithSuppressAutoFocus() Option {
	return func(e *Entry) { e.suppressAutoFocus = true }
}

// Entry is a handle to an opened overlay.
type Entry struct {
	id    uuid.UUID
	label string
	body  Content
	stack *Stack

	onClose           func(result any)
	allowManualClose  bool
	preventStretch    bool
	suppressAutoFocus bool

	// guarded by stack.mu
	state State
}

func (e *Entry) ID() uuid.UUID           { return e.id }
func (e *Entry) Label() string           { return e.label }
func (e *Entry) AllowManualClose() bool  { return e.allowManualClose }
func (e *Entry) PreventStretch() bool    { return e.preventStretch }
func (e *Entry) SuppressAutoFocus() bool { return e.suppressAutoFocus }

func (e *Entry) State() State {
	if e.stack == nil {
		return StateRemoved
	}
	e.stack.mu.Lock()
	defer e.stack.mu.Unlock()
	return e.state
}

// Closed reports whether the entry has been closed or removed.
func (e *Entry) Closed() bool {
	return e.State() != StateOpen
}

// Render returns the entry's body view.
func (e *Entry) Render() View {
	if e.body == nil {
		return nil
	}
	return e.body.render(e)
}

// Close closes the entry on its stack.
func (e *Entry) Close(result any) {
	if e == nil || e.stack == nil {
		slog.Warn("Ignoring close of detached overlay entry")
		return
	}
	e.stack.Close(e, result)
}
