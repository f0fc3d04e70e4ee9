// Package navigation tracks the client's current location and history.
// Resolving locations to pages is left to the render layer.
package navigation

import (
	"log/slog"
	"sync"

	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/platform/observer"
)

// Location is an entry in the navigation history.
type Location struct {
	Path string
	// From is the location recorded by the navigation that led here.
	From string
}

// Router implements domain.Navigator.
type Router struct {
	mu        sync.Mutex
	history   []Location
	listeners observer.Listeners[Location]
}

var _ domain.Navigator = (*Router)(nil)

func NewRouter(initial string) *Router {
	if initial == "" {
		initial = "/"
	}
	return &Router{history: []Location{{Path: initial}}}
}

func (r *Router) CurrentLocation() string {
	return r.Location().Path
}

func (r *Router) Location() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history[len(r.history)-1]
}

// NavigateTo moves to path, replacing the current history entry when
// opts.Replace is set. Navigating to the current path does nothing.
func (r *Router) NavigateTo(path string, opts domain.NavigateOptions) {
	if path == "" {
		path = "/"
	}
	next := Location{Path: path, From: opts.From}

	r.mu.Lock()
	current := r.history[len(r.history)-1]
	if current.Path == path {
		r.mu.Unlock()
		return
	}
	if opts.Replace {
		r.history[len(r.history)-1] = next
	} else {
		r.history = append(r.history, next)
	}
	r.mu.Unlock()

	slog.Debug("Navigated", "from", current.Path, "to", path, "replace", opts.Replace)
	r.listeners.Notify(next)
}

// Back returns to the previous history entry. It reports false at the start
// of the history.
func (r *Router) Back() bool {
	r.mu.Lock()
	if len(r.history) < 2 {
		r.mu.Unlock()
		return false
	}
	r.history = r.history[:len(r.history)-1]
	current := r.history[len(r.history)-1]
	r.mu.Unlock()

	r.listeners.Notify(current)
	return true
}

// ReturnTo yields the location recorded by the navigation that led to the
// current one, or "" when none was recorded.
func (r *Router) ReturnTo() string {
	return r.Location().From
}

// History returns the visited paths, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, len(r.history))
	for i, l := range r.history {
		paths[i] = l.Path
	}
	return paths
}

// Subscribe registers fn to be called with the new location after every
// path change.
func (r *Router) Subscribe(fn func(Location)) func() {
	return r.listeners.Subscribe(fn)
}
