// Package console is a text front end over the client state: it renders the
// current location, session and overlay stack, and runs an interactive
// command loop.
package console

import (
	"fmt"
	"io"
	"time"

	"github.com/pscheid92/mediapost/internal/app"
	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/navigation"
	"github.com/pscheid92/mediapost/internal/overlay"
	"github.com/pscheid92/mediapost/internal/session"
)

// RenderStatus writes a one-line summary of location and session.
func RenderStatus(w io.Writer, loc navigation.Location, s session.Session, now time.Time) {
	switch {
	case !s.Authenticated():
		_, _ = fmt.Fprintf(w, "[%s] anonymous\n", loc.Path)
	case !s.Valid(now):
		_, _ = fmt.Fprintf(w, "[%s] %s (token expired)\n", loc.Path, s.Identity.Name())
	default:
		_, _ = fmt.Fprintf(w, "[%s] %s (token valid for %s)\n", loc.Path, s.Identity.Name(), s.ExpiresAt.Sub(now).Round(time.Second))
	}
}

// RenderOverlays writes the overlay stack, bottom to top. Indices are 1-based.
func RenderOverlays(w io.Writer, entries []*overlay.Entry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "no overlays")
		return
	}
	for i, e := range entries {
		flags := ""
		if !e.AllowManualClose() {
			flags = " [locked]"
		}
		_, _ = fmt.Fprintf(w, "%d. %s (%s)%s: %s\n", i+1, e.Label(), e.State(), flags, RenderView(e.Render()))
	}
}

// RenderView turns an overlay body into text.
func RenderView(v overlay.View) string {
	switch view := v.(type) {
	case nil:
		return "-"
	case overlay.ProgressIndicator:
		if view.Indeterminate {
			return "working..."
		}
		return "progress"
	case app.ErrorView:
		return view.Title + ": " + view.Message
	case string:
		return view
	case fmt.Stringer:
		return view.String()
	default:
		return fmt.Sprintf("%v", view)
	}
}

// RenderIdentity writes the identity's profile.
func RenderIdentity(w io.Writer, id *domain.Identity) {
	if id == nil {
		_, _ = fmt.Fprintln(w, "not signed in")
		return
	}
	_, _ = fmt.Fprintf(w, "#%d %s (@%s)\n", id.ID, id.Name(), id.Username)
	if id.Email != "" {
		confirmed := "unconfirmed"
		if id.EmailConfirmed {
			confirmed = "confirmed"
		}
		_, _ = fmt.Fprintf(w, "  email:  %s (%s)\n", id.Email, confirmed)
	}
	_, _ = fmt.Fprintf(w, "  joined: %s\n", id.CreatedAt.Format(time.DateOnly))
	if id.Admin {
		_, _ = fmt.Fprintln(w, "  admin")
	}
	if id.Banned {
		_, _ = fmt.Fprintln(w, "  banned")
	}
}

// RenderPosts writes one line per post.
func RenderPosts(w io.Writer, posts []domain.Post) {
	if len(posts) == 0 {
		_, _ = fmt.Fprintln(w, "no posts")
		return
	}
	for _, p := range posts {
		_, _ = fmt.Fprintf(w, "#%d %q by %s  %s\n", p.ID, p.Title, p.AuthorName, p.MediaURL)
	}
}
