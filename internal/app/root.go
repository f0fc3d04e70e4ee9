package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/navigation"
	"github.com/pscheid92/mediapost/internal/overlay"
	"github.com/pscheid92/mediapost/internal/session"
)

const (
	homePath   = "/"
	errorLabel = "error"
)

// ErrorView is the body of the overlay shown when an operation fails.
type ErrorView struct {
	Title   string
	Message string
}

type Root struct {
	session  *session.Coordinator
	overlays *overlay.Stack
	router   *navigation.Router
	stop     func()
}

func NewRoot(coordinator *session.Coordinator, overlays *overlay.Stack, router *navigation.Router) *Root {
	r := &Root{
		session:  coordinator,
		overlays: overlays,
		router:   router,
	}
	r.stop = router.Subscribe(func(navigation.Location) {
		overlays.Clear()
	})
	return r
}

func (r *Root) Session() *session.Coordinator { return r.session }
func (r *Root) Overlays() *overlay.Stack      { return r.overlays }
func (r *Root) Router() *navigation.Router    { return r.router }

// RunBusy runs fn behind a busy indicator. A failure other than a missing
// session is also shown as an error overlay; either way it is returned.
func (r *Root) RunBusy(ctx context.Context, title string, fn func(ctx context.Context) error) error {
	busy := r.overlays.OpenBusyIndicator()
	err := fn(ctx)

	// a login redirect inside fn already cleared the stack
	if !busy.Closed() {
		busy.Close(nil)
	}

	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrAuthorizationRequired) {
		r.ShowError(title, err)
	}
	return err
}

// ShowError opens an error overlay for err.
func (r *Root) ShowError(title string, err error) *overlay.Entry {
	slog.Warn("Operation failed", "operation", title, "error", err)
	return r.overlays.Open(errorLabel, overlay.Static{View: ErrorView{Title: title, Message: err.Error()}})
}

// CompleteLogin logs in and goes back to the location the login redirect
// came from, or home when there was none.
func (r *Root) CompleteLogin(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	var identity *domain.Identity
	err := r.RunBusy(ctx, "Login failed", func(ctx context.Context) error {
		var err error
		identity, err = r.session.Login(ctx, creds)
		return err
	})
	if err != nil {
		return nil, err
	}

	target := r.router.ReturnTo()
	if target == "" {
		target = homePath
	}
	r.router.NavigateTo(target, domain.NavigateOptions{Replace: true})
	return identity, nil
}

// Logout ends the session and goes home. A backend failure is shown after
// the navigation so the error overlay survives it.
func (r *Root) Logout(ctx context.Context) error {
	busy := r.overlays.OpenBusyIndicator()
	err := r.session.Logout(ctx)
	busy.Close(nil)

	r.router.NavigateTo(homePath, domain.NavigateOptions{})
	if err != nil {
		r.ShowError("Logout failed", err)
	}
	return err
}

// Stop detaches the root from the router.
func (r *Root) Stop() {
	r.stop()
}
