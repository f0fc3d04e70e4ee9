package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/mediapost/internal/domain"
	apperrors "github.com/pscheid92/mediapost/internal/platform/errors"
)

func (s *Server) registerAuthRoutes(rateLimiter echo.MiddlewareFunc) {
	auth := s.echo.Group("/api/auth", rateLimiter)
	auth.POST("/login", s.handleLogin)
	auth.POST("/refresh", s.handleRefresh)
	auth.POST("/logout", s.handleLogout)
}

func (s *Server) handleLogin(c echo.Context) error {
	var creds domain.Credentials
	if err := c.Bind(&creds); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if creds.Username == "" || creds.Password == "" {
		return apperrors.ValidationError("username and password are required")
	}

	identity, err := s.store.Authenticate(creds)
	if errors.Is(err, errInvalidCredentials) {
		return apperrors.UnauthorizedError("invalid credentials").WithContext("username", creds.Username)
	}
	if err != nil {
		return apperrors.InternalError("failed to authenticate", err)
	}
	if identity.Banned {
		return apperrors.ForbiddenError("account is banned").WithContext("user_id", identity.ID)
	}

	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	session.Values[sessionKeyUserID] = identity.ID
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}

	slog.InfoContext(c.Request().Context(), "User logged in", "user_id", identity.ID, "username", identity.Username)
	return s.respondWithToken(c, identity)
}

// handleRefresh answers null when the client holds no session cookie, and 401
// when the cookie names an account that no longer qualifies.
func (s *Server) handleRefresh(c echo.Context) error {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		s.expireSession(c, session)
		return apperrors.UnauthorizedError("invalid session")
	}

	userID, ok := session.Values[sessionKeyUserID].(int64)
	if !ok {
		if err := c.JSON(http.StatusOK, nil); err != nil {
			return fmt.Errorf("failed to write refresh response: %w", err)
		}
		return nil
	}

	identity, ok := s.store.UserByID(userID)
	if !ok || identity.Banned {
		slog.WarnContext(c.Request().Context(), "Session references unusable account, invalidating", "user_id", userID)
		s.expireSession(c, session)
		return apperrors.UnauthorizedError("session is no longer valid").WithContext("user_id", userID)
	}

	return s.respondWithToken(c, identity)
}

func (s *Server) handleLogout(c echo.Context) error {
	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	s.expireSession(c, session)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) respondWithToken(c echo.Context, identity domain.Identity) error {
	token, expiresIn, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return apperrors.InternalError("failed to issue token", err)
	}

	result := domain.LoginResult{
		Token:             token,
		ExpirationSeconds: expiresIn,
		Identity:          identity,
	}
	if err := c.JSON(http.StatusOK, result); err != nil {
		return fmt.Errorf("failed to write token response: %w", err)
	}
	return nil
}

func (s *Server) expireSession(c echo.Context, session *sessions.Session) {
	if session == nil {
		return
	}
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.WarnContext(c.Request().Context(), "Failed to expire session", "error", err)
	}
}
