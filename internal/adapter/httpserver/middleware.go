package httpserver

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/platform/correlation"
	apperrors "github.com/pscheid92/mediapost/internal/platform/errors"
)

// correlationMiddleware adopts the caller's correlation ID, or starts a new
// one, and echoes it back in the response.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(correlation.Header))
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.Header, id)
		return next(c)
	}
}

// requireBearer rejects requests without a valid access token.
func (s *Server) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return apperrors.UnauthorizedError("missing access token")
		}
		if err := s.authenticate(c, header); err != nil {
			return err
		}
		return next(c)
	}
}

// optionalBearer authenticates the request when it carries a token and lets
// anonymous requests through.
func (s *Server) optionalBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return next(c)
		}
		if err := s.authenticate(c, header); err != nil {
			return err
		}
		return next(c)
	}
}

func (s *Server) authenticate(c echo.Context, header string) error {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return apperrors.UnauthorizedError("malformed authorization header")
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		return apperrors.UnauthorizedError("invalid access token")
	}

	identity, ok := s.store.UserByID(userID)
	if !ok || identity.Banned {
		return apperrors.UnauthorizedError("invalid access token").WithContext("user_id", userID)
	}

	c.Set(contextKeyIdentity, identity)
	c.Set(contextKeyUserID, identity.ID)
	return nil
}

func identityFrom(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(contextKeyIdentity).(domain.Identity)
	return identity, ok
}
