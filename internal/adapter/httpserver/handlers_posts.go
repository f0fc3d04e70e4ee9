package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/mediapost/internal/domain"
	apperrors "github.com/pscheid92/mediapost/internal/platform/errors"
)

const maxTitleLength = 200

func (s *Server) registerPostRoutes() {
	api := s.echo.Group("/api")
	api.GET("/posts", s.handleListPosts, s.optionalBearer)
	api.POST("/posts", s.handleCreatePost, s.requireBearer)
	api.DELETE("/posts/:id", s.handleDeletePost, s.requireBearer)
	api.GET("/me", s.handleMe, s.requireBearer)
}

func (s *Server) handleListPosts(c echo.Context) error {
	posts := s.store.ListPosts(c.QueryParam("q"))
	if err := c.JSON(http.StatusOK, posts); err != nil {
		return fmt.Errorf("failed to write posts response: %w", err)
	}
	return nil
}

func (s *Server) handleCreatePost(c echo.Context) error {
	identity, ok := identityFrom(c)
	if !ok {
		return apperrors.UnauthorizedError("missing access token")
	}

	var post domain.NewPost
	if err := c.Bind(&post); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	post.Title = strings.TrimSpace(post.Title)
	if err := validateNewPost(post); err != nil {
		return err
	}

	created := s.store.CreatePost(identity, post)
	if err := c.JSON(http.StatusCreated, created); err != nil {
		return fmt.Errorf("failed to write post response: %w", err)
	}
	return nil
}

func (s *Server) handleDeletePost(c echo.Context) error {
	identity, ok := identityFrom(c)
	if !ok {
		return apperrors.UnauthorizedError("missing access token")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperrors.ValidationError("invalid post id")
	}

	err = s.store.DeletePost(id, identity)
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		return apperrors.NotFoundError("post not found").WithContext("post_id", id)
	case errors.Is(err, errNotPostOwner):
		return apperrors.ForbiddenError("post belongs to another user").WithContext("post_id", id)
	case err != nil:
		return apperrors.InternalError("failed to delete post", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleMe(c echo.Context) error {
	identity, ok := identityFrom(c)
	if !ok {
		return apperrors.UnauthorizedError("missing access token")
	}
	if err := c.JSON(http.StatusOK, identity); err != nil {
		return fmt.Errorf("failed to write identity response: %w", err)
	}
	return nil
}

func validateNewPost(post domain.NewPost) error {
	if post.Title == "" {
		return apperrors.ValidationError("title is required").WithContext("field", "title")
	}
	if len(post.Title) > maxTitleLength {
		return apperrors.ValidationError("title is too long").
			WithContext("field", "title").
			WithContext("max_length", maxTitleLength)
	}

	u, err := url.Parse(post.MediaURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.ValidationError("media_url must be an absolute http(s) URL").WithContext("field", "media_url")
	}
	return nil
}
