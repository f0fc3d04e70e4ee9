package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_http_errors_total"}, []string{"type"})
}

func serve(t *testing.T, counter *prometheus.CounterVec, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Middleware(counter)(handler)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestMiddleware_StructuredError(t *testing.T) {
	counter := newCounter()
	rec := serve(t, counter, func(c echo.Context) error {
		return UnauthorizedError("invalid access token").WithContext("reason", "expired")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid access token", resp.Error)
	assert.Equal(t, TypeUnauthorized, resp.Type)
	assert.Equal(t, "expired", resp.Context["reason"])
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("unauthorized")))
}

func TestMiddleware_PlainErrorBecomesInternal(t *testing.T) {
	counter := newCounter()
	rec := serve(t, counter, func(c echo.Context) error {
		return fmt.Errorf("store exploded")
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
	assert.NotContains(t, rec.Body.String(), "store exploded")
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("internal")))
}

func TestMiddleware_EchoErrorPassesThrough(t *testing.T) {
	counter := newCounter()
	rec := serve(t, counter, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("forbidden")))
}

func TestMiddleware_NoError(t *testing.T) {
	rec := serve(t, nil, func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWrapHTTPError(t *testing.T) {
	tests := []struct {
		code     int
		wantType ErrorType
	}{
		{http.StatusBadRequest, TypeValidation},
		{http.StatusUnauthorized, TypeUnauthorized},
		{http.StatusForbidden, TypeForbidden},
		{http.StatusNotFound, TypeNotFound},
		{http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := WrapHTTPError(echo.NewHTTPError(tt.code, "msg"))
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, "msg", err.Message)
		})
	}
}
