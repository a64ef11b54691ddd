package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_HTTPErrorWithBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(echo.NewHTTPError(http.StatusBadRequest, dto.ErrorResponse{
		Message: "Datos inválidos", Error: "Field is required: nombre", Details: "nombre",
	}), c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Datos inválidos", body.Message)
	assert.Equal(t, "nombre", body.Details)
}

func TestErrorHandler_EchoStringMessage(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(echo.ErrMethodNotAllowed, c)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mensaje":"Method Not Allowed"`)
}

func TestErrorHandler_PlainError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(errors.New("boom"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"boom"`)
}

// fakeScripter answers every script run with a fixed result.
type fakeScripter struct {
	redis.Scripter
	val  []any
	err  error
	keys []string
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...any) *redis.Cmd {
	f.keys = append(f.keys, keys...)
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(f.val)
	}
	return cmd
}

func (f *fakeScripter) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return f.EvalSha(ctx, script, keys, args...)
}

func runLimited(t *testing.T, s redis.Scripter) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Use(RateLimit(RateLimitConfig{Capacity: 2}, s))
	e.GET("/api/eventos", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/eventos", nil))
	return rec
}

func TestRateLimit_Allows(t *testing.T) {
	s := &fakeScripter{val: []any{int64(1), int64(1), int64(0)}}
	rec := runLimited(t, s)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	require.Len(t, s.keys, 1)
	assert.Contains(t, s.keys[0], "route:GET /api/eventos")
}

func TestRateLimit_Blocks(t *testing.T) {
	rec := runLimited(t, &fakeScripter{val: []any{int64(0), int64(0), int64(1500)}})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestRateLimit_RedisDownPassesThrough(t *testing.T) {
	rec := runLimited(t, &fakeScripter{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusOK, rec.Code)
}
