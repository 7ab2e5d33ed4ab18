package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("middleware-secret")

func newToken(t *testing.T, role string) string {
	t.Helper()
	tok, _, err := tokens.NewAccessToken(testSecret, "11111111-1111-1111-1111-111111111111", role, time.Minute)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var seen echo.Context
	err := mw(func(c echo.Context) error {
		seen = c
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, seen, err
}

func TestRequireAuth(t *testing.T) {
	m := NewJWTMiddleware(testSecret)

	t.Run("missing token", func(t *testing.T) {
		_, seen, err := run(t, m.RequireAuth, httptest.NewRequest(http.MethodGet, "/", nil))
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
		assert.Nil(t, seen)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+newToken(t, RoleUser))
		rec, seen, err := run(t, m.RequireAuth, req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		id, role, ok := Identity(seen)
		assert.True(t, ok)
		assert.Equal(t, "11111111-1111-1111-1111-111111111111", id)
		assert.Equal(t, RoleUser, role)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: tokens.AccessCookieName, Value: newToken(t, RoleUser)})
		_, seen, err := run(t, m.RequireAuth, req)
		require.NoError(t, err)
		_, _, ok := Identity(seen)
		assert.True(t, ok)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer nope")
		_, _, err := run(t, m.RequireAuth, req)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	m := NewJWTMiddleware(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+newToken(t, RoleUser))
	_, _, err := run(t, m.RequireAdmin, req)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusForbidden, he.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+newToken(t, RoleAdmin))
	_, seen, err := run(t, m.RequireAdmin, req)
	require.NoError(t, err)
	_, role, _ := Identity(seen)
	assert.Equal(t, RoleAdmin, role)
}

func TestOptional(t *testing.T) {
	m := NewJWTMiddleware(testSecret)

	_, seen, err := run(t, m.Optional, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_, _, ok := Identity(seen)
	assert.False(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer broken")
	_, seen, err = run(t, m.Optional, req)
	require.NoError(t, err)
	_, _, ok = Identity(seen)
	assert.False(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+newToken(t, RoleUser))
	_, seen, err = run(t, m.Optional, req)
	require.NoError(t, err)
	_, _, ok = Identity(seen)
	assert.True(t, ok)
}
