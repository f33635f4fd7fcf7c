package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jimuelll/EchoSpace/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, mw gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/who", mw, func(c *gin.Context) {
		id, _ := UserID(c)
		c.String(http.StatusOK, id)
	})
	return r
}

func issuer(t *testing.T) *pkg.TokenIssuer {
	t.Helper()
	tokens, err := pkg.NewTokenIssuer("mw-secret", time.Hour)
	require.NoError(t, err)
	return tokens
}

func do(r http.Handler, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsBearerAndCookie(t *testing.T) {
	tokens := issuer(t)
	r := newEngine(t, Auth(tokens))
	tok, err := tokens.Generate("user-1")
	require.NoError(t, err)

	w := do(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+tok) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	w = do(r, func(req *http.Request) { req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tok}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	// Bearer null 时回退到 cookie
	w = do(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer null")
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tok})
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejects(t *testing.T) {
	tokens := issuer(t)
	r := newEngine(t, Auth(tokens))

	w := do(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)

	w = do(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer garbage") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := pkg.NewTokenIssuer("other-secret", time.Hour)
	require.NoError(t, err)
	tok, err := other.Generate("user-1")
	require.NoError(t, err)
	w = do(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+tok) })
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := issuer(t)
	r := newEngine(t, OptionalAuth(tokens))

	w := do(r, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer garbage") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	tok, err := tokens.Generate("user-2")
	require.NoError(t, err)
	w = do(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+tok) })
	assert.Equal(t, "user-2", w.Body.String())
}
