package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func testConfig() config.Config {
	return config.Config{JWTSecret: testSecret}
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return s
}

func runAuthJWT(authz string) (*httptest.ResponseRecorder, echo.Context, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	nextCalled := false
	h := middleware.AuthJWT(testConfig())(func(c echo.Context) error {
		nextCalled = true
		return c.NoContent(http.StatusOK)
	})
	_ = h(c)
	return rec, c, nextCalled
}

func TestAuthJWT_ValidToken(t *testing.T) {
	now := time.Now()
	tokenStr := signToken(t, jwt.MapClaims{
		"sub":  float64(10),
		"role": "USER",
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	})

	rec, c, nextCalled := runAuthJWT("Bearer " + tokenStr)

	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(10), c.Get(middleware.CtxUserIDKey))
	assert.Equal(t, "USER", c.Get(middleware.CtxUserRoleKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec, _, nextCalled := runAuthJWT("")

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	rec, _, nextCalled := runAuthJWT("Basic abc")

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  float64(10),
		"role": "USER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte("another-secret"))
	assert.NoError(t, err)

	rec, _, nextCalled := runAuthJWT("Bearer " + s)

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	tokenStr := signToken(t, jwt.MapClaims{
		"sub":  float64(10),
		"role": "USER",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})

	rec, _, nextCalled := runAuthJWT("Bearer " + tokenStr)

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_MissingRole(t *testing.T) {
	tokenStr := signToken(t, jwt.MapClaims{
		"sub": float64(10),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, _, nextCalled := runAuthJWT("Bearer " + tokenStr)

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_StringSub(t *testing.T) {
	tokenStr := signToken(t, jwt.MapClaims{
		"sub":  "10",
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	_, c, nextCalled := runAuthJWT("Bearer " + tokenStr)

	assert.True(t, nextCalled)
	assert.Equal(t, int64(10), c.Get(middleware.CtxUserIDKey))
	assert.Equal(t, "ADMIN", c.Get(middleware.CtxUserRoleKey))
}
