package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"swiftshop/internal/config"
	"swiftshop/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  int64(42),
		"role": "USER",
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	}
}

// ミドルウェアを通した結果とcontextの中身を返す
func runAuthJWT(authz string) (*httptest.ResponseRecorder, echo.Context, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cfg := config.Config{JWTSecret: testSecret}
	reached := false
	h := middleware.AuthJWT(cfg)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	_ = h(c)
	return rec, c, reached
}

func TestAuthJWT_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, validClaims())

	rec, c, reached := runAuthJWT("Bearer " + token)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), c.Get(middleware.CtxUserIDKey))
	assert.Equal(t, "USER", c.Get(middleware.CtxUserRoleKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec, _, reached := runAuthJWT("")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	token := signToken(t, testSecret, validClaims())

	rec, _, reached := runAuthJWT("Basic " + token)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_MalformedToken(t *testing.T) {
	rec, _, reached := runAuthJWT("Bearer not.a.jwt")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", validClaims())

	rec, _, reached := runAuthJWT("Bearer " + token)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, testSecret, claims)

	rec, _, reached := runAuthJWT("Bearer " + token)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_MissingRole(t *testing.T) {
	claims := validClaims()
	delete(claims, "role")
	token := signToken(t, testSecret, claims)

	rec, _, reached := runAuthJWT("Bearer " + token)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoleGuard(t *testing.T) {
	e := echo.New()

	run := func(role interface{}) (int, bool) {
		req := httptest.NewRequest(http.MethodPost, "/admin/items", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set(middleware.CtxUserRoleKey, role)
		}
		reached := false
		h := middleware.AdminRoleGuard()(func(c echo.Context) error {
			reached = true
			return c.NoContent(http.StatusOK)
		})
		_ = h(c)
		return rec.Code, reached
	}

	code, reached := run("ADMIN")
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, code)

	code, reached = run("USER")
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, code)

	code, reached = run(nil)
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, code)
}
