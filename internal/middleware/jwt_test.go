package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-gate-entry/internal/utils"
)

func protectedEcho(secret string, roles ...string) *echo.Echo {
	e := echo.New()
	g := e.Group("/v1")
	g.Use(JWTAuth(secret))
	if len(roles) > 0 {
		g.Use(RequireRole(roles...))
	}
	g.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"name": c.Get("name"),
			"role": c.Get("role"),
		})
	})
	return e
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	e := protectedEcho("secret")
	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other", 1, "gate", "user", 5)
	require.NoError(t, err)

	e := protectedEcho("secret")
	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthInjectsClaims(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 1, "gate", "user", 5)
	require.NoError(t, err)

	e := protectedEcho("secret")
	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"gate","role":"user"}`, rec.Body.String())
}

func TestRequireRoleForbidsOutsiders(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 1, "gate", "user", 5)
	require.NoError(t, err)

	e := protectedEcho("secret", "admin", "authority")
	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleAdmitsListedRole(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 1, "registrar", "admin", 5)
	require.NoError(t, err)

	e := protectedEcho("secret", "admin", "authority")
	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
