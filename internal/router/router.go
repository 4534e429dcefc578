// Package router wires handlers, middleware and route groups onto the
// Echo instance. Routes split into four surfaces: public health and
// auth, gate operations open to every authenticated role, the
// approval surface for authorities, and admin-only management.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/handler"
	"github.com/iliyamo/campus-gate-entry/internal/middleware"
	"github.com/iliyamo/campus-gate-entry/internal/model"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints. Login, refresh and
// logout live under /v1/auth without a token; /v1/me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// gateGroup builds the protected /v1 group shared by the role-scoped
// registration functions.
func gateGroup(e *echo.Echo, jwtSecret string, roles []string, extra ...echo.MiddlewareFunc) *echo.Group {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(roles...))
	for _, m := range extra {
		g.Use(m)
	}
	return g
}

// allRoles is the full set of login roles; every authenticated user
// may operate the gate desk.
func allRoles() []string {
	return []string{model.UserRoleAdmin, model.UserRoleAuthority, model.UserRoleUser}
}
