package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/handler"
	"github.com/iliyamo/campus-gate-entry/internal/model"
)

// RegisterAdmin registers account management, authority management
// and the Google Sheets setup. Admin role only.
func RegisterAdmin(
	e *echo.Echo,
	jwtSecret string,
	ad *handler.AdminHandler,
	a *handler.AuthorityHandler,
	rateMW echo.MiddlewareFunc,
) {
	g := gateGroup(e, jwtSecret, []string{model.UserRoleAdmin}, rateMW)

	g.POST("/admin/users", ad.CreateUser)
	g.GET("/admin/users", ad.ListUsers)
	g.PATCH("/admin/users/:id/active", ad.SetUserActive)
	g.DELETE("/admin/users/:id", ad.DeleteUser)

	g.POST("/admin/authorities", a.Create)
	g.PUT("/admin/authorities/:id", a.Update)
	g.PATCH("/admin/authorities/:id/active", a.SetActive)

	g.POST("/admin/sheets/init", ad.InitSheets)
}
