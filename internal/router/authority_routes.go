package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/handler"
	"github.com/iliyamo/campus-gate-entry/internal/model"
)

// RegisterApprovals registers the permission decision surface and the
// notification inboxes. Authority and admin roles only.
func RegisterApprovals(
	e *echo.Echo,
	jwtSecret string,
	ap *handler.ApprovalHandler,
	n *handler.NotificationHandler,
	rateMW echo.MiddlewareFunc,
) {
	g := gateGroup(e, jwtSecret,
		[]string{model.UserRoleAdmin, model.UserRoleAuthority}, rateMW)

	g.GET("/approvals", ap.List)
	g.POST("/approvals/:id", ap.Decide)

	g.GET("/notifications", n.List)
	g.GET("/notifications/unread-count", n.UnreadCount)
	g.POST("/notifications/:id/read", n.MarkRead)
}
