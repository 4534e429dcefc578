package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/handler"
)

// RegisterGate registers the gate-desk operations available to every
// authenticated role: visitor and bus registration, searching,
// checkout, listings, reports and the dashboard. The rate limiter
// covers the whole surface; the response cache is applied only to the
// read-mostly endpoints passed in cacheMW.
func RegisterGate(
	e *echo.Echo,
	jwtSecret string,
	v *handler.VisitorHandler,
	b *handler.VehicleHandler,
	a *handler.AuthorityHandler,
	r *handler.ReportHandler,
	d *handler.DashboardHandler,
	rateMW, cacheMW echo.MiddlewareFunc,
) {
	g := gateGroup(e, jwtSecret, allRoles(), rateMW)

	g.POST("/visitors", v.Submit)
	g.GET("/visitors", v.List)
	g.GET("/visitors/on-premises", v.Search)
	g.GET("/visitors/:id", v.Get)
	g.POST("/visitors/:id/checkout", v.Checkout)

	g.POST("/buses", b.Register)
	g.GET("/buses", b.List)
	g.GET("/buses/entered", b.Search)
	g.POST("/buses/:id/exit", b.Exit)

	// The authority picker on the visitor form; cached since the set
	// changes rarely.
	g.GET("/authorities", a.List, cacheMW)

	g.GET("/reports", r.Report)
	g.GET("/export/visitors.csv", r.ExportVisitorsCSV)
	g.GET("/export/buses.csv", r.ExportBusesCSV)

	g.GET("/dashboard", d.Stats, cacheMW)
}
