package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/export"
	"github.com/iliyamo/campus-gate-entry/internal/model"
	"github.com/iliyamo/campus-gate-entry/internal/repository"
)

// ReportHandler serves the history/report surface and the CSV
// downloads derived from it.
type ReportHandler struct {
	Visitors *repository.VisitorRepo
	Buses    *repository.BusRepo
}

func NewReportHandler(v *repository.VisitorRepo, b *repository.BusRepo) *ReportHandler {
	return &ReportHandler{Visitors: v, Buses: b}
}

// reportSummary carries the counters shown above the report table.
type reportSummary struct {
	TotalVisitors int `json:"total_visitors"`
	TotalBuses    int `json:"total_buses"`
	Approved      int `json:"approved"`
	Rejected      int `json:"rejected"`
	Pending       int `json:"pending"`
	Exited        int `json:"exited"`
}

// Report returns visitor and bus history bounded by start/end dates
// (YYYY-MM-DD, inclusive) with summary counters. type=visitors or
// type=buses restricts to one table; status filters both.
func (h *ReportHandler) Report(c echo.Context) error {
	from, to, err := dayRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	kind := c.QueryParam("type")
	status := c.QueryParam("status")

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var (
		visitors []repository.VisitorDetail
		buses    []*model.BusEntry
		sum      reportSummary
	)

	if kind == "" || kind == "visitors" {
		visitors, err = h.Visitors.List(ctx, repository.VisitorFilter{Status: status, From: from, To: to})
		if err != nil {
			return respondErr(c, err)
		}
		sum.TotalVisitors = len(visitors)
		for _, v := range visitors {
			switch v.Status {
			case model.VisitorStatusApproved:
				sum.Approved++
			case model.VisitorStatusRejected:
				sum.Rejected++
			case model.VisitorStatusPending:
				sum.Pending++
			case model.VisitorStatusExited:
				sum.Exited++
			}
		}
	}
	if kind == "" || kind == "buses" {
		buses, err = h.Buses.List(ctx, repository.BusFilter{Status: status, From: from, To: to})
		if err != nil {
			return respondErr(c, err)
		}
		sum.TotalBuses = len(buses)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"summary":  sum,
		"visitors": visitors,
		"buses":    buses,
	})
}

func csvDownload(c echo.Context, filename, body string) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(body))
}

// ExportVisitorsCSV streams the filtered visitor history as a CSV
// download.
func (h *ReportHandler) ExportVisitorsCSV(c echo.Context) error {
	from, to, err := dayRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Visitors.List(ctx, repository.VisitorFilter{
		Status: c.QueryParam("status"), From: from, To: to,
	})
	if err != nil {
		return respondErr(c, err)
	}
	name := "visitors-" + time.Now().UTC().Format("20060102") + ".csv"
	return csvDownload(c, name, export.VisitorsCSV(rows))
}

// ExportBusesCSV streams the filtered bus history as a CSV download.
func (h *ReportHandler) ExportBusesCSV(c echo.Context) error {
	from, to, err := dayRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Buses.List(ctx, repository.BusFilter{
		Status: c.QueryParam("status"), From: from, To: to,
	})
	if err != nil {
		return respondErr(c, err)
	}
	name := "bus-entries-" + time.Now().UTC().Format("20060102") + ".csv"
	return csvDownload(c, name, export.BusesCSV(rows))
}
