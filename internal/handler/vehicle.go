package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/repository"
	"github.com/iliyamo/campus-gate-entry/internal/service"
)

// VehicleHandler serves bus registration, lookup and exit.
type VehicleHandler struct {
	Svc   *service.VehicleService
	Buses *repository.BusRepo
}

func NewVehicleHandler(svc *service.VehicleService, repo *repository.BusRepo) *VehicleHandler {
	return &VehicleHandler{Svc: svc, Buses: repo}
}

type registerBusReq struct {
	BusNumber      string  `json:"bus_number"`
	DriverName     string  `json:"driver_name"`
	DriverPhone    string  `json:"driver_phone"`
	Route          string  `json:"route"`
	PassengerCount *uint32 `json:"passenger_count"`
	Notes          string  `json:"notes"`
}

// Register records a bus entering the campus.
func (h *VehicleHandler) Register(c echo.Context) error {
	var req registerBusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	res, err := h.Svc.Register(ctx, service.RegisterInput{
		BusNumber:      req.BusNumber,
		DriverName:     req.DriverName,
		DriverPhone:    req.DriverPhone,
		Route:          req.Route,
		PassengerCount: req.PassengerCount,
		Notes:          req.Notes,
		CreatedBy:      getUsername(c),
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"bus":       res.Bus,
		"forwarded": res.Forwarded,
	})
}

// Search finds currently-entered buses by partial bus number.
func (h *VehicleHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Buses.SearchEntered(ctx, q)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"buses": out})
}

// Exit stamps the exit time on a bus still inside.
func (h *VehicleHandler) Exit(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Svc.Exit(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bus": b})
}

// List returns bus history newest first, optionally filtered by
// status and an entry-date window (YYYY-MM-DD).
func (h *VehicleHandler) List(c echo.Context) error {
	from, to, err := dayRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Buses.List(ctx, repository.BusFilter{
		Status: strings.TrimSpace(c.QueryParam("status")),
		From:   from,
		To:     to,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"buses": out})
}
