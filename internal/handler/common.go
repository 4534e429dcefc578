// Package handler exposes the gate API over HTTP. Each handler
// bundles its dependencies in a struct and maps repository sentinel
// errors onto HTTP statuses in one place.
package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/repository"
	"github.com/iliyamo/campus-gate-entry/internal/service"
)

const (
	dbTimeout = 5 * time.Second
	// Registration may carry a photo upload to the blob store.
	submitTimeout = 30 * time.Second
)

// getUserID extracts the authenticated user's ID from the context.
// JWT numeric claims decode as float64; some encoders use strings.
func getUserID(c echo.Context) uint64 {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v)
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// getUsername returns the authenticated username, the actor recorded
// as created_by on gate writes.
func getUsername(c echo.Context) string {
	if s, ok := c.Get("name").(string); ok {
		return s
	}
	return ""
}

// paramID parses the :id route parameter.
func paramID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// respondErr maps workflow and repository errors onto HTTP statuses.
func respondErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrVisitorNotFound),
		errors.Is(err, repository.ErrBusNotFound),
		errors.Is(err, repository.ErrAuthorityNotFound),
		errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// dayRange parses optional start/end date strings (YYYY-MM-DD) into
// entry-time bounds covering whole days in UTC. The end date is
// inclusive for the caller: the returned upper bound is the start of
// the following day, applied exclusively by the repositories.
func dayRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return nil, nil, err
		}
		next := t.Add(24 * time.Hour)
		to = &next
	}
	return from, to, nil
}
