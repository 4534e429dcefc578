package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/repository"
)

// NotificationHandler serves the authority notification inboxes.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(repo *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: repo}
}

// List returns notifications newest first. An authority_id query
// restricts the listing to that inbox; without it the shared screen
// sees everything.
func (h *NotificationHandler) List(c echo.Context) error {
	var authorityID uint64
	if s := c.QueryParam("authority_id"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid authority_id"})
		}
		authorityID = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Notifications.List(ctx, authorityID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out})
}

// UnreadCount returns the unread badge counter for one authority.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	s := c.QueryParam("authority_id")
	authorityID, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "authority_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Notifications.UnreadCount(ctx, authorityID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

// MarkRead flips one notification's read flag.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Notifications.GetByID(ctx, id); err != nil {
		return respondErr(c, err)
	}
	if err := h.Notifications.MarkRead(ctx, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
