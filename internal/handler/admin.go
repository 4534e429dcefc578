package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/config"
	"github.com/iliyamo/campus-gate-entry/internal/export"
	"github.com/iliyamo/campus-gate-entry/internal/model"
	"github.com/iliyamo/campus-gate-entry/internal/repository"
)

// AdminHandler serves account management and the one-off Google
// Sheets setup. Admin role only; enforced in the router.
type AdminHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Sheets *export.SheetsClient // nil when unconfigured
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, s *export.SheetsClient) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: u, Tokens: t, Sheets: s}
}

type createUserReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser adds a login account. Accounts are only ever created by
// an admin; there is no open registration.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	if !model.ValidUserRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Password, req.Role, h.Cfg.BcryptCost)
	if err != nil {
		return respondErr(c, err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u})
}

// ListUsers returns every login account, newest first.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Users.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// SetUserActive flips an account's active flag. Deactivation also
// revokes every live session so the account is out immediately.
func (h *AdminHandler) SetUserActive(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req setActiveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.SetActive(ctx, id, req.Active); err != nil {
		return respondErr(c, err)
	}
	if !req.Active {
		_ = h.Tokens.RevokeAllForUser(ctx, id)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUser removes an account and revokes its sessions.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if id == getUserID(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	_ = h.Tokens.RevokeAllForUser(ctx, id)
	if err := h.Users.Delete(ctx, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// InitSheets writes the header rows to the configured spreadsheets.
func (h *AdminHandler) InitSheets(c echo.Context) error {
	if h.Sheets == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "sheets export not configured"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), submitTimeout)
	defer cancel()

	if err := h.Sheets.InitHeaders(ctx); err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "headers written"})
}
