package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/model"
	"github.com/iliyamo/campus-gate-entry/internal/repository"
)

// AuthorityHandler manages authority accounts. Listing is open to
// every authenticated role (the visitor form needs the picker); the
// mutations sit behind the admin role in the router.
type AuthorityHandler struct {
	Authorities *repository.AuthorityRepo
}

func NewAuthorityHandler(repo *repository.AuthorityRepo) *AuthorityHandler {
	return &AuthorityHandler{Authorities: repo}
}

type authorityReq struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

func (r *authorityReq) validate() (string, bool) {
	r.Name = strings.TrimSpace(r.Name)
	r.Designation = strings.TrimSpace(r.Designation)
	if r.Name == "" {
		return "name required", false
	}
	if !model.ValidDesignation(r.Designation) {
		return "invalid designation", false
	}
	if r.Role == "" {
		r.Role = model.AuthorityRoleAuthority
	}
	if r.Role != model.AuthorityRoleAdmin && r.Role != model.AuthorityRoleAuthority {
		return "invalid role", false
	}
	return "", true
}

func (r *authorityReq) apply(a *model.Authority) {
	a.Name = r.Name
	a.Designation = r.Designation
	a.Role = r.Role
	a.Department = nil
	a.Phone = nil
	a.Email = nil
	if v := strings.TrimSpace(r.Department); v != "" {
		a.Department = &v
	}
	if v := strings.TrimSpace(r.Phone); v != "" {
		a.Phone = &v
	}
	if v := strings.TrimSpace(r.Email); v != "" {
		a.Email = &v
	}
}

// List returns authorities ordered by name. ?active=true restricts to
// active accounts, the shape the visitor form's picker consumes.
func (h *AuthorityHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Authorities.List(ctx, activeOnly)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"authorities": out})
}

// Create adds a new authority, active by default.
func (h *AuthorityHandler) Create(c echo.Context) error {
	var req authorityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	a := &model.Authority{IsActive: true}
	req.apply(a)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Authorities.Create(ctx, a); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"authority": a})
}

// Update rewrites an authority's mutable fields.
func (h *AuthorityHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req authorityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Authorities.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	req.apply(a)
	if err := h.Authorities.Update(ctx, a); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"authority": a})
}

type setActiveReq struct {
	Active bool `json:"active"`
}

// SetActive flips the active flag. Deactivation hides the authority
// from the visitor form without touching history.
func (h *AuthorityHandler) SetActive(c echo.Context) error {
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

	if err := h.Authorities.SetActive(ctx, id, req.Active); err != nil {
		return respondErr(c, err)
	}
	a, err := h.Authorities.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"authority": a})
}
