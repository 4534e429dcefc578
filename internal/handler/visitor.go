package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/repository"
	"github.com/iliyamo/campus-gate-entry/internal/service"
)

// VisitorHandler serves visitor registration, lookup and checkout.
type VisitorHandler struct {
	Svc      *service.AdmissionService
	Visitors *repository.VisitorRepo
}

func NewVisitorHandler(svc *service.AdmissionService, repo *repository.VisitorRepo) *VisitorHandler {
	return &VisitorHandler{Svc: svc, Visitors: repo}
}

type submitVisitorReq struct {
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	Purpose          string  `json:"purpose"`
	Notes            string  `json:"notes"`
	AuthorityID      *uint64 `json:"authority_id"`
	PhotoBase64      string  `json:"photo_base64"`
	PhotoContentType string  `json:"photo_content_type"`
}

// Submit registers a visitor at the gate. The photo arrives base64
// encoded from the kiosk camera; a bad encoding is a 400 rather than
// a silently dropped photo.
func (h *VisitorHandler) Submit(c echo.Context) error {
	var req submitVisitorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var photo []byte
	if req.PhotoBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.PhotoBase64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid photo encoding"})
		}
		photo = data
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), submitTimeout)
	defer cancel()

	res, err := h.Svc.Submit(ctx, service.SubmitInput{
		Name:             req.Name,
		Phone:            req.Phone,
		Email:            req.Email,
		Purpose:          req.Purpose,
		Notes:            req.Notes,
		AuthorityID:      req.AuthorityID,
		Photo:            photo,
		PhotoContentType: req.PhotoContentType,
		CreatedBy:        getUsername(c),
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"visitor":   res.Visitor,
		"forwarded": res.Forwarded,
	})
}

// Search finds visitors still on the premises by partial name or
// phone match. The exit desk uses it to pick the record to stamp out.
func (h *VisitorHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Visitors.SearchOnPremises(ctx, q)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"visitors": out})
}

// Checkout stamps the exit time on a visitor.
func (h *VisitorHandler) Checkout(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	v, err := h.Svc.Checkout(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"visitor": v})
}

// Get returns one visitor by id.
func (h *VisitorHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	v, err := h.Visitors.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"visitor": v})
}

// List returns visitor history newest first, optionally filtered by
// status and an entry-date window (YYYY-MM-DD).
func (h *VisitorHandler) List(c echo.Context) error {
	from, to, err := dayRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Visitors.List(ctx, repository.VisitorFilter{
		Status: strings.TrimSpace(c.QueryParam("status")),
		From:   from,
		To:     to,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"visitors": out})
}
