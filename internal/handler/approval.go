package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/repository"
	"github.com/iliyamo/campus-gate-entry/internal/service"
)

// ApprovalHandler serves the permission decision surface used by
// authorities.
type ApprovalHandler struct {
	Svc      *service.AdmissionService
	Visitors *repository.VisitorRepo
}

func NewApprovalHandler(svc *service.AdmissionService, repo *repository.VisitorRepo) *ApprovalHandler {
	return &ApprovalHandler{Svc: svc, Visitors: repo}
}

type decideReq struct {
	Approve bool `json:"approve"`
}

// List returns visitors awaiting a decision, newest first, with the
// assigned authority resolved for display.
func (h *ApprovalHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Visitors.ListPending(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"approvals": out})
}

// Decide resolves one pending request. Deciding an already-processed
// visitor yields 409; both decision paths clear the request from
// every notification inbox.
func (h *ApprovalHandler) Decide(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req decideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	v, err := h.Svc.Decide(ctx, id, req.Approve)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"visitor": v})
}
