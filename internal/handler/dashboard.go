package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-gate-entry/internal/model"
	"github.com/iliyamo/campus-gate-entry/internal/repository"
)

// DashboardHandler aggregates the gate office's landing screen:
// counters plus a merged feed of the latest visitor and bus activity.
type DashboardHandler struct {
	Visitors    *repository.VisitorRepo
	Buses       *repository.BusRepo
	Authorities *repository.AuthorityRepo
}

func NewDashboardHandler(v *repository.VisitorRepo, b *repository.BusRepo, a *repository.AuthorityRepo) *DashboardHandler {
	return &DashboardHandler{Visitors: v, Buses: b, Authorities: a}
}

const recentLimit = 10

// activityItem is one row of the merged recent-activity feed.
type activityItem struct {
	Kind      string    `json:"kind"` // "visitor" or "bus"
	ID        uint64    `json:"id"`
	Label     string    `json:"label"`
	Status    string    `json:"status"`
	EntryTime time.Time `json:"entry_time"`
}

// Stats returns the dashboard counters and the recent activity feed.
// "Today" is the UTC calendar day.
func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	vs, err := h.Visitors.Stats(ctx, dayStart, dayEnd)
	if err != nil {
		return respondErr(c, err)
	}
	bs, err := h.Buses.Stats(ctx, dayStart, dayEnd)
	if err != nil {
		return respondErr(c, err)
	}
	authorities, err := h.Authorities.CountActive(ctx)
	if err != nil {
		return respondErr(c, err)
	}

	recentVisitors, err := h.Visitors.Recent(ctx, recentLimit)
	if err != nil {
		return respondErr(c, err)
	}
	recentBuses, err := h.Buses.Recent(ctx, recentLimit)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"visitors":           vs,
		"buses":              bs,
		"active_authorities": authorities,
		"recent":             mergeActivity(recentVisitors, recentBuses),
	})
}

// mergeActivity interleaves visitor and bus records into one feed,
// newest entry first, capped at recentLimit.
func mergeActivity(visitors []*model.Visitor, buses []*model.BusEntry) []activityItem {
	items := make([]activityItem, 0, len(visitors)+len(buses))
	for _, v := range visitors {
		items = append(items, activityItem{
			Kind: "visitor", ID: v.ID, Label: v.Name, Status: v.Status, EntryTime: v.EntryTime,
		})
	}
	for _, b := range buses {
		items = append(items, activityItem{
			Kind: "bus", ID: b.ID, Label: b.BusNumber, Status: b.Status, EntryTime: b.EntryTime,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].EntryTime.After(items[j].EntryTime)
	})
	if len(items) > recentLimit {
		items = items[:recentLimit]
	}
	return items
}
