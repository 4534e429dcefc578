package export

import (
	"context"
	"time"

	"github.com/iliyamo/campus-gate-entry/internal/model"
	"github.com/iliyamo/campus-gate-entry/internal/queue"
)

// Forwarder fans each finalized gate record out to every configured
// sink: webhook endpoints, Google Sheets and the message broker. The
// registration methods report whether the webhook or sheet accepted
// the record; broker publishes are fire-and-forget.
type Forwarder struct {
	Webhook *WebhookClient
	Sheets  *SheetsClient // nil when unconfigured
}

// NewForwarder builds the composite forwarder.
func NewForwarder(webhook *WebhookClient, sheets *SheetsClient) *Forwarder {
	return &Forwarder{Webhook: webhook, Sheets: sheets}
}

func timeStr(t time.Time) string {
	return t.Format("02/01/2006 03:04 PM")
}

func optTimeStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timeStr(*t)
	return &s
}

func visitorSummary(v *model.Visitor, authorityName string) VisitorSummary {
	s := VisitorSummary{
		Name:      v.Name,
		Phone:     v.Phone,
		Email:     v.Email,
		Purpose:   v.Purpose,
		EntryTime: timeStr(v.EntryTime),
		ExitTime:  optTimeStr(v.ExitTime),
		Status:    v.Status,
		PhotoURL:  v.PhotoURL,
		Notes:     v.Notes,
	}
	if authorityName != "" {
		s.AuthorityName = &authorityName
	}
	return s
}

func busSummary(b *model.BusEntry) BusSummary {
	return BusSummary{
		BusNumber:      b.BusNumber,
		DriverName:     b.DriverName,
		DriverPhone:    b.DriverPhone,
		Route:          b.Route,
		PassengerCount: b.PassengerCount,
		EntryTime:      timeStr(b.EntryTime),
		ExitTime:       optTimeStr(b.ExitTime),
		Status:         b.Status,
		Notes:          b.Notes,
	}
}

// VisitorRegistered forwards a fresh visitor record everywhere.
func (f *Forwarder) VisitorRegistered(ctx context.Context, v *model.Visitor, authorityName string) bool {
	s := visitorSummary(v, authorityName)
	ok := f.Webhook.SendVisitor(ctx, s)
	if f.Sheets.AppendVisitor(ctx, s) {
		ok = true
	}
	f.publishVisitor(ctx, queue.KindVisitorRegistered, v, authorityName)
	return ok
}

// VisitorDecided publishes the decision on the broker.
func (f *Forwarder) VisitorDecided(ctx context.Context, v *model.Visitor) {
	f.publishVisitor(ctx, queue.KindVisitorDecided, v, "")
}

// VisitorExited publishes the checkout on the broker.
func (f *Forwarder) VisitorExited(ctx context.Context, v *model.Visitor) {
	f.publishVisitor(ctx, queue.KindVisitorExited, v, "")
}

// BusRegistered forwards a fresh bus record everywhere.
func (f *Forwarder) BusRegistered(ctx context.Context, b *model.BusEntry) bool {
	s := busSummary(b)
	ok := f.Webhook.SendBus(ctx, s)
	if f.Sheets.AppendBus(ctx, s) {
		ok = true
	}
	f.publishBus(ctx, queue.KindBusRegistered, b)
	return ok
}

// BusExited publishes the bus exit on the broker.
func (f *Forwarder) BusExited(ctx context.Context, b *model.BusEntry) {
	f.publishBus(ctx, queue.KindBusExited, b)
}

func (f *Forwarder) publishVisitor(ctx context.Context, kind string, v *model.Visitor, authorityName string) {
	_ = queue.Publish(ctx, queue.GateEvent{
		Kind:       kind,
		VisitorID:  v.ID,
		Name:       v.Name,
		Phone:      v.Phone,
		Purpose:    v.Purpose,
		Authority:  authorityName,
		Status:     v.Status,
		RecordedBy: v.CreatedBy,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func (f *Forwarder) publishBus(ctx context.Context, kind string, b *model.BusEntry) {
	_ = queue.Publish(ctx, queue.GateEvent{
		Kind:       kind,
		BusID:      b.ID,
		BusNumber:  b.BusNumber,
		Status:     b.Status,
		RecordedBy: b.CreatedBy,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
