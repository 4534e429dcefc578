// Package service implements the gate workflows on top of narrow
// store interfaces, keeping persistence, photo storage and outbound
// forwarding swappable.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/campus-gate-entry/internal/model"
	"github.com/iliyamo/campus-gate-entry/internal/repository"
)

// ErrValidation marks a rejected input. Handlers map it to 400.
var ErrValidation = errors.New("validation failed")

// VisitorStore is the slice of the visitor repository the admission
// workflow needs.
type VisitorStore interface {
	Create(ctx context.Context, v *model.Visitor) error
	GetByID(ctx context.Context, id uint64) (*model.Visitor, error)
	Decide(ctx context.Context, id uint64, status string, granted bool, grantedAt *time.Time) error
	Checkout(ctx context.Context, id uint64, at time.Time) error
}

// NotificationStore persists the admission fan-out.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	MarkReadByVisitor(ctx context.Context, visitorID uint64) error
}

// AuthorityStore resolves the authorities involved in a request.
type AuthorityStore interface {
	GetActive(ctx context.Context, id uint64) (*model.Authority, error)
	FirstActiveAdmin(ctx context.Context) (*model.Authority, error)
}

// PhotoStore uploads captured photos and derives their public URLs.
type PhotoStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
}

// Forwarder copies finalized gate records to external sinks. All
// methods are best-effort; the bool reports whether at least one sink
// accepted the record.
type Forwarder interface {
	VisitorRegistered(ctx context.Context, v *model.Visitor, authorityName string) bool
	VisitorDecided(ctx context.Context, v *model.Visitor)
	VisitorExited(ctx context.Context, v *model.Visitor)
	BusRegistered(ctx context.Context, b *model.BusEntry) bool
	BusExited(ctx context.Context, b *model.BusEntry)
}

// AdmissionService runs the visitor admission workflow: registration
// with optional permission routing, the approval decision, and
// checkout at the exit gate.
type AdmissionService struct {
	Visitors      VisitorStore
	Notifications NotificationStore
	Authorities   AuthorityStore
	Photos        PhotoStore // nil when no blob store is configured
	Forward       Forwarder  // nil disables forwarding
	Now           func() time.Time
}

// NewAdmissionService wires an admission service with wall-clock time.
func NewAdmissionService(v VisitorStore, n NotificationStore, a AuthorityStore, p PhotoStore, f Forwarder) *AdmissionService {
	return &AdmissionService{
		Visitors:      v,
		Notifications: n,
		Authorities:   a,
		Photos:        p,
		Forward:       f,
		Now:           func() time.Time { return time.Now().UTC() },
	}
}

// SubmitInput carries a new visitor registration from the gate desk.
type SubmitInput struct {
	Name             string
	Phone            string
	Email            string
	Purpose          string
	Notes            string
	AuthorityID      *uint64
	Photo            []byte
	PhotoContentType string
	CreatedBy        string
}

// SubmitResult reports the stored visitor and whether any external
// sink accepted the forwarded copy.
type SubmitResult struct {
	Visitor   *model.Visitor
	Forwarded bool
}

// Submit registers a visitor. When an authority is selected the
// visitor starts pending and the authority is notified, with a copy
// to an active admin when the assignee is not one; otherwise the
// visitor is approved on the spot. Photo upload and forwarding are
// best-effort and never fail the registration.
func (s *AdmissionService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	email := strings.TrimSpace(in.Email)
	purpose := strings.TrimSpace(in.Purpose)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", ErrValidation)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if purpose == "" {
		return nil, fmt.Errorf("%w: purpose is required", ErrValidation)
	}

	var authority *model.Authority
	if in.AuthorityID != nil {
		a, err := s.Authorities.GetActive(ctx, *in.AuthorityID)
		if err != nil {
			if errors.Is(err, repository.ErrAuthorityNotFound) {
				return nil, fmt.Errorf("%w: authority not found or inactive", ErrValidation)
			}
			return nil, err
		}
		authority = a
	}

	now := s.Now()
	v := &model.Visitor{
		Name:      name,
		Phone:     phone,
		Email:     email,
		Purpose:   purpose,
		CreatedBy: in.CreatedBy,
	}
	if n := strings.TrimSpace(in.Notes); n != "" {
		v.Notes = &n
	}
	if authority != nil {
		v.AuthorityID = &authority.ID
		v.Status = model.VisitorStatusPending
		v.PermissionRequired = true
	} else {
		v.Status = model.VisitorStatusApproved
		v.PermissionGranted = true
		v.PermissionGrantedAt = &now
	}

	if s.Photos != nil && len(in.Photo) > 0 {
		key := fmt.Sprintf("visitor-%d.jpg", now.UnixMilli())
		ct := in.PhotoContentType
		if ct == "" {
			ct = "image/jpeg"
		}
		if err := s.Photos.Upload(ctx, key, in.Photo, ct); err != nil {
			log.Printf("admission: photo upload failed, registering without photo: %v", err)
		} else {
			url := s.Photos.PublicURL(key)
			v.PhotoURL = &url
		}
	}

	if err := s.Visitors.Create(ctx, v); err != nil {
		return nil, err
	}

	if authority != nil {
		s.notifyAuthorities(ctx, v, authority)
	}

	forwarded := false
	if s.Forward != nil {
		authorityName := ""
		if authority != nil {
			authorityName = authority.Name
		}
		forwarded = s.Forward.VisitorRegistered(ctx, v, authorityName)
	}
	return &SubmitResult{Visitor: v, Forwarded: forwarded}, nil
}

// notifyAuthorities creates the primary permission request and, when
// the assignee is not an admin, a copy for an active admin. The
// visitor row is already committed; notification failures are logged
// and swallowed.
func (s *AdmissionService) notifyAuthorities(ctx context.Context, v *model.Visitor, assignee *model.Authority) {
	primary := &model.Notification{
		VisitorID:   v.ID,
		AuthorityID: assignee.ID,
		Type:        model.NotificationTypeVisitorRequest,
		Title:       "New Visitor Permission Request",
		Message:     fmt.Sprintf("%s (%s) is requesting permission to enter. Purpose: %s", v.Name, v.Phone, v.Purpose),
	}
	if err := s.Notifications.Create(ctx, primary); err != nil {
		log.Printf("admission: notify authority %d failed: %v", assignee.ID, err)
	}

	if assignee.Role == model.AuthorityRoleAdmin {
		return
	}
	admin, err := s.Authorities.FirstActiveAdmin(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrAuthorityNotFound) {
			log.Printf("admission: admin lookup failed: %v", err)
		}
		return
	}
	copyNote := &model.Notification{
		VisitorID:   v.ID,
		AuthorityID: admin.ID,
		Type:        model.NotificationTypeVisitorRequest,
		Title:       "New Visitor Permission Request (Admin Copy)",
		Message:     fmt.Sprintf("%s (%s) is requesting permission to enter. Purpose: %s. Assigned to: %s", v.Name, v.Phone, v.Purpose, assignee.Name),
	}
	if err := s.Notifications.Create(ctx, copyNote); err != nil {
		log.Printf("admission: notify admin %d failed: %v", admin.ID, err)
	}
}

// Decide resolves a pending permission request. Approval stamps the
// grant time; rejection leaves it unset. Either way every
// notification tied to the visitor is marked read, so the request
// disappears from all inboxes at once.
func (s *AdmissionService) Decide(ctx context.Context, id uint64, approve bool) (*model.Visitor, error) {
	if _, err := s.Visitors.GetByID(ctx, id); err != nil {
		return nil, err
	}

	status := model.VisitorStatusRejected
	var grantedAt *time.Time
	if approve {
		status = model.VisitorStatusApproved
		now := s.Now()
		grantedAt = &now
	}
	if err := s.Visitors.Decide(ctx, id, status, approve, grantedAt); err != nil {
		return nil, err
	}

	if err := s.Notifications.MarkReadByVisitor(ctx, id); err != nil {
		log.Printf("admission: mark notifications read for visitor %d failed: %v", id, err)
	}

	v, err := s.Visitors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Forward != nil {
		s.Forward.VisitorDecided(ctx, v)
	}
	return v, nil
}

// Checkout stamps the exit time on a visitor still inside the campus.
// Exited and rejected visitors, and anyone already stamped out, yield
// ErrConflict.
func (s *AdmissionService) Checkout(ctx context.Context, id uint64) (*model.Visitor, error) {
	v, err := s.Visitors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.ExitTime != nil || v.Terminal() {
		return nil, repository.ErrConflict
	}
	if err := s.Visitors.Checkout(ctx, id, s.Now()); err != nil {
		return nil, err
	}
	out, err := s.Visitors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Forward != nil {
		s.Forward.VisitorExited(ctx, out)
	}
	return out, nil
}
