package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-gate-entry/internal/model"
	"github.com/iliyamo/campus-gate-entry/internal/repository"
)

// ----- in-memory fakes -----

type fakeVisitorStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Visitor
	now    func() time.Time
}

func newFakeVisitorStore(now func() time.Time) *fakeVisitorStore {
	return &fakeVisitorStore{nextID: 1, rows: map[uint64]*model.Visitor{}, now: now}
}

func (s *fakeVisitorStore) Create(_ context.Context, v *model.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.nextID
	s.nextID++
	v.EntryTime = s.now()
	cp := *v
	s.rows[v.ID] = &cp
	return nil
}

func (s *fakeVisitorStore) GetByID(_ context.Context, id uint64) (*model.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrVisitorNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *fakeVisitorStore) Decide(_ context.Context, id uint64, status string, granted bool, grantedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rows[id]
	if !ok {
		return repository.ErrVisitorNotFound
	}
	if v.Status != model.VisitorStatusPending {
		return repository.ErrConflict
	}
	v.Status = status
	v.PermissionGranted = granted
	v.PermissionGrantedAt = grantedAt
	return nil
}

func (s *fakeVisitorStore) Checkout(_ context.Context, id uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rows[id]
	if !ok {
		return repository.ErrVisitorNotFound
	}
	if v.ExitTime != nil || v.Terminal() {
		return repository.ErrConflict
	}
	v.ExitTime = &at
	v.Status = model.VisitorStatusExited
	return nil
}

type fakeNotificationStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   []*model.Notification
}

func (s *fakeNotificationStore) Create(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n.ID = s.nextID
	cp := *n
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *fakeNotificationStore) MarkReadByVisitor(_ context.Context, visitorID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.rows {
		if n.VisitorID == visitorID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *fakeNotificationStore) forVisitor(visitorID uint64) []*model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Notification{}
	for _, n := range s.rows {
		if n.VisitorID == visitorID {
			out = append(out, n)
		}
	}
	return out
}

type fakeAuthorityStore struct {
	rows map[uint64]*model.Authority
}

func (s *fakeAuthorityStore) GetActive(_ context.Context, id uint64) (*model.Authority, error) {
	a, ok := s.rows[id]
	if !ok || !a.IsActive {
		return nil, repository.ErrAuthorityNotFound
	}
	return a, nil
}

func (s *fakeAuthorityStore) FirstActiveAdmin(_ context.Context) (*model.Authority, error) {
	var best *model.Authority
	for _, a := range s.rows {
		if a.Role == model.AuthorityRoleAdmin && a.IsActive {
			if best == nil || a.ID < best.ID {
				best = a
			}
		}
	}
	if best == nil {
		return nil, repository.ErrAuthorityNotFound
	}
	return best, nil
}

type fakePhotoStore struct {
	uploads map[string][]byte
	fail    bool
}

func (s *fakePhotoStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	if s.fail {
		return errors.New("upload refused")
	}
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[key] = data
	return nil
}

func (s *fakePhotoStore) PublicURL(key string) string {
	return "https://photos.example/" + key
}

type fakeForwarder struct {
	visitorEvents []string
	busEvents     []string
	accept        bool
}

func (f *fakeForwarder) VisitorRegistered(_ context.Context, v *model.Visitor, _ string) bool {
	f.visitorEvents = append(f.visitorEvents, "registered:"+v.Status)
	return f.accept
}
func (f *fakeForwarder) VisitorDecided(_ context.Context, v *model.Visitor) {
	f.visitorEvents = append(f.visitorEvents, "decided:"+v.Status)
}
func (f *fakeForwarder) VisitorExited(_ context.Context, v *model.Visitor) {
	f.visitorEvents = append(f.visitorEvents, "exited:"+v.Status)
}
func (f *fakeForwarder) BusRegistered(_ context.Context, b *model.BusEntry) bool {
	f.busEvents = append(f.busEvents, "registered:"+b.Status)
	return f.accept
}
func (f *fakeForwarder) BusExited(_ context.Context, b *model.BusEntry) {
	f.busEvents = append(f.busEvents, "exited:"+b.Status)
}

// ----- fixture -----

type admissionFixture struct {
	svc           *AdmissionService
	visitors      *fakeVisitorStore
	notifications *fakeNotificationStore
	authorities   *fakeAuthorityStore
	photos        *fakePhotoStore
	forward       *fakeForwarder
	clock         time.Time
}

func newAdmissionFixture(t *testing.T) *admissionFixture {
	t.Helper()
	f := &admissionFixture{
		notifications: &fakeNotificationStore{},
		authorities:   &fakeAuthorityStore{rows: map[uint64]*model.Authority{}},
		photos:        &fakePhotoStore{},
		forward:       &fakeForwarder{},
		clock:         time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.clock }
	f.visitors = newFakeVisitorStore(now)
	f.svc = &AdmissionService{
		Visitors:      f.visitors,
		Notifications: f.notifications,
		Authorities:   f.authorities,
		Photos:        f.photos,
		Forward:       f.forward,
		Now:           now,
	}
	return f
}

func (f *admissionFixture) addAuthority(id uint64, name, role string) *model.Authority {
	a := &model.Authority{ID: id, Name: name, Designation: "Staff", Role: role, IsActive: true}
	f.authorities.rows[id] = a
	return a
}

// ----- tests -----

func TestSubmitWithoutAuthorityIsApprovedImmediately(t *testing.T) {
	f := newAdmissionFixture(t)

	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Walk In", Phone: "555-0100", Email: "guest@campus.test", Purpose: "delivery", CreatedBy: "gatekeeper",
	})
	require.NoError(t, err)

	v := res.Visitor
	assert.Equal(t, model.VisitorStatusApproved, v.Status)
	assert.False(t, v.PermissionRequired)
	assert.True(t, v.PermissionGranted)
	require.NotNil(t, v.PermissionGrantedAt)
	assert.Equal(t, f.clock, *v.PermissionGrantedAt)
	assert.Empty(t, f.notifications.rows, "walk-ins must not notify anyone")
}

func TestSubmitWithAuthorityIsPendingAndNotifies(t *testing.T) {
	f := newAdmissionFixture(t)
	f.addAuthority(7, "Dr. Mehta", model.AuthorityRoleAuthority)
	f.addAuthority(1, "Registrar", model.AuthorityRoleAdmin)

	id := uint64(7)
	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Asha Rao", Phone: "555-0101", Email: "guest@campus.test", Purpose: "project demo",
		AuthorityID: &id, CreatedBy: "gatekeeper",
	})
	require.NoError(t, err)

	v := res.Visitor
	assert.Equal(t, model.VisitorStatusPending, v.Status)
	assert.True(t, v.PermissionRequired)
	assert.False(t, v.PermissionGranted)
	assert.Nil(t, v.PermissionGrantedAt)

	notes := f.notifications.forVisitor(v.ID)
	require.Len(t, notes, 2, "assignee plus admin copy")
	assert.Equal(t, uint64(7), notes[0].AuthorityID)
	assert.Equal(t, "New Visitor Permission Request", notes[0].Title)
	assert.Contains(t, notes[0].Message, "Asha Rao (555-0101)")
	assert.Contains(t, notes[0].Message, "project demo")
	assert.Equal(t, uint64(1), notes[1].AuthorityID)
	assert.Equal(t, "New Visitor Permission Request (Admin Copy)", notes[1].Title)
	assert.Contains(t, notes[1].Message, "Assigned to: Dr. Mehta")
}

func TestSubmitToAdminAuthoritySkipsAdminCopy(t *testing.T) {
	f := newAdmissionFixture(t)
	f.addAuthority(1, "Registrar", model.AuthorityRoleAdmin)

	id := uint64(1)
	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Vendor", Phone: "555-0102", Email: "guest@campus.test", Purpose: "maintenance",
		AuthorityID: &id, CreatedBy: "gatekeeper",
	})
	require.NoError(t, err)

	notes := f.notifications.forVisitor(res.Visitor.ID)
	require.Len(t, notes, 1, "no copy when the assignee is the admin")
	assert.Equal(t, "New Visitor Permission Request", notes[0].Title)
}

func TestSubmitWithoutActiveAdminSkipsCopySilently(t *testing.T) {
	f := newAdmissionFixture(t)
	f.addAuthority(7, "Dr. Mehta", model.AuthorityRoleAuthority)

	id := uint64(7)
	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Guest", Phone: "555-0103", Email: "guest@campus.test", Purpose: "seminar",
		AuthorityID: &id, CreatedBy: "gatekeeper",
	})
	require.NoError(t, err)
	require.Len(t, f.notifications.forVisitor(res.Visitor.ID), 1)
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	f := newAdmissionFixture(t)

	for _, in := range []SubmitInput{
		{Phone: "555-0100", Email: "guest@campus.test", Purpose: "x"},
		{Name: "A", Email: "guest@campus.test", Purpose: "x"},
		{Name: "A", Phone: "555-0100", Purpose: "x"},
		{Name: "A", Phone: "555-0100", Email: "guest@campus.test"},
	} {
		_, err := f.svc.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestSubmitRejectsInactiveAuthority(t *testing.T) {
	f := newAdmissionFixture(t)
	a := f.addAuthority(3, "Gone", model.AuthorityRoleAuthority)
	a.IsActive = false

	id := uint64(3)
	_, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Guest", Phone: "555-0104", Email: "guest@campus.test", Purpose: "visit", AuthorityID: &id,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitRejectsUnknownAuthority(t *testing.T) {
	f := newAdmissionFixture(t)

	id := uint64(99)
	_, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Guest", Phone: "555-0104", Email: "guest@campus.test", Purpose: "visit", AuthorityID: &id,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitPhotoUploadFailureIsNonFatal(t *testing.T) {
	f := newAdmissionFixture(t)
	f.photos.fail = true

	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Guest", Phone: "555-0105", Email: "guest@campus.test", Purpose: "visit",
		Photo: []byte{0xff, 0xd8}, CreatedBy: "gatekeeper",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Visitor.PhotoURL)
}

func TestSubmitStoresPhotoURL(t *testing.T) {
	f := newAdmissionFixture(t)

	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Guest", Phone: "555-0106", Email: "guest@campus.test", Purpose: "visit",
		Photo: []byte{0xff, 0xd8}, CreatedBy: "gatekeeper",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Visitor.PhotoURL)
	assert.Contains(t, *res.Visitor.PhotoURL, "https://photos.example/visitor-")
	assert.Len(t, f.photos.uploads, 1)
}

func TestDecideApproveStampsGrantAndClearsInbox(t *testing.T) {
	f := newAdmissionFixture(t)
	f.addAuthority(7, "Dr. Mehta", model.AuthorityRoleAuthority)
	f.addAuthority(1, "Registrar", model.AuthorityRoleAdmin)

	id := uint64(7)
	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Asha Rao", Phone: "555-0101", Email: "guest@campus.test", Purpose: "project demo", AuthorityID: &id,
	})
	require.NoError(t, err)

	f.clock = f.clock.Add(15 * time.Minute)
	v, err := f.svc.Decide(context.Background(), res.Visitor.ID, true)
	require.NoError(t, err)

	assert.Equal(t, model.VisitorStatusApproved, v.Status)
	assert.True(t, v.PermissionGranted)
	require.NotNil(t, v.PermissionGrantedAt)
	assert.Equal(t, f.clock, *v.PermissionGrantedAt)

	for _, n := range f.notifications.forVisitor(v.ID) {
		assert.True(t, n.IsRead, "decision must clear every inbox, admin copy included")
	}
}

func TestDecideRejectLeavesGrantUnset(t *testing.T) {
	f := newAdmissionFixture(t)
	f.addAuthority(7, "Dr. Mehta", model.AuthorityRoleAuthority)

	id := uint64(7)
	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Guest", Phone: "555-0107", Email: "guest@campus.test", Purpose: "visit", AuthorityID: &id,
	})
	require.NoError(t, err)

	v, err := f.svc.Decide(context.Background(), res.Visitor.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.VisitorStatusRejected, v.Status)
	assert.False(t, v.PermissionGranted)
	assert.Nil(t, v.PermissionGrantedAt)
}

func TestDecideTwiceConflicts(t *testing.T) {
	f := newAdmissionFixture(t)
	f.addAuthority(7, "Dr. Mehta", model.AuthorityRoleAuthority)

	id := uint64(7)
	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Guest", Phone: "555-0108", Email: "guest@campus.test", Purpose: "visit", AuthorityID: &id,
	})
	require.NoError(t, err)

	_, err = f.svc.Decide(context.Background(), res.Visitor.ID, true)
	require.NoError(t, err)
	_, err = f.svc.Decide(context.Background(), res.Visitor.ID, false)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestDecideUnknownVisitor(t *testing.T) {
	f := newAdmissionFixture(t)
	_, err := f.svc.Decide(context.Background(), 42, true)
	assert.ErrorIs(t, err, repository.ErrVisitorNotFound)
}

func TestCheckoutStampsExit(t *testing.T) {
	f := newAdmissionFixture(t)

	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Guest", Phone: "555-0109", Email: "guest@campus.test", Purpose: "visit",
	})
	require.NoError(t, err)

	f.clock = f.clock.Add(2 * time.Hour)
	v, err := f.svc.Checkout(context.Background(), res.Visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VisitorStatusExited, v.Status)
	require.NotNil(t, v.ExitTime)
	assert.True(t, v.ExitTime.After(v.EntryTime))
}

func TestCheckoutTwiceConflicts(t *testing.T) {
	f := newAdmissionFixture(t)

	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Guest", Phone: "555-0110", Email: "guest@campus.test", Purpose: "visit",
	})
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), res.Visitor.ID)
	require.NoError(t, err)
	_, err = f.svc.Checkout(context.Background(), res.Visitor.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestCheckoutRejectedVisitorConflicts(t *testing.T) {
	f := newAdmissionFixture(t)
	f.addAuthority(7, "Dr. Mehta", model.AuthorityRoleAuthority)

	id := uint64(7)
	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Guest", Phone: "555-0111", Email: "guest@campus.test", Purpose: "visit", AuthorityID: &id,
	})
	require.NoError(t, err)
	_, err = f.svc.Decide(context.Background(), res.Visitor.ID, false)
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), res.Visitor.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

// Full round trip: register with authority, approve, check out.
func TestAdmissionLifecycle(t *testing.T) {
	f := newAdmissionFixture(t)
	f.forward.accept = true
	f.addAuthority(7, "Dr. Mehta", model.AuthorityRoleAuthority)
	f.addAuthority(1, "Registrar", model.AuthorityRoleAdmin)

	id := uint64(7)
	res, err := f.svc.Submit(context.Background(), SubmitInput{
		Name: "Asha Rao", Phone: "555-0101", Email: "guest@campus.test", Purpose: "project demo",
		AuthorityID: &id, CreatedBy: "frontdesk",
	})
	require.NoError(t, err)
	assert.True(t, res.Forwarded)
	assert.Equal(t, model.VisitorStatusPending, res.Visitor.Status)

	_, err = f.svc.Decide(context.Background(), res.Visitor.ID, true)
	require.NoError(t, err)

	f.clock = f.clock.Add(3 * time.Hour)
	v, err := f.svc.Checkout(context.Background(), res.Visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VisitorStatusExited, v.Status)
	require.NotNil(t, v.PermissionGrantedAt)
	require.NotNil(t, v.ExitTime)

	assert.Equal(t, []string{
		"registered:pending", "decided:approved", "exited:exited",
	}, f.forward.visitorEvents)
}
