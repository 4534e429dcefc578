package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-gate-entry/internal/model"
	"github.com/iliyamo/campus-gate-entry/internal/repository"
)

type fakeBusStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.BusEntry
	now    func() time.Time
}

func newFakeBusStore(now func() time.Time) *fakeBusStore {
	return &fakeBusStore{nextID: 1, rows: map[uint64]*model.BusEntry{}, now: now}
}

func (s *fakeBusStore) Create(_ context.Context, b *model.BusEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID
	s.nextID++
	b.EntryTime = s.now()
	cp := *b
	s.rows[b.ID] = &cp
	return nil
}

func (s *fakeBusStore) GetByID(_ context.Context, id uint64) (*model.BusEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrBusNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBusStore) Exit(_ context.Context, id uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return repository.ErrBusNotFound
	}
	if b.ExitTime != nil || b.Status != model.BusStatusEntered {
		return repository.ErrConflict
	}
	b.ExitTime = &at
	b.Status = model.BusStatusExited
	return nil
}

type vehicleFixture struct {
	svc     *VehicleService
	buses   *fakeBusStore
	forward *fakeForwarder
	clock   time.Time
}

func newVehicleFixture(t *testing.T) *vehicleFixture {
	t.Helper()
	f := &vehicleFixture{
		forward: &fakeForwarder{accept: true},
		clock:   time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.clock }
	f.buses = newFakeBusStore(now)
	f.svc = &VehicleService{Buses: f.buses, Forward: f.forward, Now: now}
	return f
}

func TestRegisterNormalizesBusNumber(t *testing.T) {
	f := newVehicleFixture(t)

	res, err := f.svc.Register(context.Background(), RegisterInput{
		BusNumber: "  ka-05 f 1234 ", DriverName: "Ravi", CreatedBy: "gatekeeper",
	})
	require.NoError(t, err)
	assert.Equal(t, "KA-05 F 1234", res.Bus.BusNumber)
	assert.Equal(t, model.BusStatusEntered, res.Bus.Status)
	assert.Nil(t, res.Bus.ExitTime)
	assert.True(t, res.Forwarded)
}

func TestRegisterRequiresBusNumber(t *testing.T) {
	f := newVehicleFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{BusNumber: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterOptionalFieldsStayNull(t *testing.T) {
	f := newVehicleFixture(t)

	res, err := f.svc.Register(context.Background(), RegisterInput{BusNumber: "KA-01"})
	require.NoError(t, err)
	assert.Nil(t, res.Bus.DriverName)
	assert.Nil(t, res.Bus.DriverPhone)
	assert.Nil(t, res.Bus.Route)
	assert.Nil(t, res.Bus.PassengerCount)
	assert.Nil(t, res.Bus.Notes)
}

func TestBusExitRoundTrip(t *testing.T) {
	f := newVehicleFixture(t)

	res, err := f.svc.Register(context.Background(), RegisterInput{BusNumber: "KA-02"})
	require.NoError(t, err)

	f.clock = f.clock.Add(45 * time.Minute)
	b, err := f.svc.Exit(context.Background(), res.Bus.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BusStatusExited, b.Status)
	require.NotNil(t, b.ExitTime)
	assert.True(t, b.ExitTime.After(b.EntryTime))

	assert.Equal(t, []string{"registered:entered", "exited:exited"}, f.forward.busEvents)
}

func TestBusExitTwiceConflicts(t *testing.T) {
	f := newVehicleFixture(t)

	res, err := f.svc.Register(context.Background(), RegisterInput{BusNumber: "KA-03"})
	require.NoError(t, err)

	_, err = f.svc.Exit(context.Background(), res.Bus.ID)
	require.NoError(t, err)
	_, err = f.svc.Exit(context.Background(), res.Bus.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestBusExitUnknownBus(t *testing.T) {
	f := newVehicleFixture(t)
	_, err := f.svc.Exit(context.Background(), 9)
	assert.ErrorIs(t, err, repository.ErrBusNotFound)
}
