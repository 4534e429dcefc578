package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/campus-gate-entry/internal/model"
)

// BusStore is the slice of the bus repository the vehicle tracker
// needs.
type BusStore interface {
	Create(ctx context.Context, b *model.BusEntry) error
	GetByID(ctx context.Context, id uint64) (*model.BusEntry, error)
	Exit(ctx context.Context, id uint64, at time.Time) error
}

// VehicleService tracks bus movements through the gate. Buses skip
// the permission workflow entirely: registration admits them as
// entered, exit stamps them out.
type VehicleService struct {
	Buses   BusStore
	Forward Forwarder // nil disables forwarding
	Now     func() time.Time
}

// NewVehicleService wires a vehicle service with wall-clock time.
func NewVehicleService(b BusStore, f Forwarder) *VehicleService {
	return &VehicleService{
		Buses:   b,
		Forward: f,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// RegisterInput carries a new bus registration from the gate desk.
type RegisterInput struct {
	BusNumber      string
	DriverName     string
	DriverPhone    string
	Route          string
	PassengerCount *uint32
	Notes          string
	CreatedBy      string
}

// RegisterResult reports the stored entry and whether any external
// sink accepted the forwarded copy.
type RegisterResult struct {
	Bus       *model.BusEntry
	Forwarded bool
}

// Register records a bus entering the campus. The bus number is
// normalized to upper case so searches and reports collate plates
// written in either case.
func (s *VehicleService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	number := strings.ToUpper(strings.TrimSpace(in.BusNumber))
	if number == "" {
		return nil, fmt.Errorf("%w: bus number is required", ErrValidation)
	}

	b := &model.BusEntry{
		BusNumber: number,
		Status:    model.BusStatusEntered,
		CreatedBy: in.CreatedBy,
	}
	if v := strings.TrimSpace(in.DriverName); v != "" {
		b.DriverName = &v
	}
	if v := strings.TrimSpace(in.DriverPhone); v != "" {
		b.DriverPhone = &v
	}
	if v := strings.TrimSpace(in.Route); v != "" {
		b.Route = &v
	}
	if in.PassengerCount != nil {
		b.PassengerCount = in.PassengerCount
	}
	if v := strings.TrimSpace(in.Notes); v != "" {
		b.Notes = &v
	}

	if err := s.Buses.Create(ctx, b); err != nil {
		return nil, err
	}

	forwarded := false
	if s.Forward != nil {
		forwarded = s.Forward.BusRegistered(ctx, b)
	}
	return &RegisterResult{Bus: b, Forwarded: forwarded}, nil
}

// Exit stamps the exit time on a bus still inside the campus. A
// repeated exit yields ErrConflict from the store's guard.
func (s *VehicleService) Exit(ctx context.Context, id uint64) (*model.BusEntry, error) {
	if err := s.Buses.Exit(ctx, id, s.Now()); err != nil {
		return nil, err
	}
	b, err := s.Buses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Forward != nil {
		s.Forward.BusExited(ctx, b)
	}
	return b, nil
}
