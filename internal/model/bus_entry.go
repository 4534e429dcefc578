package model

import "time"

// Bus lifecycle statuses.  Buses skip the approval branch entirely;
// they enter as entered and leave as exited.
const (
	BusStatusEntered = "entered"
	BusStatusExited  = "exited"
)

// BusEntry records one vehicle passing the gate, as stored in the
// `bus_entries` table.  Exit time is set iff status is exited.
//
// Fields:
//  ID             – primary key identifier.
//  BusNumber      – registration plate, stored upper-cased.
//  DriverName     – optional driver name (nullable).
//  DriverPhone    – optional driver phone (nullable).
//  Route          – optional route description (nullable).
//  PassengerCount – optional passenger count (nullable).
//  Status         – entered or exited.
//  Notes          – optional free-text notes (nullable).
//  CreatedBy      – username of the gatekeeper who recorded the entry.
//  EntryTime      – when the bus entered.
//  ExitTime       – when the bus left (nullable).
type BusEntry struct {
	ID             uint64     `json:"id"`              // bus_entries.id
	BusNumber      string     `json:"bus_number"`      // bus_entries.bus_number
	DriverName     *string    `json:"driver_name"`     // bus_entries.driver_name (nullable)
	DriverPhone    *string    `json:"driver_phone"`    // bus_entries.driver_phone (nullable)
	Route          *string    `json:"route"`           // bus_entries.route (nullable)
	PassengerCount *uint32    `json:"passenger_count"` // bus_entries.passenger_count (nullable)
	Status         string     `json:"status"`          // bus_entries.status
	Notes          *string    `json:"notes"`           // bus_entries.notes (nullable)
	CreatedBy      string     `json:"created_by"`      // bus_entries.created_by
	EntryTime      time.Time  `json:"entry_time"`      // bus_entries.entry_time
	ExitTime       *time.Time `json:"exit_time"`       // bus_entries.exit_time (nullable)
}
