package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-gate-entry/internal/model"
	"github.com/iliyamo/campus-gate-entry/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestVisitorsCSV(t *testing.T) {
	entry := time.Date(2025, 3, 10, 14, 5, 0, 0, time.UTC)
	exit := entry.Add(2 * time.Hour)

	rows := []repository.VisitorDetail{
		{
			Visitor: model.Visitor{
				Name: "Asha Rao", Phone: "555-0101", Purpose: "project demo",
				Status: model.VisitorStatusExited, EntryTime: entry, ExitTime: &exit,
				PhotoURL: strPtr("https://photos.example/visitor-1.jpg"),
				Notes:    strPtr("escorted"),
			},
			AuthorityName: strPtr("Dr. Mehta"),
		},
		{
			Visitor: model.Visitor{
				Name: "Walk, In", Phone: "555-0102", Purpose: "delivery",
				Status: model.VisitorStatusApproved, EntryTime: entry,
			},
		},
	}

	out := VisitorsCSV(rows)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, VisitorCSVHeader, records[0])
	assert.Equal(t, []string{
		"10/03/2025 02:05 PM", "Asha Rao", "555-0101", "project demo",
		"Dr. Mehta", "exited", "10/03/2025 04:05 PM",
		"https://photos.example/visitor-1.jpg", "escorted",
	}, records[1])
	// Unassigned authority renders as the placeholder; empty optionals
	// stay empty. The comma in the name survives quoting.
	assert.Equal(t, "Walk, In", records[2][1])
	assert.Equal(t, "Not Assigned", records[2][4])
	assert.Equal(t, "", records[2][6])
}

func TestBusesCSV(t *testing.T) {
	entry := time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)
	count := uint32(42)

	rows := []*model.BusEntry{
		{
			BusNumber: "KA-05 F 1234", DriverName: strPtr("Ravi"),
			Route: strPtr("North Campus"), PassengerCount: &count,
			Status: model.BusStatusEntered, EntryTime: entry,
		},
	}

	out := BusesCSV(rows)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, BusCSVHeader, records[0])
	assert.Equal(t, []string{
		"10/03/2025 07:30 AM", "KA-05 F 1234", "Ravi", "", "North Campus",
		"42", "entered", "", "",
	}, records[1])
}
