// Package export holds the best-effort collaborators that copy
// finalized gate records out of the system: CSV formatting, webhook
// forwarding and Google Sheets appends.  Nothing in this package may
// fail a gate operation; every function either returns pure data or
// a boolean success flag.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/iliyamo/campus-gate-entry/internal/model"
	"github.com/iliyamo/campus-gate-entry/internal/repository"
)

// Fixed CSV header rows, one per entity type.
var (
	VisitorCSVHeader = []string{
		"Entry Time", "Name", "Phone", "Purpose", "Authority", "Status",
		"Exit Time", "Photo URL", "Notes",
	}
	BusCSVHeader = []string{
		"Entry Time", "Vehicle Number", "Driver Name", "Driver Phone", "Route",
		"Passenger Count", "Status", "Exit Time", "Notes",
	}
)

// csvTime renders timestamps the way the reports screen shows them:
// dd/mm/yyyy hh:mm AM.
func csvTime(t time.Time) string {
	return t.Format("02/01/2006 03:04 PM")
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// VisitorsCSV renders visitor rows, authority resolved, as a CSV
// document with the fixed header.
func VisitorsCSV(rows []repository.VisitorDetail) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(VisitorCSVHeader)
	for _, v := range rows {
		authority := "Not Assigned"
		if v.AuthorityName != nil {
			authority = *v.AuthorityName
		}
		exit := ""
		if v.ExitTime != nil {
			exit = csvTime(*v.ExitTime)
		}
		_ = w.Write([]string{
			csvTime(v.EntryTime),
			v.Name,
			v.Phone,
			v.Purpose,
			authority,
			v.Status,
			exit,
			orEmpty(v.PhotoURL),
			orEmpty(v.Notes),
		})
	}
	w.Flush()
	return buf.String()
}

// BusesCSV renders bus entry rows as a CSV document with the fixed
// header.
func BusesCSV(rows []*model.BusEntry) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(BusCSVHeader)
	for _, b := range rows {
		passengers := ""
		if b.PassengerCount != nil {
			passengers = strconv.FormatUint(uint64(*b.PassengerCount), 10)
		}
		exit := ""
		if b.ExitTime != nil {
			exit = csvTime(*b.ExitTime)
		}
		_ = w.Write([]string{
			csvTime(b.EntryTime),
			b.BusNumber,
			orEmpty(b.DriverName),
			orEmpty(b.DriverPhone),
			orEmpty(b.Route),
			passengers,
			b.Status,
			exit,
			orEmpty(b.Notes),
		})
	}
	w.Flush()
	return buf.String()
}
