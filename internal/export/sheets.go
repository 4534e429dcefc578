package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// sheetsBase is a var so tests can point the client at a stub server.
var sheetsBase = "https://sheets.googleapis.com/v4/spreadsheets"

// SheetsClient appends gate records to Google Sheets through the
// values REST API, authorized by an API key.  Like the webhook
// client it is purely best-effort.
type SheetsClient struct {
	APIKey          string
	VisitorsSheetID string
	BusesSheetID    string
	HTTP            *http.Client
}

// NewSheetsClient builds a sheets client.  Returns nil when no API
// key is configured so callers can wire the collaborator as absent.
func NewSheetsClient(apiKey, visitorsSheetID, busesSheetID string) *SheetsClient {
	if apiKey == "" {
		return nil
	}
	return &SheetsClient{
		APIKey:          apiKey,
		VisitorsSheetID: visitorsSheetID,
		BusesSheetID:    busesSheetID,
		HTTP:            &http.Client{Timeout: 15 * time.Second},
	}
}

// AppendVisitor appends one visitor row to the visitors spreadsheet.
func (c *SheetsClient) AppendVisitor(ctx context.Context, s VisitorSummary) bool {
	if c == nil {
		return false
	}
	authority := "Not Assigned"
	if s.AuthorityName != nil {
		authority = *s.AuthorityName
	}
	row := []string{
		s.EntryTime, s.Name, s.Phone, s.Purpose, authority, s.Status,
		deref(s.ExitTime), deref(s.PhotoURL), deref(s.Notes),
	}
	return c.append(ctx, c.VisitorsSheetID, row)
}

// AppendBus appends one bus row to the bus entries spreadsheet.
func (c *SheetsClient) AppendBus(ctx context.Context, s BusSummary) bool {
	if c == nil {
		return false
	}
	passengers := ""
	if s.PassengerCount != nil {
		passengers = fmt.Sprintf("%d", *s.PassengerCount)
	}
	row := []string{
		s.EntryTime, s.BusNumber, deref(s.DriverName), deref(s.DriverPhone),
		deref(s.Route), passengers, s.Status, deref(s.ExitTime), deref(s.Notes),
	}
	return c.append(ctx, c.BusesSheetID, row)
}

// InitHeaders writes the fixed header rows to both spreadsheets.
// Exposed to the admin surface; run once when a sheet is first
// connected.
func (c *SheetsClient) InitHeaders(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("sheets: not configured")
	}
	if ok := c.append(ctx, c.VisitorsSheetID, VisitorCSVHeader); !ok {
		return fmt.Errorf("sheets: init visitors header failed")
	}
	if ok := c.append(ctx, c.BusesSheetID, BusCSVHeader); !ok {
		return fmt.Errorf("sheets: init buses header failed")
	}
	return nil
}

func (c *SheetsClient) append(ctx context.Context, sheetID string, row []string) bool {
	if c == nil || sheetID == "" {
		return false
	}
	url := fmt.Sprintf("%s/%s/values/Sheet1!A:I:append?valueInputOption=RAW&key=%s",
		sheetsBase, sheetID, c.APIKey)
	body, err := json.Marshal(map[string]any{"values": [][]string{row}})
	if err != nil {
		log.Printf("sheets: marshal failed: %v", err)
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("sheets: create request failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("sheets: append failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("sheets: append rejected (%d)", resp.StatusCode)
		return false
	}
	return true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
