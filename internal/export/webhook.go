package export

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// VisitorSummary is the JSON payload forwarded when a visitor is
// registered.  Field names match what the downstream sheet
// integrations expect.
type VisitorSummary struct {
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	Purpose       string  `json:"purpose"`
	EntryTime     string  `json:"entryTime"`
	ExitTime      *string `json:"exitTime,omitempty"`
	AuthorityName *string `json:"authorityName,omitempty"`
	Status        string  `json:"status"`
	PhotoURL      *string `json:"photoUrl,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// BusSummary is the JSON payload forwarded when a bus is registered.
type BusSummary struct {
	BusNumber      string  `json:"busNumber"`
	DriverName     *string `json:"driverName,omitempty"`
	DriverPhone    *string `json:"driverPhone,omitempty"`
	Route          *string `json:"route,omitempty"`
	PassengerCount *uint32 `json:"passengerCount,omitempty"`
	EntryTime      string  `json:"entryTime"`
	ExitTime       *string `json:"exitTime,omitempty"`
	Status         string  `json:"status"`
	Notes          *string `json:"notes,omitempty"`
}

// WebhookClient POSTs record summaries to externally configured
// endpoints (Zapier, Make and the like).  Failures are logged and
// reported only as a false return; the gate write they accompany is
// already committed and stays committed.
type WebhookClient struct {
	VisitorURL string
	BusURL     string
	HTTP       *http.Client
}

// NewWebhookClient builds a webhook client.  Empty URLs simply
// disable the corresponding forward.
func NewWebhookClient(visitorURL, busURL string) *WebhookClient {
	return &WebhookClient{
		VisitorURL: visitorURL,
		BusURL:     busURL,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
}

// SendVisitor forwards one visitor summary.  Returns false when the
// endpoint is unconfigured or the POST fails.
func (c *WebhookClient) SendVisitor(ctx context.Context, s VisitorSummary) bool {
	return c.post(ctx, c.VisitorURL, s)
}

// SendBus forwards one bus summary.
func (c *WebhookClient) SendBus(ctx context.Context, s BusSummary) bool {
	return c.post(ctx, c.BusURL, s)
}

func (c *WebhookClient) post(ctx context.Context, url string, payload any) bool {
	if c == nil || url == "" {
		return false
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("webhook: marshal failed: %v", err)
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("webhook: create request failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("webhook: post failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
