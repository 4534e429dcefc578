package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendVisitorPostsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, "")
	ok := c.SendVisitor(context.Background(), VisitorSummary{
		Name: "Asha Rao", Phone: "555-0101", Purpose: "project demo",
		EntryTime: "10/03/2025 02:05 PM", Status: "pending",
	})
	require.True(t, ok)

	assert.Equal(t, "Asha Rao", got["name"])
	assert.Equal(t, "555-0101", got["phone"])
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, "10/03/2025 02:05 PM", got["entryTime"])
	// Unset optionals must be absent, not null.
	_, present := got["authorityName"]
	assert.False(t, present)
}

func TestSendVisitorReportsServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, "")
	assert.False(t, c.SendVisitor(context.Background(), VisitorSummary{Name: "x"}))
}

func TestSendSkipsWhenUnconfigured(t *testing.T) {
	c := NewWebhookClient("", "")
	assert.False(t, c.SendVisitor(context.Background(), VisitorSummary{Name: "x"}))
	assert.False(t, c.SendBus(context.Background(), BusSummary{BusNumber: "KA-01"}))
}

func TestSendBusPostsCamelCaseKeys(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	route := "North Campus"
	count := uint32(42)
	c := NewWebhookClient("", srv.URL)
	ok := c.SendBus(context.Background(), BusSummary{
		BusNumber: "KA-05 F 1234", Route: &route, PassengerCount: &count,
		EntryTime: "10/03/2025 07:30 AM", Status: "entered",
	})
	require.True(t, ok)

	assert.Equal(t, "KA-05 F 1234", got["busNumber"])
	assert.Equal(t, "North Campus", got["route"])
	assert.Equal(t, float64(42), got["passengerCount"])
}
