package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-gate-entry/internal/model"
)

func TestNewSheetsClientNilWithoutAPIKey(t *testing.T) {
	c := NewSheetsClient("", "visitors-sheet", "buses-sheet")
	require.Nil(t, c)

	// Appends on the absent client must decline, not dereference.
	assert.False(t, c.AppendVisitor(context.Background(), VisitorSummary{Name: "x"}))
	assert.False(t, c.AppendBus(context.Background(), BusSummary{BusNumber: "KA-01"}))
	assert.Error(t, c.InitHeaders(context.Background()))
}

func TestAppendVisitorPostsRow(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/visitors-sheet/values/")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewSheetsClient("key", "visitors-sheet", "buses-sheet")
	c.HTTP = srv.Client()
	orig := sheetsBase
	sheetsBase = srv.URL
	defer func() { sheetsBase = orig }()

	ok := c.AppendVisitor(context.Background(), VisitorSummary{
		Name: "Asha Rao", Phone: "555-0101", Purpose: "project demo",
		EntryTime: "10/03/2025 02:05 PM", Status: "pending",
	})
	require.True(t, ok)

	values := got["values"].([]any)
	require.Len(t, values, 1)
	row := values[0].([]any)
	assert.Equal(t, "10/03/2025 02:05 PM", row[0])
	assert.Equal(t, "Asha Rao", row[1])
	assert.Equal(t, "Not Assigned", row[4])
}

// The default deployment configures neither webhook URLs nor a sheets
// API key; registration forwarding must still settle to false.
func TestForwarderWithNoSinksConfigured(t *testing.T) {
	f := NewForwarder(NewWebhookClient("", ""), NewSheetsClient("", "", ""))

	v := &model.Visitor{
		ID: 1, Name: "Walk In", Phone: "555-0100", Purpose: "delivery",
		Status: model.VisitorStatusApproved, EntryTime: time.Now().UTC(),
	}
	assert.False(t, f.VisitorRegistered(context.Background(), v, ""))

	b := &model.BusEntry{
		ID: 1, BusNumber: "KA-05 F 1234",
		Status: model.BusStatusEntered, EntryTime: time.Now().UTC(),
	}
	assert.False(t, f.BusRegistered(context.Background(), b))
}
