package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/roadsmart/backend/internal/models"
)

func TestRoutingKey(t *testing.T) {
	tests := []struct {
		evt  StatusChanged
		want string
	}{
		{StatusChanged{Entity: models.EntityReport, To: "In Progress"}, "status.report.in_progress"},
		{StatusChanged{Entity: models.EntityReport, To: "Completed"}, "status.report.completed"},
		{StatusChanged{Entity: models.EntityComplaint, To: "Resolved"}, "status.complaint.resolved"},
	}

	for _, test := range tests {
		if got := test.evt.RoutingKey(); got != test.want {
			t.Errorf("expected %q, got %q", test.want, got)
		}
	}
}

func TestStatusChangedJSON(t *testing.T) {
	evt := StatusChanged{
		Entity:   models.EntityReport,
		EntityID: 4,
		From:     "Assigned",
		To:       "Completed",
		ActorID:  9,
		At:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["entity"] != "report" || decoded["to"] != "Completed" || decoded["entity_id"].(float64) != 4 {
		t.Errorf("unexpected payload %s", body)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.PublishStatusChanged(context.Background(), StatusChanged{}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}
