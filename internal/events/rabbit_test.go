package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope("ticket.booked", map[string]any{"passenger": "Alice"})
	if env.Type != "ticket.booked" {
		t.Fatalf("type = %q", env.Type)
	}
	if _, err := uuid.Parse(env.ID); err != nil {
		t.Fatalf("id %q is not a uuid: %v", env.ID, err)
	}
	if env.Timestamp.IsZero() || env.Timestamp.Location().String() != "UTC" {
		t.Fatalf("timestamp not set in UTC: %v", env.Timestamp)
	}

	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	payload, _ := back["payload"].(map[string]any)
	if payload["passenger"] != "Alice" {
		t.Fatalf("payload lost: %s", b)
	}
}

func TestNilPublisher(t *testing.T) {
	var p *Publisher
	if err := p.Publish(context.Background(), "train.added", nil); err != nil {
		t.Fatalf("nil publisher returned %v", err)
	}
	p.Close()
}
