package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"shopbot/internal/config"
)

func TestNewWithoutBrokersIsNop(t *testing.T) {
	p := New(config.KafkaConfig{})
	if err := p.Publish(context.Background(), PurchaseEvent{Kind: KindPurchaseCompleted}); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
}

func TestPurchaseEventWireShape(t *testing.T) {
	ev := PurchaseEvent{
		Kind:       KindFulfillmentAnomaly,
		Payload:    "41",
		Amount:     500,
		Currency:   "RUB",
		UserID:     77,
		SupportRef: "cu1234abcdef",
		OccurredAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields["kind"] != string(KindFulfillmentAnomaly) {
		t.Fatalf("kind = %v", fields["kind"])
	}
	if fields["payload"] != "41" {
		t.Fatalf("payload = %v", fields["payload"])
	}
	if fields["support_ref"] != "cu1234abcdef" {
		t.Fatalf("support_ref = %v", fields["support_ref"])
	}
	if _, ok := fields["item_id"]; ok {
		t.Fatal("zero item_id should be omitted for anomalies")
	}
}
