package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

var fixedNow = time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

func testEnricher() *Enricher {
	return &Enricher{now: func() time.Time { return fixedNow }}
}

func TestEnrichOrderDerivesPartitionDateFromOrderDate(t *testing.T) {
	raw := []byte(`{
		"event_type": "order",
		"order_id": "ord-1",
		"customer_id": "customer-001",
		"order_date": "2024-03-05T14:07:22.451Z",
		"status": "pending",
		"items": [{"product_id": "prod-001", "product_name": "Laptop Computer", "quantity": 1, "price": 999.99}],
		"shipping_address": {"street": "1 Main St", "city": "Chicago", "country": "US"},
		"total_amount": 999.99
	}`)
	ev, err := testEnricher().Enrich(raw)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	order, ok := ev.Event.(OrderEvent)
	if !ok {
		t.Fatalf("expected OrderEvent, got %T", ev.Event)
	}
	if order.CustomerID != "customer-001" {
		t.Fatalf("unexpected customer %s", order.CustomerID)
	}
	if got := ev.PartitionDate.Format("2006-01-02"); got != "2024-03-05" {
		t.Fatalf("partition date %s", got)
	}
	if !ev.ProcessedAt.Equal(fixedNow) {
		t.Fatalf("processed at %v", ev.ProcessedAt)
	}
	if got := ev.EventTime.Format(time.RFC3339Nano); got != "2024-03-05T14:07:22.451Z" {
		t.Fatalf("event time %s", got)
	}
}

func TestEnrichFallsBackToProcessingTime(t *testing.T) {
	cases := map[string][]byte{
		"order":         []byte(`{"event_type":"order","order_id":"ord-2","customer_id":"customer-002","status":"shipped","total_amount":10}`),
		"inventory":     []byte(`{"event_type":"inventory","inventory_id":"inv-1","product_id":"prod-001","warehouse_id":"wh-us-east","quantity_change":-3,"reason":"sale"}`),
		"user_activity": []byte(`{"event_type":"user_activity","user_id":"user-0001","activity_type":"login","ip_address":"192.0.2.1","user_agent":"test","metadata":{"session_id":"sess-1","platform":"web"}}`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ev, err := testEnricher().Enrich(raw)
			if err != nil {
				t.Fatalf("enrich: %v", err)
			}
			if !ev.EventTime.Equal(fixedNow) {
				t.Fatalf("event time %v", ev.EventTime)
			}
			if got := ev.PartitionDate.Format("2006-01-02"); got != "2024-06-01" {
				t.Fatalf("partition date %s", got)
			}
		})
	}
}

func TestEnrichInventoryUsesOwnTimestamp(t *testing.T) {
	raw := []byte(`{"event_type":"inventory","inventory_id":"inv-2","product_id":"prod-002","warehouse_id":"wh-eu-west","quantity_change":40,"reason":"restock","timestamp":"2024-03-05T23:59:59Z"}`)
	ev, err := testEnricher().Enrich(raw)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if got := ev.PartitionDate.Format("2006-01-02"); got != "2024-03-05" {
		t.Fatalf("partition date %s", got)
	}
}

func TestEnrichMissingEventType(t *testing.T) {
	_, err := testEnricher().Enrich([]byte(`{"order_id":"ord-3"}`))
	if !errors.Is(err, ErrNoCategory) {
		t.Fatalf("expected ErrNoCategory, got %v", err)
	}
}

func TestEnrichMalformedPayload(t *testing.T) {
	for name, raw := range map[string][]byte{
		"not json":      []byte(`{"event_type":`),
		"bad timestamp": []byte(`{"event_type":"inventory","timestamp":"yesterday"}`),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := testEnricher().Enrich(raw)
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestEnrichUnknownCategoryPassesThrough(t *testing.T) {
	raw := []byte(`{"event_type":"refund","refund_id":"ref-1"}`)
	ev, err := testEnricher().Enrich(raw)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	unknown, ok := ev.Event.(UnknownEvent)
	if !ok {
		t.Fatalf("expected UnknownEvent, got %T", ev.Event)
	}
	if unknown.EventType != "refund" {
		t.Fatalf("unexpected category %s", unknown.EventType)
	}
	if !ev.EventTime.Equal(fixedNow) {
		t.Fatalf("event time %v", ev.EventTime)
	}
}

func TestEnrichedEventMarshalAddsProcessingFields(t *testing.T) {
	raw := []byte(`{"event_type":"inventory","inventory_id":"inv-9","product_id":"prod-003","warehouse_id":"wh-us-west","quantity_change":5,"reason":"return","timestamp":"2024-03-05T14:07:22Z"}`)
	ev, err := testEnricher().Enrich(raw)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields["processed_timestamp"] != fixedNow.Format(time.RFC3339Nano) {
		t.Fatalf("processed_timestamp %v", fields["processed_timestamp"])
	}
	if fields["event_date"] != "2024-03-05" {
		t.Fatalf("event_date %v", fields["event_date"])
	}
	if fields["inventory_id"] != "inv-9" {
		t.Fatalf("payload fields not preserved: %v", fields)
	}
}

func TestEnrichedEventMarshalStableAcrossCodecs(t *testing.T) {
	raw := []byte(`{"event_type":"order","order_id":"ord-7","customer_id":"customer-007","status":"delivered","total_amount":42.5}`)
	ev, err := testEnricher().Enrich(raw)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	viaSonic, err := sonic.ConfigStd.Marshal(ev)
	if err != nil {
		t.Fatalf("sonic marshal: %v", err)
	}
	viaStd, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("std marshal: %v", err)
	}
	var a, b map[string]any
	if err := sonic.ConfigStd.Unmarshal(viaSonic, &a); err != nil {
		t.Fatalf("sonic unmarshal: %v", err)
	}
	if err := json.Unmarshal(viaStd, &b); err != nil {
		t.Fatalf("std unmarshal: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("field sets differ: %v vs %v", a, b)
	}
	for k, v := range b {
		if !reflect.DeepEqual(a[k], v) {
			t.Fatalf("field %s differs: %v vs %v", k, a[k], v)
		}
	}
	if a["event_date"] != fixedNow.Format("2006-01-02") {
		t.Fatalf("event_date %v", a["event_date"])
	}
}
