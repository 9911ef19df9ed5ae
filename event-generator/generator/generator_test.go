package generator

import (
	"encoding/json"
	"errors"
	"testing"

	"events-pipeline/domain"
)

func TestFabricatedEventsSurviveEnrichment(t *testing.T) {
	g := New()
	enricher := domain.NewEnricher()
	for _, eventType := range []string{"order", "inventory", "user_activity"} {
		t.Run(eventType, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				raw, err := g.Event(eventType)
				if err != nil {
					t.Fatalf("fabricate: %v", err)
				}
				ev, err := enricher.Enrich(raw)
				if err != nil {
					t.Fatalf("fabricated event rejected: %v\n%s", err, raw)
				}
				if string(ev.Event.Category()) != eventType {
					t.Fatalf("category %s", ev.Event.Category())
				}
				if _, ok := ev.Event.(domain.UnknownEvent); ok {
					t.Fatalf("fabricated event decoded as unknown")
				}
			}
		})
	}
}

func TestOrderTotalsMatchItems(t *testing.T) {
	g := New()
	for i := 0; i < 50; i++ {
		raw, err := g.Event("order")
		if err != nil {
			t.Fatalf("fabricate: %v", err)
		}
		var order domain.OrderEvent
		if err := json.Unmarshal(raw, &order); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(order.Items) < 1 || len(order.Items) > 3 {
			t.Fatalf("item count %d", len(order.Items))
		}
		sum := 0.0
		for _, item := range order.Items {
			sum += item.Price * float64(item.Quantity)
		}
		if diff := order.TotalAmount - sum; diff > 0.01 || diff < -0.01 {
			t.Fatalf("total %f, items sum %f", order.TotalAmount, sum)
		}
	}
}

func TestInventoryChangeSignFollowsReason(t *testing.T) {
	g := New()
	for i := 0; i < 50; i++ {
		raw, err := g.Event("inventory")
		if err != nil {
			t.Fatalf("fabricate: %v", err)
		}
		var inv domain.InventoryEvent
		if err := json.Unmarshal(raw, &inv); err != nil {
			t.Fatalf("decode: %v", err)
		}
		switch inv.Reason {
		case "restock", "return":
			if inv.QuantityChange <= 0 {
				t.Fatalf("%s with change %d", inv.Reason, inv.QuantityChange)
			}
		case "sale", "damage":
			if inv.QuantityChange >= 0 {
				t.Fatalf("%s with change %d", inv.Reason, inv.QuantityChange)
			}
		default:
			t.Fatalf("unexpected reason %s", inv.Reason)
		}
	}
}

func TestEventUnknownType(t *testing.T) {
	_, err := New().Event("refund")
	if !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestGetScenario(t *testing.T) {
	s, err := GetScenario("quick_sample")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if s.Config.EventsPerMinute != 12 || s.Config.DurationMinutes != 1 {
		t.Fatalf("scenario config %+v", s.Config)
	}
	if _, err := GetScenario("nope"); err == nil {
		t.Fatalf("expected error for unknown scenario")
	}
	if len(ScenarioNames()) != len(Scenarios()) {
		t.Fatalf("names out of sync")
	}
}
