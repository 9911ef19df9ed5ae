package domain

import (
	"testing"
	"time"
)

func enrichedAt(ev Event, ts time.Time) *EnrichedEvent {
	return &EnrichedEvent{
		Event:         ev,
		ProcessedAt:   ts,
		EventTime:     ts,
		PartitionDate: ts.Truncate(24 * time.Hour),
	}
}

func TestRouteOrderAlwaysYieldsOrdersTable(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 22, 0, time.UTC)
	wh, obj := Route(enrichedAt(OrderEvent{EventType: "order", OrderID: "ord-1"}, ts))
	if wh == nil || wh.Table != "orders" {
		t.Fatalf("warehouse destination %+v", wh)
	}
	if obj.Path() == "" {
		t.Fatalf("empty object-store destination")
	}
}

func TestRouteUnknownCategorySkipsWarehouseOnly(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 22, 0, time.UTC)
	wh, obj := Route(enrichedAt(UnknownEvent{EventType: "refund"}, ts))
	if wh != nil {
		t.Fatalf("unexpected warehouse destination %+v", wh)
	}
	if obj.Folder != "output/refund/2024/03/05/14/07" {
		t.Fatalf("folder %s", obj.Folder)
	}
}

func TestRouteObjectStorePathFormat(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 22, 451*int(time.Millisecond), time.UTC)
	_, obj := Route(enrichedAt(InventoryEvent{EventType: "inventory"}, ts))
	if obj.Folder != "output/inventory/2024/03/05/14/07" {
		t.Fatalf("folder %s", obj.Folder)
	}
	if obj.Filename != "inventory_20240305140722451.json" {
		t.Fatalf("filename %s", obj.Filename)
	}
	if obj.Path() != "output/inventory/2024/03/05/14/07/inventory_20240305140722451.json" {
		t.Fatalf("path %s", obj.Path())
	}
}

func TestRoutePadsSingleDigitComponents(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6*int(time.Millisecond), time.UTC)
	_, obj := Route(enrichedAt(UserActivityEvent{EventType: "user_activity"}, ts))
	if obj.Folder != "output/user_activity/2024/01/02/03/04" {
		t.Fatalf("folder %s", obj.Folder)
	}
	if obj.Filename != "user_activity_20240102030405006.json" {
		t.Fatalf("filename %s", obj.Filename)
	}
}

func TestRecognizedCategoriesCoversAllThree(t *testing.T) {
	cats := RecognizedCategories()
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	seen := map[Category]bool{}
	for _, c := range cats {
		seen[c] = true
	}
	for _, want := range []Category{CategoryOrder, CategoryInventory, CategoryUserActivity} {
		if !seen[want] {
			t.Fatalf("missing category %s", want)
		}
	}
}
