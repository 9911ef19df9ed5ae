package domain

import "fmt"

// warehouseTables is the fixed category to table-name mapping. Categories
// outside it are excluded from the warehouse sink only.
var warehouseTables = map[Category]string{
	CategoryOrder:        "orders",
	CategoryInventory:    "inventory",
	CategoryUserActivity: "user_activity",
}

// RecognizedCategories returns the categories the router maps to warehouse
// tables. The schema catalog must cover exactly this set.
func RecognizedCategories() []Category {
	cats := make([]Category, 0, len(warehouseTables))
	for c := range warehouseTables {
		cats = append(cats, c)
	}
	return cats
}

// WarehouseTable resolves a category to its warehouse table name.
func WarehouseTable(c Category) (string, bool) {
	name, ok := warehouseTables[c]
	return name, ok
}

// WarehouseDestination names the append target for one event.
type WarehouseDestination struct {
	Table string
}

// ObjectStoreDestination is the deterministic blob location for one event,
// derived from the event's own timestamp. The folder truncates to the
// minute; the filename embeds the full timestamp down to milliseconds so
// concurrent events land in distinct objects.
type ObjectStoreDestination struct {
	Folder   string
	Filename string
}

func (d ObjectStoreDestination) Path() string { return d.Folder + "/" + d.Filename }

// Route maps an enriched event to its warehouse table, when its category
// is recognized, and always to an object-store destination.
func Route(ev *EnrichedEvent) (*WarehouseDestination, ObjectStoreDestination) {
	var wh *WarehouseDestination
	if table, ok := warehouseTables[ev.Event.Category()]; ok {
		wh = &WarehouseDestination{Table: table}
	}

	t := ev.EventTime
	cat := ev.Event.Category()
	obj := ObjectStoreDestination{
		Folder: fmt.Sprintf("output/%s/%04d/%02d/%02d/%02d/%02d",
			cat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute()),
		Filename: fmt.Sprintf("%s_%s%02d%03d.json",
			cat, t.Format("200601021504"), t.Second(), t.Nanosecond()/1e6),
	}
	return wh, obj
}
