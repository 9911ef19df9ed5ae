// Package generator fabricates well-formed sample events for the pipeline.
package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"events-pipeline/domain"
)

// ErrUnknownEventType indicates a requested type the generator cannot
// fabricate.
var ErrUnknownEventType = errors.New("unknown event type")

// Config describes one generation run.
type Config struct {
	EventsPerMinute int      `json:"events_per_minute"`
	DurationMinutes int      `json:"duration_minutes"`
	EventTypes      []string `json:"event_types"`
	Environment     string   `json:"environment"`
}

// DefaultConfig mirrors the defaults callers get when they omit fields.
func DefaultConfig() Config {
	return Config{
		EventsPerMinute: 60,
		DurationMinutes: 10,
		EventTypes:      []string{"order", "inventory", "user_activity"},
		Environment:     "dev",
	}
}

type product struct {
	id    string
	name  string
	price float64
}

var (
	products = []product{
		{"prod-001", "Laptop Computer", 999.99},
		{"prod-002", "Wireless Headphones", 129.99},
		{"prod-003", "Coffee Maker", 79.99},
		{"prod-004", "Running Shoes", 89.99},
		{"prod-005", "Smartphone", 699.99},
		{"prod-006", "Desk Chair", 199.99},
		{"prod-007", "Water Bottle", 24.99},
		{"prod-008", "Gaming Mouse", 59.99},
		{"prod-009", "Yoga Mat", 39.99},
		{"prod-010", "Backpack", 49.99},
	}
	warehouses = []string{"wh-us-east", "wh-us-west", "wh-us-central", "wh-eu-west", "wh-asia-pacific"}
	cities     = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose"}
	countries  = []string{"US", "CA", "UK", "DE", "FR", "AU", "JP"}
	streets    = []string{"Main", "Oak", "Pine", "Maple", "Cedar"}
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (Android 11; Mobile; rv:89.0) Gecko/89.0 Firefox/89.0",
	}
	platforms        = []string{"web", "mobile", "tablet"}
	activityTypes    = []string{"login", "logout", "view_product", "add_to_cart", "remove_from_cart"}
	orderStatuses    = []string{"pending", "processing", "shipped", "delivered"}
	inventoryReasons = []string{"restock", "sale", "return", "damage"}
)

// Generator fabricates events with realistic sample data and recent-past
// timestamps.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

func New() *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// Event fabricates one event of the given type as a JSON payload ready for
// the bus.
func (g *Generator) Event(eventType string) ([]byte, error) {
	var ev any
	switch domain.Category(eventType) {
	case domain.CategoryOrder:
		ev = g.order()
	case domain.CategoryInventory:
		ev = g.inventory()
	case domain.CategoryUserActivity:
		ev = g.userActivity()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}
	return json.Marshal(ev)
}

func (g *Generator) order() domain.OrderEvent {
	numItems := 1 + g.rng.Intn(3)
	picked := g.rng.Perm(len(products))[:numItems]
	items := make([]domain.OrderItem, 0, numItems)
	total := 0.0
	for _, idx := range picked {
		p := products[idx]
		quantity := 1 + g.rng.Intn(3)
		items = append(items, domain.OrderItem{
			ProductID:   p.id,
			ProductName: p.name,
			Quantity:    quantity,
			Price:       p.price,
		})
		total += p.price * float64(quantity)
	}
	orderTime := g.pastTime(60)
	return domain.OrderEvent{
		EventType:  "order",
		OrderID:    "ord-" + shortID(),
		CustomerID: fmt.Sprintf("customer-%03d", 1+g.rng.Intn(100)),
		OrderDate:  &orderTime,
		Status:     pick(g.rng, orderStatuses),
		Items:      items,
		ShippingAddress: domain.ShippingAddress{
			Street:  fmt.Sprintf("%d %s St", 100+g.rng.Intn(9900), pick(g.rng, streets)),
			City:    pick(g.rng, cities),
			Country: pick(g.rng, countries),
		},
		TotalAmount: float64(int(total*100+0.5)) / 100,
	}
}

func (g *Generator) inventory() domain.InventoryEvent {
	reason := pick(g.rng, inventoryReasons)
	var change int
	switch reason {
	case "restock":
		change = 10 + g.rng.Intn(91)
	case "sale":
		change = -(1 + g.rng.Intn(50))
	case "return":
		change = 1 + g.rng.Intn(20)
	default: // damage
		change = -(1 + g.rng.Intn(10))
	}
	ts := g.pastTime(30)
	return domain.InventoryEvent{
		EventType:      "inventory",
		InventoryID:    "inv-" + shortID(),
		ProductID:      products[g.rng.Intn(len(products))].id,
		WarehouseID:    pick(g.rng, warehouses),
		QuantityChange: change,
		Reason:         reason,
		Timestamp:      &ts,
	}
}

func (g *Generator) userActivity() domain.UserActivityEvent {
	ts := g.pastTime(15)
	return domain.UserActivityEvent{
		EventType:    "user_activity",
		UserID:       fmt.Sprintf("user-%04d", 1+g.rng.Intn(1000)),
		ActivityType: pick(g.rng, activityTypes),
		IPAddress: fmt.Sprintf("%d.%d.%d.%d",
			192+g.rng.Intn(12), g.rng.Intn(256), g.rng.Intn(256), 1+g.rng.Intn(254)),
		UserAgent: pick(g.rng, userAgents),
		Timestamp: &ts,
		Metadata: domain.ActivityMetadata{
			SessionID: "sess-" + hexID(12),
			Platform:  pick(g.rng, platforms),
		},
	}
}

func (g *Generator) pastTime(maxMinutes int) time.Time {
	return g.now().UTC().Add(-time.Duration(g.rng.Intn(maxMinutes+1)) * time.Minute)
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func shortID() string { return hexID(8) }

func hexID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
