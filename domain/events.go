package domain

import (
	"encoding/json"
	"time"
)

// Category discriminates event shape and destination.
type Category string

const (
	CategoryOrder        Category = "order"
	CategoryInventory    Category = "inventory"
	CategoryUserActivity Category = "user_activity"
)

// Event is one decoded message from the bus. Each recognized category has
// its own constructor; payloads that carry an unmapped event_type decode
// into UnknownEvent so they can still reach the object store.
type Event interface {
	Category() Category
	// OccurredAt reports the event's own timestamp when the source
	// supplied one.
	OccurredAt() (time.Time, bool)
}

type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type OrderEvent struct {
	EventType       string          `json:"event_type"`
	OrderID         string          `json:"order_id"`
	CustomerID      string          `json:"customer_id"`
	OrderDate       *time.Time      `json:"order_date,omitempty"`
	Status          string          `json:"status"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	TotalAmount     float64         `json:"total_amount"`
}

func (e OrderEvent) Category() Category { return CategoryOrder }

func (e OrderEvent) OccurredAt() (time.Time, bool) {
	if e.OrderDate == nil {
		return time.Time{}, false
	}
	return *e.OrderDate, true
}

type InventoryEvent struct {
	EventType      string     `json:"event_type"`
	InventoryID    string     `json:"inventory_id"`
	ProductID      string     `json:"product_id"`
	WarehouseID    string     `json:"warehouse_id"`
	QuantityChange int        `json:"quantity_change"`
	Reason         string     `json:"reason"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

func (e InventoryEvent) Category() Category { return CategoryInventory }

func (e InventoryEvent) OccurredAt() (time.Time, bool) {
	if e.Timestamp == nil {
		return time.Time{}, false
	}
	return *e.Timestamp, true
}

type ActivityMetadata struct {
	SessionID string `json:"session_id"`
	Platform  string `json:"platform"`
}

type UserActivityEvent struct {
	EventType    string           `json:"event_type"`
	UserID       string           `json:"user_id"`
	ActivityType string           `json:"activity_type"`
	IPAddress    string           `json:"ip_address"`
	UserAgent    string           `json:"user_agent"`
	Timestamp    *time.Time       `json:"timestamp,omitempty"`
	Metadata     ActivityMetadata `json:"metadata"`
}

func (e UserActivityEvent) Category() Category { return CategoryUserActivity }

func (e UserActivityEvent) OccurredAt() (time.Time, bool) {
	if e.Timestamp == nil {
		return time.Time{}, false
	}
	return *e.Timestamp, true
}

// UnknownEvent carries a payload whose event_type is present but not one of
// the recognized categories. It never reaches the warehouse.
type UnknownEvent struct {
	EventType string
	Payload   json.RawMessage
}

func (e UnknownEvent) Category() Category { return Category(e.EventType) }

func (e UnknownEvent) OccurredAt() (time.Time, bool) { return time.Time{}, false }
