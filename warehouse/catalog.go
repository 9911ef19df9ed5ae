package warehouse

import (
	"fmt"

	"events-pipeline/domain"
)

// schemas is the static catalog, one entry per recognized category. The
// two processing fields (processed_timestamp, event_date) are part of
// every schema; event_date is the daily partition field.
var schemas = map[domain.Category]TableSchema{
	domain.CategoryOrder: {
		Table: "orders",
		Fields: []Field{
			{Name: "event_type", Type: FieldString, Required: true},
			{Name: "order_id", Type: FieldString, Required: true},
			{Name: "customer_id", Type: FieldString, Required: true},
			{Name: "order_date", Type: FieldTimestamp, Required: true},
			{Name: "status", Type: FieldString, Required: true},
			{Name: "items", Type: FieldRecord, Repeated: true, Fields: []Field{
				{Name: "product_id", Type: FieldString, Required: true},
				{Name: "product_name", Type: FieldString, Required: true},
				{Name: "quantity", Type: FieldInteger, Required: true},
				{Name: "price", Type: FieldFloat, Required: true},
			}},
			{Name: "shipping_address", Type: FieldRecord, Required: true, Fields: []Field{
				{Name: "street", Type: FieldString, Required: true},
				{Name: "city", Type: FieldString, Required: true},
				{Name: "country", Type: FieldString, Required: true},
			}},
			{Name: "total_amount", Type: FieldFloat, Required: true},
			{Name: "processed_timestamp", Type: FieldTimestamp},
			{Name: "event_date", Type: FieldDate},
		},
		PartitionField:   "event_date",
		ClusteringFields: []string{"customer_id", "status"},
		Description:      "Order events",
	},
	domain.CategoryInventory: {
		Table: "inventory",
		Fields: []Field{
			{Name: "event_type", Type: FieldString, Required: true},
			{Name: "inventory_id", Type: FieldString, Required: true},
			{Name: "product_id", Type: FieldString, Required: true},
			{Name: "warehouse_id", Type: FieldString, Required: true},
			{Name: "quantity_change", Type: FieldInteger, Required: true},
			{Name: "reason", Type: FieldString, Required: true},
			{Name: "timestamp", Type: FieldTimestamp, Required: true},
			{Name: "processed_timestamp", Type: FieldTimestamp},
			{Name: "event_date", Type: FieldDate},
		},
		PartitionField:   "event_date",
		ClusteringFields: []string{"product_id", "warehouse_id"},
		Description:      "Inventory change events",
	},
	domain.CategoryUserActivity: {
		Table: "user_activity",
		Fields: []Field{
			{Name: "event_type", Type: FieldString, Required: true},
			{Name: "user_id", Type: FieldString, Required: true},
			{Name: "activity_type", Type: FieldString, Required: true},
			{Name: "ip_address", Type: FieldString, Required: true},
			{Name: "user_agent", Type: FieldString, Required: true},
			{Name: "timestamp", Type: FieldTimestamp, Required: true},
			{Name: "metadata", Type: FieldRecord, Required: true, Fields: []Field{
				{Name: "session_id", Type: FieldString, Required: true},
				{Name: "platform", Type: FieldString, Required: true},
			}},
			{Name: "processed_timestamp", Type: FieldTimestamp},
			{Name: "event_date", Type: FieldDate},
		},
		PartitionField:   "event_date",
		ClusteringFields: []string{"user_id", "activity_type"},
		Description:      "User activity events",
	},
}

// SchemaFor resolves the destination table schema for a category.
func SchemaFor(category domain.Category) (TableSchema, error) {
	schema, ok := schemas[category]
	if !ok {
		return TableSchema{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return schema, nil
}
