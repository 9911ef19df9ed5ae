// Package warehouse models the analytical store: per-category table
// schemas, idempotent table provisioning and row appends. The store itself
// is reached through the Client interface; aztables.go provides the Azure
// Tables implementation.
package warehouse

import (
	"context"
	"errors"
)

var (
	// ErrUnknownCategory indicates the catalog has no schema for the
	// requested category.
	ErrUnknownCategory = errors.New("unknown event category")

	// ErrTableExists is returned by Client.CreateTable when a concurrent
	// creator won the race. Callers treat it as success.
	ErrTableExists = errors.New("table already exists")

	// ErrTableNotFound is returned by Client.AppendRow when the
	// destination table has not been provisioned. The sink never creates
	// tables on the fly.
	ErrTableNotFound = errors.New("table not found")
)

// FieldType is the semantic type of a schema field.
type FieldType string

const (
	FieldString    FieldType = "STRING"
	FieldInteger   FieldType = "INTEGER"
	FieldFloat     FieldType = "FLOAT"
	FieldTimestamp FieldType = "TIMESTAMP"
	FieldDate      FieldType = "DATE"
	FieldRecord    FieldType = "RECORD"
)

// Field is one column of a table schema. Record fields nest.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Repeated bool
	Fields   []Field
}

// TableSchema is the immutable, build-time definition of one category's
// destination table.
type TableSchema struct {
	Table            string
	Fields           []Field
	PartitionField   string
	ClusteringFields []string
	Description      string
}

// FieldNames returns the top-level field names in schema order.
func (s TableSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// TableID is a fully-qualified table identifier.
type TableID struct {
	Dataset string
	Name    string
}

func (id TableID) String() string { return id.Dataset + "." + id.Name }

// TableDescriptor carries everything needed to create a table: the field
// list, daily time partitioning on the schema's partition field,
// clustering keys and descriptive labels.
type TableDescriptor struct {
	ID     TableID
	Schema TableSchema
	Labels map[string]string
}

// Client is the warehouse capability surface the pipeline depends on.
type Client interface {
	TableExists(ctx context.Context, id TableID) (bool, error)
	CreateTable(ctx context.Context, desc TableDescriptor) error
	AppendRow(ctx context.Context, id TableID, partitionKey string, row map[string]any) error
}
