// Package sink holds the two fan-out writers: per-category warehouse
// appends and time-windowed object-store shards.
package sink

import (
	"context"

	"events-pipeline/domain"
	"events-pipeline/warehouse"
)

// WarehouseSink appends one row per event to a pre-existing table. It
// never creates tables: a missing destination is a hard failure for that
// event, and closing the gap is the provisioner's race to win.
type WarehouseSink struct {
	client      warehouse.Client
	environment string
}

func NewWarehouseSink(client warehouse.Client, environment string) *WarehouseSink {
	return &WarehouseSink{client: client, environment: environment}
}

// Append writes the event to the named table. The row carries exactly the
// schema's field set; anything else the event accumulated on the way is
// stripped.
func (s *WarehouseSink) Append(ctx context.Context, table string, ev *domain.EnrichedEvent) error {
	schema, err := warehouse.SchemaFor(ev.Event.Category())
	if err != nil {
		return err
	}
	row, err := warehouse.Row(ev, schema)
	if err != nil {
		return err
	}
	partitionKey, _ := row[schema.PartitionField].(string)
	id := warehouse.TableID{Dataset: warehouse.DatasetName(s.environment), Name: table}
	return s.client.AppendRow(ctx, id, partitionKey, row)
}
