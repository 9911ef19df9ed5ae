package warehouse

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"events-pipeline/domain"
)

// Provisioner creates destination tables on demand. It holds no locks:
// concurrent EnsureTable calls for the same identifier race on the
// warehouse's atomic create, and the loser treats ErrTableExists as
// success.
type Provisioner struct {
	client Client
}

func NewProvisioner(client Client) *Provisioner {
	return &Provisioner{client: client}
}

// DatasetName derives the per-environment dataset holding the event
// tables.
func DatasetName(environment string) string {
	return environment + "_events_dataset"
}

// ResolveTableID derives the fully-qualified identifier for a category in
// an environment.
func ResolveTableID(category domain.Category, environment string) (TableID, error) {
	table, ok := domain.WarehouseTable(category)
	if !ok {
		return TableID{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return TableID{Dataset: DatasetName(environment), Name: table}, nil
}

// EnsureTable makes sure the category's table exists in the environment's
// dataset. Subsequent calls are no-ops. Any failure other than a lost
// creation race surfaces to the caller; retrying is the scheduler's job.
func (p *Provisioner) EnsureTable(ctx context.Context, category domain.Category, environment string) error {
	id, err := ResolveTableID(category, environment)
	if err != nil {
		return err
	}

	exists, err := p.client.TableExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check table %s: %w", id, err)
	}
	if exists {
		log.WithField("table", id.String()).Debug("table already exists")
		return nil
	}

	schema, err := SchemaFor(category)
	if err != nil {
		return err
	}
	desc := TableDescriptor{
		ID:     id,
		Schema: schema,
		Labels: map[string]string{
			"environment": environment,
			"managed_by":  "table_manager",
			"table_type":  schema.Table,
		},
	}
	if err := p.client.CreateTable(ctx, desc); err != nil {
		if errors.Is(err, ErrTableExists) {
			log.WithField("table", id.String()).Info("table created concurrently")
			return nil
		}
		return fmt.Errorf("create table %s: %w", id, err)
	}
	log.WithFields(log.Fields{"table": id.String(), "environment": environment}).Info("created table")
	return nil
}
