package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"
)

// AzureClient implements Client over Azure Table Storage. Daily
// partitioning maps onto the entity PartitionKey; since Azure Tables has
// no native schema, clustering or labels, the full descriptor is persisted
// as a metadata entity in the created table.
type AzureClient struct {
	svc *aztables.ServiceClient
}

// NewAzureClient creates a client from a storage connection string.
func NewAzureClient(connStr string) (*AzureClient, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &AzureClient{svc: svc}, nil
}

// PhysicalName maps a logical table identifier onto a legal Azure table
// name: letters and digits only, camel-cased at the separators, so
// dev_events_dataset.user_activity becomes devEventsDatasetUserActivity.
func PhysicalName(id TableID) string {
	out := make([]rune, 0, len(id.Dataset)+len(id.Name))
	upperNext := false
	for _, r := range id.Dataset + "." + id.Name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext && len(out) > 0 {
			r = unicode.ToUpper(r)
		}
		out = append(out, r)
		upperNext = false
	}
	if len(out) == 0 || !unicode.IsLetter(out[0]) {
		out = append([]rune{'t'}, out...)
	}
	return string(out)
}

func (c *AzureClient) TableExists(ctx context.Context, id TableID) (bool, error) {
	name := PhysicalName(id)
	filter := fmt.Sprintf("TableName eq '%s'", name)
	pager := c.svc.NewListTablesPager(&aztables.ListTablesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return false, err
		}
		for _, tbl := range resp.Tables {
			if tbl.Name != nil && *tbl.Name == name {
				return true, nil
			}
		}
	}
	return false, nil
}

func (c *AzureClient) CreateTable(ctx context.Context, desc TableDescriptor) error {
	client := c.svc.NewClient(PhysicalName(desc.ID))
	if _, err := client.CreateTable(ctx, nil); err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
			return ErrTableExists
		}
		return err
	}

	descriptor, err := json.Marshal(desc)
	if err != nil {
		return err
	}
	meta := map[string]any{
		"PartitionKey": "_meta",
		"RowKey":       "descriptor",
		"Descriptor":   string(descriptor),
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if _, err := client.AddEntity(ctx, payload, nil); err != nil {
		var respErr *azcore.ResponseError
		if !(errors.As(err, &respErr) && respErr.ErrorCode == "EntityAlreadyExists") {
			return err
		}
	}
	return nil
}

func (c *AzureClient) AppendRow(ctx context.Context, id TableID, partitionKey string, row map[string]any) error {
	client := c.svc.NewClient(PhysicalName(id))
	ent := map[string]any{
		"PartitionKey": partitionKey,
		"RowKey":       uuid.NewString(),
	}
	for k, v := range row {
		ent[k] = flattenValue(v)
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	if _, err := client.AddEntity(ctx, payload, nil); err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == "TableNotFound" {
			return fmt.Errorf("%w: %s", ErrTableNotFound, id)
		}
		return err
	}
	return nil
}

// flattenValue encodes record and repeated-record values as JSON strings;
// Azure Tables properties are scalar.
func flattenValue(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return v
	}
}
