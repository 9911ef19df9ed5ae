package objectstore

import (
	"context"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureStore implements Store over Azure Blob Storage, one container per
// deployment.
type AzureStore struct {
	client    *azblob.Client
	container string
}

// NewAzureStore creates a blob client from a storage connection string.
func NewAzureStore(connStr, container string) (*AzureStore, error) {
	opts := azblob.ClientOptions{
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
	client, err := azblob.NewClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &AzureStore{client: client, container: container}, nil
}

// EnsureContainer creates the container if it does not exist yet.
func (s *AzureStore) EnsureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == "ContainerAlreadyExists" {
			return nil
		}
		return err
	}
	return nil
}

func (s *AzureStore) Upload(ctx context.Context, path string, data []byte) error {
	_, err := s.client.UploadBuffer(ctx, s.container, path, data, nil)
	return err
}
