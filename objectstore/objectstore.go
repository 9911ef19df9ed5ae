// Package objectstore abstracts the blob store receiving time-partitioned
// JSON output.
package objectstore

import "context"

// Store uploads blobs at deterministic paths. Uploads are idempotent for a
// given path; duplicate deliveries overwrite with identical content.
type Store interface {
	Upload(ctx context.Context, path string, data []byte) error
}
