package sink

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"events-pipeline/objectstore"
)

// Record is one serialized event destined for the object store. Path is
// fully deterministic given the event, so duplicate deliveries collapse
// onto the same destination.
type Record struct {
	Path    string
	Content []byte
}

// ObjectStoreWriter groups records into fixed-length processing-time
// windows and emits one newline-delimited shard per window once it closes.
// A window's content is not visible externally until its shard upload
// completes. A non-positive window disables batching: each record is
// uploaded individually at its own path.
type ObjectStoreWriter struct {
	store  objectstore.Store
	prefix string
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	batches map[int64][]Record
}

func NewObjectStoreWriter(store objectstore.Store, prefix string, window time.Duration) *ObjectStoreWriter {
	return &ObjectStoreWriter{
		store:   store,
		prefix:  prefix,
		window:  window,
		now:     time.Now,
		batches: map[int64][]Record{},
	}
}

// Write collects the record into the current window, or uploads it
// directly when windowing is disabled.
func (w *ObjectStoreWriter) Write(ctx context.Context, rec Record) error {
	if w.window <= 0 {
		return w.store.Upload(ctx, w.join(rec.Path), rec.Content)
	}
	start := w.now().UTC().Truncate(w.window).Unix()
	w.mu.Lock()
	w.batches[start] = append(w.batches[start], rec)
	w.mu.Unlock()
	return nil
}

// Run flushes closed windows until ctx is cancelled, then drains whatever
// is still buffered.
func (w *ObjectStoreWriter) Run(ctx context.Context) {
	if w.window <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(w.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := w.Close(drainCtx); err != nil {
				log.WithError(err).Error("draining object-store windows failed")
			}
			cancel()
			return
		case <-ticker.C:
			w.flushClosed(ctx)
		}
	}
}

// flushClosed uploads every window whose end lies in the past. Failed
// shards stay buffered for the next tick.
func (w *ObjectStoreWriter) flushClosed(ctx context.Context) {
	cutoff := w.now().UTC().Truncate(w.window).Unix()
	w.mu.Lock()
	closed := map[int64][]Record{}
	for start, recs := range w.batches {
		if start < cutoff {
			closed[start] = recs
			delete(w.batches, start)
		}
	}
	w.mu.Unlock()

	for start, recs := range closed {
		if err := w.uploadShard(ctx, start, recs); err != nil {
			log.WithError(err).WithField("window", start).Error("shard upload failed, retrying next window")
			w.mu.Lock()
			w.batches[start] = append(recs, w.batches[start]...)
			w.mu.Unlock()
		}
	}
}

// Close drains all buffered windows, closed or not.
func (w *ObjectStoreWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	remaining := w.batches
	w.batches = map[int64][]Record{}
	w.mu.Unlock()

	var firstErr error
	for start, recs := range remaining {
		if err := w.uploadShard(ctx, start, recs); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *ObjectStoreWriter) uploadShard(ctx context.Context, start int64, recs []Record) error {
	lines := make([][]byte, 0, len(recs))
	for _, rec := range recs {
		lines = append(lines, rec.Content)
	}
	content := append(bytes.Join(lines, []byte("\n")), '\n')
	path := w.join(w.shardName(start))
	if err := w.store.Upload(ctx, path, content); err != nil {
		return err
	}
	log.WithFields(log.Fields{"shard": path, "records": len(recs)}).Debug("wrote shard")
	return nil
}

func (w *ObjectStoreWriter) shardName(start int64) string {
	ts := time.Unix(start, 0).UTC().Format("20060102T150405Z")
	return fmt.Sprintf("output-%s-00000-of-00001.json", ts)
}

func (w *ObjectStoreWriter) join(path string) string {
	if w.prefix == "" {
		return path
	}
	return w.prefix + "/" + path
}
