// Package bus abstracts the message bus the pipeline consumes from and the
// generator publishes to. Fan-out across consumers is the broker's job:
// each consumer reads its own subscription queue.
package bus

import "context"

// Message is one raw, undecoded bus message.
type Message struct {
	ID         string
	PopReceipt string
	Body       string
}

// Queue is a single named queue on the bus.
type Queue interface {
	// Dequeue retrieves at most one message; (nil, nil) when the queue
	// is empty.
	Dequeue(ctx context.Context) (*Message, error)
	// Delete acknowledges a processed message.
	Delete(ctx context.Context, msg *Message) error
	// Enqueue publishes one message body.
	Enqueue(ctx context.Context, body string) error
}
