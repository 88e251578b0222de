package contract

import (
	"context"
	"time"
)

// RequestQueue is the producer side of the request mailbox.
type RequestQueue interface {
	Send(ctx context.Context, body []byte) error
}

// QueueConsumer is the consumer side. Receive must return within roughly wait.
type QueueConsumer interface {
	Receive(ctx context.Context, max int, wait time.Duration) ([]QueueMessage, error)
	Delete(ctx context.Context, msg QueueMessage) error
}

type SearchGateway interface {
	Search(ctx context.Context, cuisine, location string, limit int) ([]Candidate, error)
}

// DetailStore omits ids it does not know. It either returns the subset that
// exists or fails the whole call.
type DetailStore interface {
	BatchGet(ctx context.Context, ids []string) (map[string]Detail, error)
}

type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
