package ports

import "context"

// StoredResponse is a replayable HTTP response captured for an idempotency key.
// Fingerprint identifies the request body that produced it.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// IdempotencyStore remembers the response produced for a client-supplied
// Idempotency-Key.
type IdempotencyStore interface {
	// Lookup returns nil, nil when key has not been seen.
	Lookup(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, resp StoredResponse) error
}
