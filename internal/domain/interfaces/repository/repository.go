package repository

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Load when no object exists at the key.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is a durable path-keyed blob store. Keys are slash-prefixed
// paths (sessions/, transcripts/, summaries/, workflows/, skills/ plus the
// monitor state key). Reads and writes are atomic per key; there are no
// cross-key transactions.
type ObjectStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
