// Package docstore is the boundary to the schema-less document store that
// holds the events collection. Adapters live under infrastructure/docstore.
package docstore

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("docstore: document not found")

// Record is a schema-less document body. Values are JSON-compatible, plus the
// field transforms returned by Append and ServerTimestamp.
type Record map[string]any

type Document struct {
	ID   string
	Data Record
}

type Op string

const (
	OpAdded    Op = "added"
	OpModified Op = "modified"
	OpRemoved  Op = "removed"
	// OpResync means notifications may have been lost and the collection
	// should be read again.
	OpResync Op = "resync"
)

type Change struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         Op     `json:"op"`
}

type Subscription interface {
	// Close releases the subscription. Safe to call more than once.
	Close() error
}

type Store interface {
	List(ctx context.Context, collection string) ([]Document, error)
	Add(ctx context.Context, collection string, data Record) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, patch Record) error
	Delete(ctx context.Context, collection, id string) error
	Count(ctx context.Context, collection string) (int, error)

	// Subscribe calls onChange for every change to the collection until the
	// returned subscription is closed or ctx ends. onChange runs on a
	// goroutine owned by the store.
	Subscribe(ctx context.Context, collection string, onChange func(Change)) (Subscription, error)
}

// CloseFunc adapts a release function into an idempotent Subscription.
func CloseFunc(fn func() error) Subscription {
	return &onceCloser{fn: fn}
}

type onceCloser struct {
	once sync.Once
	fn   func() error
	err  error
}

func (c *onceCloser) Close() error {
	c.once.Do(func() { c.err = c.fn() })
	return c.err
}
