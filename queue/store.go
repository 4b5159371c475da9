package queue

import (
	"context"

	"github.com/xraph/resque/store"
)

// Store is the slice of store.Store the queue service needs.
type Store interface {
	store.SetStore
	store.ListStore

	// Del removes keys of any type.
	Del(ctx context.Context, keys ...string) error
}
