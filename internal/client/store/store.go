// Package store is the client's persistent key/value store: the terminal
// counterpart of browser local storage. Values are opaque bytes; there is no
// TTL and concurrent writers to one key race with last-write-wins.
package store

import "context"

// Store is the raw key/value surface. Only the owning components listed in
// keys.go should hold one.
type Store interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or overwrites the value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Update runs fn against a transactional view of the store. Writes made
	// through that view are applied together or not at all.
	Update(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
