// Package cache is the read-through result cache in front of the record
// store. Entries are keyed by entity kind and id, and every write path that
// makes an entry stale must call Invalidate before acknowledging the caller.
package cache

import (
	"context"
	"fmt"
)

type Kind string

const (
	KindBook   Kind = "book"
	KindPatron Kind = "patron"
)

// Key builds the cache key for an entity, e.g. "book:42".
func Key(kind Kind, id uint) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// Cache is the contract the services program against. Get reports a miss via
// the bool; a broken cache entry is treated as a miss, never as a failure of
// the read path.
type Cache interface {
	Get(ctx context.Context, kind Kind, id uint, dest any) bool
	Set(ctx context.Context, kind Kind, id uint, value any)
	Invalidate(ctx context.Context, kind Kind, id uint) error
}
