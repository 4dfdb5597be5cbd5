package cache

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned when a key does not exist.
var ErrCacheMiss = errors.New("cache: key not found")

// Reader fetches JSON documents by key.
type Reader interface {
	Get(ctx context.Context, key string, dest interface{}) error
}
