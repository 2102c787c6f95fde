package core

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KV.GetItem for keys that were never set or were removed.
var ErrKeyNotFound = errors.New("key not found")

// Well-known KV keys. These mirror the keys the mobile client historically
// kept in its on-device store.
const (
	KeyUsername  = "username"
	KeyToken     = "token"
	KeyParent    = "parent" // cached parent snapshot, JSON
	KeyLastRoute = "lastRoute"
)

// KV is an opaque string store for session tokens and cached snapshots.
type KV interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
