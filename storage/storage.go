// Package storage provides durable, whole-value key/value slots scoped to a
// visitor namespace. A slot plays the part of a browser's local storage
// entry: it is read once at startup and overwritten in full after every
// change.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Slot.Load when nothing has been saved yet.
var ErrNotFound = errors.New("storage: slot not found")

// Slot is a single durable value.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Backend hands out slots. Slots with the same namespace and key share data.
type Backend interface {
	Slot(namespace, key string) Slot
}
