// Package store persists the two pool slots and exposes them as a PoolState.
package store

import (
	"errors"
	"fmt"

	"github.com/defistate/pairpool-go/protocols/pair"
)

var (
	// ErrNotFound is returned by a Store when a slot has never been saved.
	ErrNotFound = errors.New("slot not found")
	// ErrStorage wraps failures of the underlying storage backend.
	ErrStorage = errors.New("storage failure")
	// ErrNotInitialized is returned when a pool is read before it was created.
	ErrNotInitialized = errors.New("pool not initialized")
	// ErrAlreadyInitialized is returned when a pool is created twice.
	ErrAlreadyInitialized = errors.New("pool already initialized")
)

// Entry is a slot write.
type Entry struct {
	Slot  string
	Token pair.Token
}

// Store loads and saves pool slots by name.
//
// CONTRACT:
//  1. Save is all-or-nothing: either every entry is persisted or none is.
//  2. Load returns a Token that does not share memory with the stored value.
//  3. Load returns an error wrapping ErrNotFound for a slot that was never saved.
type Store interface {
	Load(slot string) (pair.Token, error)
	Save(entries ...Entry) error
}

func storageErr(op, slot string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrStorage, op, slot, err)
}
