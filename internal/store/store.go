// Package store persists save-slot snapshots. A snapshot is an opaque string;
// each slot holds at most one.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by Load when the slot has never been saved.
var ErrNotFound = errors.New("save slot not found")

// ErrInvalidSlot is returned for slot names that are unsafe as keys or file names.
var ErrInvalidSlot = errors.New("invalid save slot name")

// Store is a key/value store of save snapshots.
type Store interface {
	// Load returns the snapshot saved under slot, or ErrNotFound.
	Load(ctx context.Context, slot string) (string, error)
	// Save replaces the snapshot under slot.
	Save(ctx context.Context, slot, data string) error
	// Delete removes slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, slot string) error
	Close() error
}

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateSlot rejects slot names outside [A-Za-z0-9_-]{1,64}.
func ValidateSlot(slot string) error {
	if !slotPattern.MatchString(slot) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return nil
}
