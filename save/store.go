// Package save persists scheduler snapshots into named slots
package save

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a slot has never been saved
var ErrNotFound = errors.New("save: slot not found")

// Record is one saved snapshot
// Data holds the scheduler's binary image, Tick the simulation tick it was taken at
type Record struct {
	ID      string
	Slot    string
	Tick    uint64
	Data    []byte
	SavedAt time.Time
}

// Store saves and loads records by slot name
// Load returns the most recent record written to slot
type Store interface {
	Save(ctx context.Context, slot string, rec Record) error
	Load(ctx context.Context, slot string) (Record, error)
}

var errSlotRequired = errors.New("save: slot is required")
