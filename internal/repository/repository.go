package repository

import (
	"context"
	"errors"

	"hepevd/internal/domain"
)

// ErrNotFound is returned by stores when no event has the requested id
var ErrNotFound = errors.New("event not found")

// EventStore defines the interface for event persistence
type EventStore interface {
	// SaveEvent stores an event under its fingerprint. Saving the same
	// content again refreshes name, source and updated_at.
	SaveEvent(ctx context.Context, event *domain.Event, source string) (*domain.EventRecord, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	GetRecord(ctx context.Context, id string) (*domain.EventRecord, error)
	ListEvents(ctx context.Context) ([]domain.EventRecord, error)
	// LatestEvent returns the most recently saved event
	LatestEvent(ctx context.Context) (*domain.Event, *domain.EventRecord, error)
	DeleteEvent(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
