package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"hepevd/internal/codec"
	"hepevd/internal/domain"
	"hepevd/internal/repository"
)

// Sources of a current event
const (
	SourceFile  = "file"
	SourceAPI   = "api"
	SourceStore = "store"
)

// LoadObserver is notified whenever a new event becomes current
type LoadObserver interface {
	EventLoaded(source string, version uint64)
}

// LoadedPayload is the payload of an event_loaded message
type LoadedPayload struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Source  string         `json:"source"`
	Version uint64         `json:"version"`
	Summary domain.Summary `json:"summary"`
}

// EventService provides the current event and event storage
type EventService struct {
	repo     repository.EventStore
	eventBus *EventBus
	observer LoadObserver

	mu      sync.RWMutex
	current *domain.Event
	record  *domain.EventRecord
	version uint64
}

// NewEventService creates a new event service. Until an event is loaded the
// current event is empty.
func NewEventService(repo repository.EventStore, eventBus *EventBus) *EventService {
	return &EventService{
		repo:     repo,
		eventBus: eventBus,
		current:  domain.NewEvent(""),
	}
}

// SetObserver attaches a load observer
func (s *EventService) SetObserver(o LoadObserver) {
	s.observer = o
}

// Current returns the current event and its version. The event must be
// treated as read-only.
func (s *EventService) Current() (*domain.Event, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.version
}

// CurrentRecord returns the stored record of the current event, nil if it
// was never stored
func (s *EventService) CurrentRecord() *domain.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

// Version returns the version of the current event
func (s *EventService) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Slice returns the current event's data for one dimension
func (s *EventService) Slice(dim domain.Dim) *domain.Slice {
	ev, _ := s.Current()
	return ev.ForDim(dim)
}

// Import decodes, validates and stores an event, then makes it current
func (s *EventService) Import(ctx context.Context, r io.Reader, imp codec.Importer, source string) (*domain.EventRecord, error) {
	event, err := codec.Decode(imp, r)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.SaveEvent(ctx, event, source)
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{Type: EventStored, Payload: rec})
	s.setCurrent(event, rec, source)
	return rec, nil
}

// LoadFile imports an event file, picking the codec from its extension
func (s *EventService) LoadFile(ctx context.Context, path string) (*domain.EventRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file: %w", err)
	}
	defer f.Close()

	rec, err := s.Import(ctx, f, codec.ForPath(path), SourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return rec, nil
}

// Restore makes the most recently stored event current. An empty store is
// not an error.
func (s *EventService) Restore(ctx context.Context) error {
	event, rec, err := s.repo.LatestEvent(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to restore event: %w", err)
	}
	s.setCurrent(event, rec, SourceStore)
	return nil
}

// Select makes a stored event current
func (s *EventService) Select(ctx context.Context, id string) (*domain.EventRecord, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	s.setCurrent(event, rec, SourceStore)
	return rec, nil
}

// List returns every stored event
func (s *EventService) List(ctx context.Context) ([]domain.EventRecord, error) {
	return s.repo.ListEvents(ctx)
}

// Get returns a stored event; "current" names the current event
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	if id == "current" {
		ev, _ := s.Current()
		return ev, nil
	}
	return s.repo.GetEvent(ctx, id)
}

// Delete removes a stored event. Deleting the current event keeps it
// loaded until another one replaces it.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.record != nil && s.record.ID == id {
		s.record = nil
	}
	s.mu.Unlock()

	s.eventBus.Publish(Event{
		Type:    EventDeleted,
		Payload: map[string]string{"id": id},
	})
	return nil
}

// Export writes a stored event, or the current one, in the exporter's format
func (s *EventService) Export(ctx context.Context, id string, exp codec.Exporter, w io.Writer) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return exp.Export(event, w)
}

func (s *EventService) setCurrent(event *domain.Event, rec *domain.EventRecord, source string) {
	s.mu.Lock()
	s.current = event
	s.record = rec
	s.version++
	version := s.version
	s.mu.Unlock()

	log.Printf("service: event %s (%s) is current, version %d", rec.ID, event.Name, version)
	if s.observer != nil {
		s.observer.EventLoaded(source, version)
	}
	s.eventBus.Publish(Event{
		Type: EventLoaded,
		Payload: LoadedPayload{
			ID:      rec.ID,
			Name:    event.Name,
			Source:  source,
			Version: version,
			Summary: event.Summarize(),
		},
	})
}
