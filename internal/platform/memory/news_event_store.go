package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/store"
	"github.com/google/uuid"
)

// NewsEventStore is a map-backed store.NewsEventStore.
type NewsEventStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID]domain.NewsEvent
	now    func() time.Time
}

var _ store.NewsEventStore = (*NewsEventStore)(nil)

// NewNewsEventStore creates an empty store.
func NewNewsEventStore() *NewsEventStore {
	return &NewsEventStore{
		events: make(map[uuid.UUID]domain.NewsEvent),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Save inserts or replaces the event with the same ID. The original
// CreatedAt is kept when an event is replaced.
func (s *NewsEventStore) Save(_ context.Context, event domain.NewsEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyEvent(event)
	if existing, ok := s.events[event.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	s.events[event.ID] = stored
	return nil
}

// GetByID returns store.ErrNewsEventNotFound when id is unknown.
func (s *NewsEventStore) GetByID(_ context.Context, id uuid.UUID) (domain.NewsEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return domain.NewsEvent{}, store.ErrNewsEventNotFound
	}
	return copyEvent(event), nil
}

// GetEventsForProcessing returns RAW and PENDING_REPROCESS events, oldest first.
func (s *NewsEventStore) GetEventsForProcessing(_ context.Context) ([]domain.NewsEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.NewsEvent, 0)
	for _, e := range s.events {
		if e.ProcessingStatus == domain.StatusRaw || e.ProcessingStatus == domain.StatusPendingReprocess {
			out = append(out, copyEvent(e))
		}
	}
	sortEvents(out, true)
	return out, nil
}

// UpdateProcessingStatus changes the status of a stored event.
func (s *NewsEventStore) UpdateProcessingStatus(_ context.Context, id uuid.UUID, status domain.ProcessingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return store.ErrNewsEventNotFound
	}
	s.events[id] = event.WithStatus(status).WithUpdatedAt(s.now())
	return nil
}

// List applies filter with the same semantics as the PostgreSQL store.
func (s *NewsEventStore) List(_ context.Context, filter store.NewsEventFilter) ([]domain.NewsEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.NewsEvent, 0)
	for _, e := range s.events {
		if matches(e, filter) {
			out = append(out, copyEvent(e))
		}
	}
	sortEvents(out, filter.OldestFirst)

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []domain.NewsEvent{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// DeleteAll removes every event.
func (s *NewsEventStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.events))
	s.events = make(map[uuid.UUID]domain.NewsEvent)
	return n, nil
}

// Len reports how many events are stored.
func (s *NewsEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func matches(e domain.NewsEvent, f store.NewsEventFilter) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.Content != "" && !strings.Contains(strings.ToLower(e.RawContent), strings.ToLower(f.Content)) {
		return false
	}
	if f.Category != "" && !e.HasCategory(f.Category) {
		return false
	}
	if f.Status != "" && e.ProcessingStatus != f.Status {
		return false
	}
	if !f.PublishedAfter.IsZero() && e.PublishedAt.Before(f.PublishedAfter) {
		return false
	}
	if !f.PublishedBefore.IsZero() && !e.PublishedAt.Before(f.PublishedBefore) {
		return false
	}
	return true
}

func sortEvents(events []domain.NewsEvent, oldestFirst bool) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			if oldestFirst {
				return a.PublishedAt.Before(b.PublishedAt)
			}
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// copyEvent returns e with freshly allocated slices.
func copyEvent(e domain.NewsEvent) domain.NewsEvent {
	return e.WithUpdatedAt(e.UpdatedAt)
}
