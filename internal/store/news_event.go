package store

import (
	"context"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/google/uuid"
)

// NewsEventFilter narrows a List query. Zero values mean "no constraint".
type NewsEventFilter struct {
	// Title and Content match case-insensitive substrings.
	Title   string
	Content string

	Category        domain.Category
	Status          domain.ProcessingStatus
	PublishedAfter  time.Time // inclusive
	PublishedBefore time.Time // exclusive

	// OldestFirst orders by published_at ascending; the default is newest first.
	OldestFirst bool
	Limit       int
	Offset      int
}

// NewsEventStore defines the interface for news event data persistence.
// Version: 1.0
type NewsEventStore interface {
	// Save inserts the event or replaces the stored event with the same ID.
	// Returns validation errors from the domain NewsEvent if data is invalid.
	Save(ctx context.Context, event domain.NewsEvent) error

	// GetByID retrieves a news event by its unique ID.
	// Returns ErrNewsEventNotFound if the event does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.NewsEvent, error)

	// GetEventsForProcessing returns every event in status RAW or
	// PENDING_REPROCESS, oldest publication first.
	GetEventsForProcessing(ctx context.Context) ([]domain.NewsEvent, error)

	// UpdateProcessingStatus changes the status of a stored event.
	// Returns ErrNewsEventNotFound if the event does not exist.
	UpdateProcessingStatus(ctx context.Context, id uuid.UUID, status domain.ProcessingStatus) error

	// List returns the events matching filter. Returns an empty slice if none match.
	List(ctx context.Context, filter NewsEventFilter) ([]domain.NewsEvent, error)

	// DeleteAll removes every stored event and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// MonthlyBookStore defines the interface for monthly book persistence.
type MonthlyBookStore interface {
	// Save inserts the book or replaces the stored book with the same ID.
	Save(ctx context.Context, book *domain.MonthlyBook) error

	// GetByYearMonth retrieves the book for a month, with its entries loaded.
	// Returns ErrMonthlyBookNotFound if no book has been assembled for it.
	GetByYearMonth(ctx context.Context, year int, month time.Month) (*domain.MonthlyBook, error)
}
