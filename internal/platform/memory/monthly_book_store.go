package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/store"
)

type bookKey struct {
	year  int
	month time.Month
}

// MonthlyBookStore is a map-backed store.MonthlyBookStore keyed by period.
type MonthlyBookStore struct {
	mu    sync.RWMutex
	books map[bookKey]domain.MonthlyBook
}

var _ store.MonthlyBookStore = (*MonthlyBookStore)(nil)

// NewMonthlyBookStore creates an empty store.
func NewMonthlyBookStore() *MonthlyBookStore {
	return &MonthlyBookStore{books: make(map[bookKey]domain.MonthlyBook)}
}

// Save inserts or replaces the book for its month.
func (s *MonthlyBookStore) Save(_ context.Context, book *domain.MonthlyBook) error {
	if book == nil {
		return fmt.Errorf("%w: book cannot be nil", store.ErrInvalidEntity)
	}
	if err := book.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[bookKey{book.Year, book.Month}] = copyBook(*book)
	return nil
}

// GetByYearMonth returns store.ErrMonthlyBookNotFound when no book is stored.
func (s *MonthlyBookStore) GetByYearMonth(_ context.Context, year int, month time.Month) (*domain.MonthlyBook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[bookKey{year, month}]
	if !ok {
		return nil, store.ErrMonthlyBookNotFound
	}
	out := copyBook(book)
	return &out, nil
}

func copyBook(b domain.MonthlyBook) domain.MonthlyBook {
	entries := make([]domain.NewsEvent, len(b.DailyEntries))
	for i, e := range b.DailyEntries {
		entries[i] = copyEvent(e)
	}
	b.DailyEntries = entries
	b.EndOfMonthQuiz = append([]domain.QuizQuestion{}, b.EndOfMonthQuiz...)
	return b
}
