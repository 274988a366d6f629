package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/logger"
	"github.com/bookofmonth/bookofmonth-api/internal/store"
)

const quizSize = 3

// BookAssemblyService compiles processed events into monthly books.
type BookAssemblyService struct {
	events store.NewsEventStore
	books  store.MonthlyBookStore
	logger *slog.Logger
	now    func() time.Time
}

// NewBookAssemblyService creates a BookAssemblyService.
func NewBookAssemblyService(
	eventStore store.NewsEventStore,
	bookStore store.MonthlyBookStore,
	logger *slog.Logger,
	opts ...Option,
) (*BookAssemblyService, error) {
	if eventStore == nil {
		return nil, errors.New("news event store cannot be nil")
	}
	if bookStore == nil {
		return nil, errors.New("monthly book store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := buildOptions(opts)

	return &BookAssemblyService{
		events: eventStore,
		books:  bookStore,
		logger: logger.With(slog.String("component", "book_assembly")),
		now:    o.now,
	}, nil
}

// AssembleBookForMonth builds the book for a month from the PROCESSED events
// published in it (UTC), oldest first. It does not save the book.
func (s *BookAssemblyService) AssembleBookForMonth(
	ctx context.Context,
	year int,
	month time.Month,
) (*domain.MonthlyBook, error) {
	if err := domain.ValidateBookPeriod(year, month); err != nil {
		return nil, err
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	entries, err := s.events.List(ctx, store.NewsEventFilter{
		Status:          domain.StatusProcessed,
		PublishedAfter:  start,
		PublishedBefore: start.AddDate(0, 1, 0),
		OldestFirst:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events for %s: %w", start.Format("2006-01"), err)
	}

	now := s.now()
	book := &domain.MonthlyBook{
		ID:             domain.MonthlyBookID(year, month),
		Year:           year,
		Month:          month,
		Title:          "Book of the Month: " + start.Format("January 2006"),
		CoverImageURL:  coverImage(year, month, entries),
		DailyEntries:   entries,
		EndOfMonthQuiz: quiz(entries),
		ParentsGuide:   parentsGuide(entries),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "assembled monthly book",
		slog.String("title", book.Title),
		slog.Int("entries", len(entries)))
	return book, nil
}

// AssembleBook assembles the month's book and saves it, replacing any book
// previously assembled for the same month.
func (s *BookAssemblyService) AssembleBook(ctx context.Context, year int, month time.Month) (*domain.MonthlyBook, error) {
	book, err := s.AssembleBookForMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	if existing, err := s.books.GetByYearMonth(ctx, year, month); err == nil {
		book.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, store.ErrMonthlyBookNotFound) {
		return nil, fmt.Errorf("failed to load existing book: %w", err)
	}

	if err := s.books.Save(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to save monthly book: %w", err)
	}
	return book, nil
}

func coverImage(year int, month time.Month, entries []domain.NewsEvent) string {
	for _, e := range entries {
		if e.ImageURL != "" {
			return e.ImageURL
		}
	}
	return fmt.Sprintf("https://picsum.photos/seed/%d-%d/800/600", year, int(month))
}

func quiz(entries []domain.NewsEvent) []domain.QuizQuestion {
	n := min(len(entries), quizSize)
	questions := make([]domain.QuizQuestion, 0, n)
	for _, e := range entries[:n] {
		questions = append(questions, domain.QuizQuestion{
			Question: fmt.Sprintf("What was the main topic of the event on day %d?", e.PublishedAt.Day()),
			Answer:   e.Title,
		})
	}
	return questions
}

func parentsGuide(entries []domain.NewsEvent) string {
	seen := make(map[domain.Category]bool)
	labels := make([]string, 0)
	for _, e := range entries {
		for _, c := range e.Categories {
			if !seen[c] {
				seen[c] = true
				labels = append(labels, c.Label())
			}
		}
	}
	sort.Strings(labels)

	if len(labels) == 0 {
		return "Talk to your child about what they learned this month!"
	}
	return fmt.Sprintf("This month's book covered topics like: %s. Talk to your child about what they learned!",
		strings.Join(labels, ", "))
}
