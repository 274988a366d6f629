package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/logger"
	"github.com/bookofmonth/bookofmonth-api/internal/store"
)

const upsertMonthlyBookSQL = `
	INSERT INTO monthly_books (
		id, year, month, title, cover_image_url, end_of_month_quiz, parents_guide, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		cover_image_url = EXCLUDED.cover_image_url,
		end_of_month_quiz = EXCLUDED.end_of_month_quiz,
		parents_guide = EXCLUDED.parents_guide,
		updated_at = EXCLUDED.updated_at
`

// PostgresMonthlyBookStore implements the store.MonthlyBookStore interface.
// A book row holds the assembled texts; its entries are references to
// stored news events, kept in order in monthly_book_entries.
type PostgresMonthlyBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMonthlyBookStore creates a new PostgreSQL implementation of the MonthlyBookStore interface.
func NewPostgresMonthlyBookStore(db store.DBTX, logger *slog.Logger) *PostgresMonthlyBookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMonthlyBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "monthly_book_store")),
	}
}

// Ensure PostgresMonthlyBookStore implements store.MonthlyBookStore interface
var _ store.MonthlyBookStore = (*PostgresMonthlyBookStore)(nil)

// Save implements store.MonthlyBookStore.Save.
// The book row and its entry list are replaced atomically. When the store
// was created over a *sql.DB a transaction is opened here; when it already
// runs inside a transaction that transaction is used.
func (s *PostgresMonthlyBookStore) Save(ctx context.Context, book *domain.MonthlyBook) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if book == nil {
		return fmt.Errorf("%w: book cannot be nil", store.ErrInvalidEntity)
	}
	if err := book.Validate(); err != nil {
		log.Warn("monthly book validation failed during save",
			slog.String("error", err.Error()),
			slog.Int("year", book.Year),
			slog.Int("month", int(book.Month)))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	save := func(ctx context.Context, db store.DBTX) error {
		return s.save(ctx, db, book)
	}

	var err error
	if sqlDB, ok := s.db.(*sql.DB); ok {
		err = store.RunInTransaction(ctx, sqlDB, func(ctx context.Context, tx *sql.Tx) error {
			return save(ctx, tx)
		})
	} else {
		err = save(ctx, s.db)
	}
	if err != nil {
		log.Error("failed to save monthly book",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	log.Info("monthly book saved",
		slog.String("book_id", book.ID.String()),
		slog.Int("entries", len(book.DailyEntries)))
	return nil
}

func (s *PostgresMonthlyBookStore) save(ctx context.Context, db store.DBTX, book *domain.MonthlyBook) error {
	quiz := book.EndOfMonthQuiz
	if quiz == nil {
		quiz = []domain.QuizQuestion{}
	}
	quizJSON, err := json.Marshal(quiz)
	if err != nil {
		return store.NewStoreError("monthly_book", "save", "failed to encode quiz", err)
	}

	if _, err := db.ExecContext(ctx, upsertMonthlyBookSQL,
		book.ID, book.Year, int(book.Month), book.Title, book.CoverImageURL,
		string(quizJSON), book.ParentsGuide, book.CreatedAt.UTC(), book.UpdatedAt.UTC(),
	); err != nil {
		return store.NewStoreError("monthly_book", "save", "failed to upsert book", MapError(err))
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM monthly_book_entries WHERE book_id = $1", book.ID); err != nil {
		return store.NewStoreError("monthly_book", "save", "failed to clear entries", MapError(err))
	}

	ids := book.EntryIDs()
	if len(ids) == 0 {
		return nil
	}

	insert := psql.Insert("monthly_book_entries").Columns("book_id", "position", "news_event_id")
	for i, id := range ids {
		insert = insert.Values(book.ID, i, id)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return store.NewStoreError("monthly_book", "save", "failed to insert entries", MapError(err))
	}
	return nil
}

// GetByYearMonth implements store.MonthlyBookStore.GetByYearMonth.
// Returns store.ErrMonthlyBookNotFound if no book exists for the month.
func (s *PostgresMonthlyBookStore) GetByYearMonth(
	ctx context.Context,
	year int,
	month time.Month,
) (*domain.MonthlyBook, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(
		"id", "year", "month", "title", "cover_image_url",
		"end_of_month_quiz", "parents_guide", "created_at", "updated_at",
	).
		From("monthly_books").
		Where(sq.Eq{"year": year, "month": int(month)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var book domain.MonthlyBook
	var monthNum int
	var quiz []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&book.ID, &book.Year, &monthNum, &book.Title, &book.CoverImageURL,
		&quiz, &book.ParentsGuide, &book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("monthly book not found", slog.Int("year", year), slog.Int("month", int(month)))
			return nil, store.ErrMonthlyBookNotFound
		}
		return nil, store.NewStoreError("monthly_book", "get", "failed to load book", MapError(err))
	}
	book.Month = time.Month(monthNum)
	book.CreatedAt = book.CreatedAt.UTC()
	book.UpdatedAt = book.UpdatedAt.UTC()
	if book.EndOfMonthQuiz, err = unmarshalJSON[domain.QuizQuestion](quiz); err != nil {
		return nil, store.NewStoreError("monthly_book", "get", "failed to decode quiz", err)
	}

	entries, err := s.loadEntries(ctx, book)
	if err != nil {
		return nil, err
	}
	book.DailyEntries = entries
	return &book, nil
}

func (s *PostgresMonthlyBookStore) loadEntries(ctx context.Context, book domain.MonthlyBook) ([]domain.NewsEvent, error) {
	columns := make([]string, len(newsEventColumns))
	for i, c := range newsEventColumns {
		columns[i] = "e." + c
	}

	query, args, err := psql.Select(columns...).
		From("monthly_book_entries be").
		Join("news_events e ON e.id = be.news_event_id").
		Where(sq.Eq{"be.book_id": book.ID}).
		OrderBy("be.position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("monthly_book", "get", "failed to load entries", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := make([]domain.NewsEvent, 0)
	for rows.Next() {
		event, err := scanNewsEvent(rows)
		if err != nil {
			return nil, store.NewStoreError("monthly_book", "get", "failed to scan entry", err)
		}
		entries = append(entries, event)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("monthly_book", "get", "entry iteration failed", MapError(err))
	}
	return entries, nil
}
