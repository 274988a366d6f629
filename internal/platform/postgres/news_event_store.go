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
	"github.com/google/uuid"
)

// psql builds statements with PostgreSQL's $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// newsEventColumns lists the columns in the order scanNewsEvent expects.
var newsEventColumns = []string{
	"id", "title", "raw_content", "source_url", "published_at",
	"extracted_facts", "categories", "geographic_locations",
	"age_appropriateness", "is_verified", "processing_status",
	"image_path", "image_url", "video_url", "fun_facts", "discussion_questions",
	"created_at", "updated_at",
}

const upsertNewsEventSQL = `
	INSERT INTO news_events (
		id, title, raw_content, source_url, published_at,
		extracted_facts, categories, geographic_locations,
		age_appropriateness, is_verified, processing_status,
		image_path, image_url, video_url, fun_facts, discussion_questions,
		created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		raw_content = EXCLUDED.raw_content,
		source_url = EXCLUDED.source_url,
		published_at = EXCLUDED.published_at,
		extracted_facts = EXCLUDED.extracted_facts,
		categories = EXCLUDED.categories,
		geographic_locations = EXCLUDED.geographic_locations,
		age_appropriateness = EXCLUDED.age_appropriateness,
		is_verified = EXCLUDED.is_verified,
		processing_status = EXCLUDED.processing_status,
		image_path = EXCLUDED.image_path,
		image_url = EXCLUDED.image_url,
		video_url = EXCLUDED.video_url,
		fun_facts = EXCLUDED.fun_facts,
		discussion_questions = EXCLUDED.discussion_questions,
		updated_at = EXCLUDED.updated_at
`

// PostgresNewsEventStore implements the store.NewsEventStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNewsEventStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresNewsEventStore creates a new PostgreSQL implementation of the NewsEventStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresNewsEventStore(db store.DBTX, logger *slog.Logger) *PostgresNewsEventStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNewsEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "news_event_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ensure PostgresNewsEventStore implements store.NewsEventStore interface
var _ store.NewsEventStore = (*PostgresNewsEventStore)(nil)

// Save implements store.NewsEventStore.Save.
// The row is inserted, or every column except created_at is replaced when
// an event with the same ID already exists.
func (s *PostgresNewsEventStore) Save(ctx context.Context, event domain.NewsEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		log.Warn("news event validation failed during save",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	args, err := newsEventArgs(event)
	if err != nil {
		return store.NewStoreError("news_event", "save", "failed to encode event", err)
	}

	if _, err := s.db.ExecContext(ctx, upsertNewsEventSQL, args...); err != nil {
		log.Error("failed to save news event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return store.NewStoreError("news_event", "save", "failed to upsert event", MapError(err))
	}

	log.Debug("news event saved",
		slog.String("event_id", event.ID.String()),
		slog.String("status", string(event.ProcessingStatus)))
	return nil
}

// GetByID implements store.NewsEventStore.GetByID.
// Returns store.ErrNewsEventNotFound if the event does not exist.
func (s *PostgresNewsEventStore) GetByID(ctx context.Context, id uuid.UUID) (domain.NewsEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(newsEventColumns...).
		From("news_events").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.NewsEvent{}, fmt.Errorf("failed to build query: %w", err)
	}

	event, err := scanNewsEvent(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("news event not found", slog.String("event_id", id.String()))
			return domain.NewsEvent{}, store.ErrNewsEventNotFound
		}
		log.Error("failed to get news event by ID",
			slog.String("error", err.Error()),
			slog.String("event_id", id.String()))
		return domain.NewsEvent{}, store.NewStoreError("news_event", "get", "failed to load event", MapError(err))
	}
	return event, nil
}

// GetEventsForProcessing implements store.NewsEventStore.GetEventsForProcessing.
func (s *PostgresNewsEventStore) GetEventsForProcessing(ctx context.Context) ([]domain.NewsEvent, error) {
	query, args, err := psql.Select(newsEventColumns...).
		From("news_events").
		Where(sq.Eq{"processing_status": []string{
			string(domain.StatusRaw),
			string(domain.StatusPendingReprocess),
		}}).
		OrderBy("published_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return s.query(ctx, "get_for_processing", query, args)
}

// UpdateProcessingStatus implements store.NewsEventStore.UpdateProcessingStatus.
// Returns store.ErrNewsEventNotFound if the event does not exist.
func (s *PostgresNewsEventStore) UpdateProcessingStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.ProcessingStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidStatus)
	}

	query, args, err := psql.Update("news_events").
		Set("processing_status", string(status)).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update news event status",
			slog.String("error", err.Error()),
			slog.String("event_id", id.String()))
		return store.NewStoreError("news_event", "update_status", "failed to update status", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrNewsEventNotFound); err != nil {
		return err
	}

	log.Debug("news event status updated",
		slog.String("event_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// List implements store.NewsEventStore.List.
func (s *PostgresNewsEventStore) List(ctx context.Context, filter store.NewsEventFilter) ([]domain.NewsEvent, error) {
	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return s.query(ctx, "list", query, args)
}

// DeleteAll implements store.NewsEventStore.DeleteAll.
func (s *PostgresNewsEventStore) DeleteAll(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM news_events")
	if err != nil {
		return 0, store.NewStoreError("news_event", "delete_all", "failed to delete events", MapError(err))
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("deleted all news events", slog.Int64("deleted", deleted))
	return deleted, nil
}

func (s *PostgresNewsEventStore) query(ctx context.Context, op, query string, args []any) ([]domain.NewsEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query news events",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("news_event", op, "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	events := make([]domain.NewsEvent, 0)
	for rows.Next() {
		event, err := scanNewsEvent(rows)
		if err != nil {
			return nil, store.NewStoreError("news_event", op, "failed to scan event", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("news_event", op, "row iteration failed", MapError(err))
	}
	return events, nil
}

// buildListQuery translates filter into a SELECT over news_events.
func buildListQuery(filter store.NewsEventFilter) (string, []any, error) {
	builder := psql.Select(newsEventColumns...).From("news_events")

	if filter.Title != "" {
		builder = builder.Where(sq.ILike{"title": "%" + filter.Title + "%"})
	}
	if filter.Content != "" {
		builder = builder.Where(sq.ILike{"raw_content": "%" + filter.Content + "%"})
	}
	if filter.Category != "" {
		categories, err := json.Marshal([]domain.Category{filter.Category})
		if err != nil {
			return "", nil, err
		}
		builder = builder.Where(sq.Expr("categories @> ?::jsonb", string(categories)))
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"processing_status": string(filter.Status)})
	}
	if !filter.PublishedAfter.IsZero() {
		builder = builder.Where(sq.GtOrEq{"published_at": filter.PublishedAfter})
	}
	if !filter.PublishedBefore.IsZero() {
		builder = builder.Where(sq.Lt{"published_at": filter.PublishedBefore})
	}

	if filter.OldestFirst {
		builder = builder.OrderBy("published_at ASC", "id ASC")
	} else {
		builder = builder.OrderBy("published_at DESC", "id ASC")
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	return builder.ToSql()
}

func newsEventArgs(e domain.NewsEvent) ([]any, error) {
	facts, err := marshalJSON(e.ExtractedFacts)
	if err != nil {
		return nil, fmt.Errorf("extracted_facts: %w", err)
	}
	categories, err := marshalJSON(e.Categories)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	locations, err := marshalJSON(e.GeographicLocations)
	if err != nil {
		return nil, fmt.Errorf("geographic_locations: %w", err)
	}
	funFacts, err := marshalJSON(e.FunFacts)
	if err != nil {
		return nil, fmt.Errorf("fun_facts: %w", err)
	}
	questions, err := marshalJSON(e.DiscussionQuestions)
	if err != nil {
		return nil, fmt.Errorf("discussion_questions: %w", err)
	}

	return []any{
		e.ID, e.Title, e.RawContent, e.SourceURL, e.PublishedAt.UTC(),
		facts, categories, locations,
		string(e.AgeAppropriateness), e.IsVerified, string(e.ProcessingStatus),
		e.ImagePath, e.ImageURL, e.VideoURL, funFacts, questions,
		e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	}, nil
}

// marshalJSON encodes a slice for a JSONB column; nil becomes "[]".
func marshalJSON[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalJSON decodes a JSONB column; NULL or empty input yields an empty slice.
func unmarshalJSON[T any](data []byte) ([]T, error) {
	out := []T{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNewsEvent(row rowScanner) (domain.NewsEvent, error) {
	var e domain.NewsEvent
	var ageRange, status string
	var facts, categories, locations, funFacts, questions []byte

	if err := row.Scan(
		&e.ID, &e.Title, &e.RawContent, &e.SourceURL, &e.PublishedAt,
		&facts, &categories, &locations,
		&ageRange, &e.IsVerified, &status,
		&e.ImagePath, &e.ImageURL, &e.VideoURL, &funFacts, &questions,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return domain.NewsEvent{}, err
	}

	var err error
	if e.ExtractedFacts, err = unmarshalJSON[domain.Fact](facts); err != nil {
		return domain.NewsEvent{}, fmt.Errorf("decode extracted_facts: %w", err)
	}
	if e.Categories, err = unmarshalJSON[domain.Category](categories); err != nil {
		return domain.NewsEvent{}, fmt.Errorf("decode categories: %w", err)
	}
	if e.GeographicLocations, err = unmarshalJSON[domain.GeographicLocation](locations); err != nil {
		return domain.NewsEvent{}, fmt.Errorf("decode geographic_locations: %w", err)
	}
	if e.FunFacts, err = unmarshalJSON[string](funFacts); err != nil {
		return domain.NewsEvent{}, fmt.Errorf("decode fun_facts: %w", err)
	}
	if e.DiscussionQuestions, err = unmarshalJSON[string](questions); err != nil {
		return domain.NewsEvent{}, fmt.Errorf("decode discussion_questions: %w", err)
	}

	e.AgeAppropriateness = domain.AgeRange(ageRange)
	e.ProcessingStatus = domain.ProcessingStatus(status)
	e.PublishedAt = e.PublishedAt.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}
