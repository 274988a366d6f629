package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
)

// FetchCall records the arguments of one FetchRecentNews call.
type FetchCall struct {
	Query    string
	Since    time.Time
	Language string
}

// MockNewsAggregator implements service.NewsAggregator for testing.
type MockNewsAggregator struct {
	// FetchRecentNewsFn allows test cases to mock the FetchRecentNews behavior
	FetchRecentNewsFn func(ctx context.Context, query string, since time.Time, language string) ([]domain.RawNewsArticle, error)

	// Default response values
	Articles []domain.RawNewsArticle
	Err      error

	mu    sync.Mutex
	calls []FetchCall
}

// FetchRecentNews returns Articles and Err unless FetchRecentNewsFn is set.
func (m *MockNewsAggregator) FetchRecentNews(
	ctx context.Context,
	query string,
	since time.Time,
	language string,
) ([]domain.RawNewsArticle, error) {
	m.mu.Lock()
	m.calls = append(m.calls, FetchCall{Query: query, Since: since, Language: language})
	m.mu.Unlock()

	if m.FetchRecentNewsFn != nil {
		return m.FetchRecentNewsFn(ctx, query, since, language)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]domain.RawNewsArticle(nil), m.Articles...), nil
}

// Calls returns the recorded calls in order.
func (m *MockNewsAggregator) Calls() []FetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FetchCall(nil), m.calls...)
}
