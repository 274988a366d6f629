package mocks

import (
	"context"
	"sync"

	"github.com/bookofmonth/bookofmonth-api/internal/generation"
)

// queryRecorder tracks the queries passed to a searcher.
type queryRecorder struct {
	mu      sync.Mutex
	queries []string
}

func (r *queryRecorder) add(q string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
}

// Queries returns the recorded queries in order.
func (r *queryRecorder) Queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

// MockPhotoSearcher implements service.PhotoSearcher for testing.
type MockPhotoSearcher struct {
	SearchPhotoFn func(ctx context.Context, query string) (string, error)

	// URL and Err are returned when SearchPhotoFn is nil
	URL string
	Err error

	queryRecorder
}

// SearchPhoto implements service.PhotoSearcher.
func (m *MockPhotoSearcher) SearchPhoto(ctx context.Context, query string) (string, error) {
	m.add(query)
	if m.SearchPhotoFn != nil {
		return m.SearchPhotoFn(ctx, query)
	}
	return m.URL, m.Err
}

// MockVideoSearcher implements service.VideoSearcher for testing.
type MockVideoSearcher struct {
	SearchVideoFn func(ctx context.Context, query string) (string, error)

	// URL and Err are returned when SearchVideoFn is nil
	URL string
	Err error

	queryRecorder
}

// SearchVideo implements service.VideoSearcher.
func (m *MockVideoSearcher) SearchVideo(ctx context.Context, query string) (string, error) {
	m.add(query)
	if m.SearchVideoFn != nil {
		return m.SearchVideoFn(ctx, query)
	}
	return m.URL, m.Err
}

// MockImageGenerator implements generation.ImageGenerator for testing.
type MockImageGenerator struct {
	GenerateImageFn func(ctx context.Context, prompt, style string) (generation.GeneratedImage, error)

	// Path and Err are returned when GenerateImageFn is nil
	Path string
	Err  error

	queryRecorder
}

var _ generation.ImageGenerator = (*MockImageGenerator)(nil)

// GenerateImage implements generation.ImageGenerator. The prompt is recorded
// and available through Queries.
func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt, style string) (generation.GeneratedImage, error) {
	m.add(prompt)
	if m.GenerateImageFn != nil {
		return m.GenerateImageFn(ctx, prompt, style)
	}
	if m.Err != nil {
		return generation.GeneratedImage{}, m.Err
	}
	return generation.GeneratedImage{Path: m.Path, Prompt: prompt, Style: style}, nil
}
