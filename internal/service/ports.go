package service

import (
	"context"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
)

// NewsAggregator fetches raw articles from a news provider.
type NewsAggregator interface {
	// FetchRecentNews returns articles matching query published at or after
	// since. Articles without content are never returned. An empty result is
	// not an error.
	FetchRecentNews(ctx context.Context, query string, since time.Time, language string) ([]domain.RawNewsArticle, error)
}

// PhotoSearcher finds a stock photo for a search query.
type PhotoSearcher interface {
	// SearchPhoto returns the URL of the best matching photo, or "" when the
	// searcher is not configured or nothing was found.
	SearchPhoto(ctx context.Context, query string) (string, error)
}

// VideoSearcher finds a short educational video for a search query.
type VideoSearcher interface {
	// SearchVideo returns a watch URL, or "" when the searcher is not
	// configured or nothing was found.
	SearchVideo(ctx context.Context, query string) (string, error)
}
