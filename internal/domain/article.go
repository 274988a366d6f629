package domain

import (
	"fmt"
	"strings"
	"time"
)

// RawNewsArticle is an article as returned by a news aggregator, before any
// processing. Aggregators never produce articles with empty content.
type RawNewsArticle struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	SourceName  string    `json:"source_name"`
}

// HasContent reports whether the article carries a non-blank body.
func (a RawNewsArticle) HasContent() bool {
	return strings.TrimSpace(a.Content) != ""
}

// Validate checks that the article can be turned into a NewsEvent.
func (a RawNewsArticle) Validate() error {
	if strings.TrimSpace(a.URL) == "" {
		return fmt.Errorf("%w: article URL cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: article title cannot be empty", ErrValidation)
	}
	if !a.HasContent() {
		return fmt.Errorf("%w: article content cannot be empty", ErrValidation)
	}
	if a.PublishedAt.IsZero() {
		return ErrMissingPublishedAt
	}
	return nil
}
