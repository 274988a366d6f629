package testutils

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// CreateTestArticle creates a valid raw article whose URL is derived from title.
func CreateTestArticle(title string, publishedAt time.Time) domain.RawNewsArticle {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "-"))
	return domain.RawNewsArticle{
		Title:       title,
		Content:     fmt.Sprintf("%s. A story about %s for young readers.", title, strings.ToLower(title)),
		URL:         "https://news.example.com/" + slug,
		PublishedAt: publishedAt.UTC(),
		SourceName:  "Example News",
	}
}

// CreateTestNewsEvent creates a valid RAW news event for testing.
// It does not save the event to any store.
func CreateTestNewsEvent(t *testing.T, title string, publishedAt time.Time) domain.NewsEvent {
	t.Helper()

	event, err := domain.NewNewsEventFromArticle(CreateTestArticle(title, publishedAt), publishedAt)
	require.NoError(t, err, "Failed to create test news event")
	return event
}

// CreateProcessedNewsEvent creates a PROCESSED event filed under category
// with one verified fact, an image URL and discussion questions.
func CreateProcessedNewsEvent(
	t *testing.T,
	title string,
	publishedAt time.Time,
	category domain.Category,
) domain.NewsEvent {
	t.Helper()

	event := CreateTestNewsEvent(t, title, publishedAt)
	fact := domain.NewFact(title+" happened.", event.SourceURL).WithVerification(domain.VerificationVerified)
	return event.
		WithCategories(category).
		WithAgeAppropriateness(domain.AgeRange7To9).
		WithVerifiedFacts([]domain.Fact{fact}).
		WithFunFacts([]string{"Fun fact about " + title}).
		WithDiscussionQuestions([]string{"What did you learn about " + title + "?"}).
		WithImageURL("https://images.example.com/" + event.ID.String() + ".jpg").
		WithStatus(domain.StatusProcessed)
}
