package generation

import (
	"context"
	"strings"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
)

// Completer is the single primitive a text model provider has to offer:
// send a prompt, receive the model's text answer.
type Completer interface {
	// Complete sends prompt to the model and returns its text response.
	// Errors wrap ErrTransientFailure, ErrContentBlocked or ErrInvalidResponse.
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts an ordinary function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f(ctx, prompt).
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// SearchTerms are the media search queries suggested for an article.
type SearchTerms struct {
	YouTubeQuery string `json:"youtube_query"`
	ImageQuery   string `json:"image_query"`
}

// DefaultSearchTerms derives search terms from a title alone: the whole title
// for video search and its first word for image search.
func DefaultSearchTerms(title string) SearchTerms {
	title = strings.TrimSpace(title)
	terms := SearchTerms{YouTubeQuery: title}
	if fields := strings.Fields(title); len(fields) > 0 {
		terms.ImageQuery = fields[0]
	}
	return terms
}

// ContentGenerator defines the interface for the generative operations the
// content pipeline relies on. This interface serves as a boundary between
// the application core and external AI/LLM services.
//
// Every method returns its documented safe default together with a non-nil
// error when the model call or the interpretation of its answer fails, so a
// caller may use the returned value either way.
type ContentGenerator interface {
	// VerifyFact reports whether the model judges the statement true.
	// Safe default: false.
	VerifyFact(ctx context.Context, fact string) (bool, error)

	// AdaptContentForAge rewrites content for readers in ageRange.
	// Safe default: the original content.
	AdaptContentForAge(ctx context.Context, content string, ageRange domain.AgeRange) (string, error)

	// GenerateEducationalContext produces a short explanatory paragraph about topic.
	// Safe default: "".
	GenerateEducationalContext(ctx context.Context, topic string) (string, error)

	// GenerateQuestions produces up to n comprehension questions about content.
	// Safe default: an empty slice.
	GenerateQuestions(ctx context.Context, content string, n int) ([]string, error)

	// FilterContentSafety reports whether content is appropriate for children.
	// Safe default: false.
	FilterContentSafety(ctx context.Context, content string) (bool, error)

	// ExtractFunFacts lists short surprising facts found in content.
	// Safe default: an empty slice.
	ExtractFunFacts(ctx context.Context, content string) ([]string, error)

	// SuggestSearchTerms proposes photo and video search queries for an article.
	// Safe default: DefaultSearchTerms(title).
	SuggestSearchTerms(ctx context.Context, title, content string) (SearchTerms, error)

	// CategorizeContent files an article under one of the supported categories.
	// Safe default: domain.DefaultCategory.
	CategorizeContent(ctx context.Context, title, content string) (domain.Category, error)
}

// GeneratedImage describes an illustration written to local storage.
type GeneratedImage struct {
	Path   string
	Prompt string
	Style  string
}

// ImageGenerator creates illustrations from a text prompt.
type ImageGenerator interface {
	// GenerateImage renders prompt in style and returns where the image was stored.
	GenerateImage(ctx context.Context, prompt, style string) (GeneratedImage, error)
}
