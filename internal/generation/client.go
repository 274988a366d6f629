package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/redact"
)

const (
	// DefaultQuestionCount is used when GenerateQuestions is asked for n <= 0.
	DefaultQuestionCount = 3
	maxFunFacts          = 5
)

// ContentClient implements ContentGenerator on top of any Completer.
// It owns prompt construction and the normalization of model answers.
type ContentClient struct {
	completer Completer
	logger    *slog.Logger
}

var _ ContentGenerator = (*ContentClient)(nil)

// NewContentClient creates a ContentClient backed by completer.
//
// Parameters:
//   - completer: The provider adapter that executes prompts
//   - logger: A structured logger for operation logging (slog.Default() if nil)
//
// Returns:
//   - A ContentClient, or ErrInvalidConfig if completer is nil
func NewContentClient(completer Completer, logger *slog.Logger) (*ContentClient, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: completer cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentClient{
		completer: completer,
		logger:    logger.With(slog.String("component", "content_client")),
	}, nil
}

// ask renders the named prompt and sends it to the completer.
func (c *ContentClient) ask(ctx context.Context, operation, promptName string, data promptData) (string, error) {
	prompt, err := renderPrompt(promptName, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	c.logger.DebugContext(ctx, "sending prompt",
		slog.String("operation", operation),
		slog.Int("prompt_length", len(prompt)))

	response, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		c.logger.DebugContext(ctx, "model call failed",
			slog.String("operation", operation),
			slog.String("error", redact.Error(err)))
		return "", err
	}
	return response, nil
}

func (c *ContentClient) logInvalid(ctx context.Context, operation string, err error) {
	if errors.Is(err, ErrInvalidResponse) {
		c.logger.DebugContext(ctx, "model response could not be used",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
	}
}

// VerifyFact implements ContentGenerator.
func (c *ContentClient) VerifyFact(ctx context.Context, fact string) (bool, error) {
	if strings.TrimSpace(fact) == "" {
		return false, ErrEmptyInput
	}
	response, err := c.ask(ctx, "verify_fact", "verify_fact", promptData{Text: fact})
	if err != nil {
		return false, err
	}
	verified, err := parseBool(response)
	c.logInvalid(ctx, "verify_fact", err)
	return verified, err
}

// AdaptContentForAge implements ContentGenerator.
func (c *ContentClient) AdaptContentForAge(
	ctx context.Context,
	content string,
	ageRange domain.AgeRange,
) (string, error) {
	if strings.TrimSpace(content) == "" {
		return content, ErrEmptyInput
	}
	if !ageRange.IsValid() {
		return content, domain.ErrInvalidAgeRange
	}
	response, err := c.ask(ctx, "adapt_content", "adapt", promptData{Text: content, AgeRange: ageRange})
	if err != nil {
		return content, err
	}
	adapted := stripCodeFence(response)
	if adapted == "" {
		err := fmt.Errorf("%w: empty adaptation", ErrInvalidResponse)
		c.logInvalid(ctx, "adapt_content", err)
		return content, err
	}
	return adapted, nil
}

// GenerateEducationalContext implements ContentGenerator.
func (c *ContentClient) GenerateEducationalContext(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", ErrEmptyInput
	}
	response, err := c.ask(ctx, "educational_context", "educational_context", promptData{Text: topic})
	if err != nil {
		return "", err
	}
	text := stripCodeFence(response)
	if text == "" {
		err := fmt.Errorf("%w: empty educational context", ErrInvalidResponse)
		c.logInvalid(ctx, "educational_context", err)
		return "", err
	}
	return text, nil
}

// GenerateQuestions implements ContentGenerator.
func (c *ContentClient) GenerateQuestions(ctx context.Context, content string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultQuestionCount
	}
	if strings.TrimSpace(content) == "" {
		return []string{}, ErrEmptyInput
	}
	response, err := c.ask(ctx, "generate_questions", "questions", promptData{Text: content, Count: n})
	if err != nil {
		return []string{}, err
	}
	questions := parseLines(response, n)
	if len(questions) == 0 {
		err := fmt.Errorf("%w: no questions in response", ErrInvalidResponse)
		c.logInvalid(ctx, "generate_questions", err)
		return []string{}, err
	}
	return questions, nil
}

// FilterContentSafety implements ContentGenerator.
func (c *ContentClient) FilterContentSafety(ctx context.Context, content string) (bool, error) {
	if strings.TrimSpace(content) == "" {
		return false, ErrEmptyInput
	}
	response, err := c.ask(ctx, "filter_safety", "filter_safety", promptData{Text: content})
	if err != nil {
		return false, err
	}
	safe, err := parseBool(response)
	c.logInvalid(ctx, "filter_safety", err)
	return safe, err
}

// ExtractFunFacts implements ContentGenerator.
func (c *ContentClient) ExtractFunFacts(ctx context.Context, content string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return []string{}, ErrEmptyInput
	}
	response, err := c.ask(ctx, "extract_fun_facts", "fun_facts", promptData{Text: content})
	if err != nil {
		return []string{}, err
	}
	facts := parseLines(response, maxFunFacts)
	if len(facts) == 0 {
		err := fmt.Errorf("%w: no fun facts in response", ErrInvalidResponse)
		c.logInvalid(ctx, "extract_fun_facts", err)
		return []string{}, err
	}
	return facts, nil
}

// SuggestSearchTerms implements ContentGenerator.
func (c *ContentClient) SuggestSearchTerms(ctx context.Context, title, content string) (SearchTerms, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		return DefaultSearchTerms(title), ErrEmptyInput
	}
	data := promptData{Title: title, Text: truncateRunes(content, searchTermsContentLimit)}
	response, err := c.ask(ctx, "suggest_search_terms", "search_terms", data)
	if err != nil {
		return DefaultSearchTerms(title), err
	}
	terms, err := parseSearchTerms(response, title)
	c.logInvalid(ctx, "suggest_search_terms", err)
	return terms, err
}

// CategorizeContent implements ContentGenerator.
func (c *ContentClient) CategorizeContent(ctx context.Context, title, content string) (domain.Category, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		return domain.DefaultCategory, ErrEmptyInput
	}
	data := promptData{
		Title:      title,
		Text:       truncateRunes(content, categorizeContentLimit),
		Categories: categoryNames(),
	}
	response, err := c.ask(ctx, "categorize_content", "categorize", data)
	if err != nil {
		return domain.DefaultCategory, err
	}
	category, err := parseCategory(response)
	c.logInvalid(ctx, "categorize_content", err)
	return category, err
}
