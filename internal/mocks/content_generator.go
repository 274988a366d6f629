package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/generation"
)

// Method names recorded by MockContentGenerator.
const (
	MethodVerifyFact                 = "VerifyFact"
	MethodAdaptContentForAge         = "AdaptContentForAge"
	MethodGenerateEducationalContext = "GenerateEducationalContext"
	MethodGenerateQuestions          = "GenerateQuestions"
	MethodFilterContentSafety        = "FilterContentSafety"
	MethodExtractFunFacts            = "ExtractFunFacts"
	MethodSuggestSearchTerms         = "SuggestSearchTerms"
	MethodCategorizeContent          = "CategorizeContent"
)

// MockContentGenerator implements generation.ContentGenerator for testing.
//
// Without overrides it behaves like a cooperative model: every fact is true,
// every text is safe, content is returned unadapted, questions are numbered
// placeholders and the category is domain.DefaultCategory.
type MockContentGenerator struct {
	VerifyFactFn                 func(ctx context.Context, fact string) (bool, error)
	AdaptContentForAgeFn         func(ctx context.Context, content string, ageRange domain.AgeRange) (string, error)
	GenerateEducationalContextFn func(ctx context.Context, topic string) (string, error)
	GenerateQuestionsFn          func(ctx context.Context, content string, n int) ([]string, error)
	FilterContentSafetyFn        func(ctx context.Context, content string) (bool, error)
	ExtractFunFactsFn            func(ctx context.Context, content string) ([]string, error)
	SuggestSearchTermsFn         func(ctx context.Context, title, content string) (generation.SearchTerms, error)
	CategorizeContentFn          func(ctx context.Context, title, content string) (domain.Category, error)

	// mu protects the call tracking state for concurrent test cases
	mu sync.Mutex
	// calls holds method names in call order
	calls []string
	// inputs holds the primary text argument of each call, per method
	inputs map[string][]string
}

var _ generation.ContentGenerator = (*MockContentGenerator)(nil)

func (m *MockContentGenerator) record(method, input string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inputs == nil {
		m.inputs = make(map[string][]string)
	}
	m.calls = append(m.calls, method)
	m.inputs[method] = append(m.inputs[method], input)
}

// CallCount returns how many times method was called.
func (m *MockContentGenerator) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs[method])
}

// TotalCalls returns the number of calls across all methods.
func (m *MockContentGenerator) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the called method names in order.
func (m *MockContentGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Inputs returns the text passed to each call of method, in order.
func (m *MockContentGenerator) Inputs(method string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inputs[method]...)
}

// VerifyFact implements generation.ContentGenerator.
func (m *MockContentGenerator) VerifyFact(ctx context.Context, fact string) (bool, error) {
	m.record(MethodVerifyFact, fact)
	if m.VerifyFactFn != nil {
		return m.VerifyFactFn(ctx, fact)
	}
	return true, nil
}

// AdaptContentForAge implements generation.ContentGenerator.
func (m *MockContentGenerator) AdaptContentForAge(
	ctx context.Context,
	content string,
	ageRange domain.AgeRange,
) (string, error) {
	m.record(MethodAdaptContentForAge, content)
	if m.AdaptContentForAgeFn != nil {
		return m.AdaptContentForAgeFn(ctx, content, ageRange)
	}
	return content, nil
}

// GenerateEducationalContext implements generation.ContentGenerator.
func (m *MockContentGenerator) GenerateEducationalContext(ctx context.Context, topic string) (string, error) {
	m.record(MethodGenerateEducationalContext, topic)
	if m.GenerateEducationalContextFn != nil {
		return m.GenerateEducationalContextFn(ctx, topic)
	}
	return "Learn more about " + topic + ".", nil
}

// GenerateQuestions implements generation.ContentGenerator.
func (m *MockContentGenerator) GenerateQuestions(ctx context.Context, content string, n int) ([]string, error) {
	m.record(MethodGenerateQuestions, content)
	if m.GenerateQuestionsFn != nil {
		return m.GenerateQuestionsFn(ctx, content, n)
	}
	questions := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, fmt.Sprintf("Question %d?", i))
	}
	return questions, nil
}

// FilterContentSafety implements generation.ContentGenerator.
func (m *MockContentGenerator) FilterContentSafety(ctx context.Context, content string) (bool, error) {
	m.record(MethodFilterContentSafety, content)
	if m.FilterContentSafetyFn != nil {
		return m.FilterContentSafetyFn(ctx, content)
	}
	return true, nil
}

// ExtractFunFacts implements generation.ContentGenerator.
func (m *MockContentGenerator) ExtractFunFacts(ctx context.Context, content string) ([]string, error) {
	m.record(MethodExtractFunFacts, content)
	if m.ExtractFunFactsFn != nil {
		return m.ExtractFunFactsFn(ctx, content)
	}
	return []string{}, nil
}

// SuggestSearchTerms implements generation.ContentGenerator.
func (m *MockContentGenerator) SuggestSearchTerms(
	ctx context.Context,
	title, content string,
) (generation.SearchTerms, error) {
	m.record(MethodSuggestSearchTerms, title)
	if m.SuggestSearchTermsFn != nil {
		return m.SuggestSearchTermsFn(ctx, title, content)
	}
	return generation.DefaultSearchTerms(title), nil
}

// CategorizeContent implements generation.ContentGenerator.
func (m *MockContentGenerator) CategorizeContent(ctx context.Context, title, content string) (domain.Category, error) {
	m.record(MethodCategorizeContent, title)
	if m.CategorizeContentFn != nil {
		return m.CategorizeContentFn(ctx, title, content)
	}
	return domain.DefaultCategory, nil
}

// NewFailingContentGenerator returns a generator whose every method fails
// with err and returns its safe default.
func NewFailingContentGenerator(err error) *MockContentGenerator {
	return &MockContentGenerator{
		VerifyFactFn: func(context.Context, string) (bool, error) { return false, err },
		AdaptContentForAgeFn: func(_ context.Context, content string, _ domain.AgeRange) (string, error) {
			return content, err
		},
		GenerateEducationalContextFn: func(context.Context, string) (string, error) { return "", err },
		GenerateQuestionsFn:          func(context.Context, string, int) ([]string, error) { return []string{}, err },
		FilterContentSafetyFn:        func(context.Context, string) (bool, error) { return false, err },
		ExtractFunFactsFn:            func(context.Context, string) ([]string, error) { return []string{}, err },
		SuggestSearchTermsFn: func(_ context.Context, title, _ string) (generation.SearchTerms, error) {
			return generation.DefaultSearchTerms(title), err
		},
		CategorizeContentFn: func(context.Context, string, string) (domain.Category, error) {
			return domain.DefaultCategory, err
		},
	}
}
