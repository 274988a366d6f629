package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
)

var (
	codeFenceRegex  = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	listMarkerRegex = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)`)
	wordRegex       = regexp.MustCompile(`[a-z]+`)
)

const boolTrimChars = " \t\r\n\"'`.*!"

// stripCodeFence removes a surrounding Markdown code fence, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRegex.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// parseBool interprets a yes/no style model answer. The answer is conclusive
// when it is exactly "true" or "false", or when it starts with one of them and
// never mentions the other. Hedged answers are inconclusive.
func parseBool(response string) (bool, error) {
	answer := strings.ToLower(stripCodeFence(response))
	answer = strings.Trim(answer, boolTrimChars)
	if answer == "" {
		return false, fmt.Errorf("%w: empty answer", ErrInvalidResponse)
	}

	words := strings.Fields(answer)
	first := strings.Trim(words[0], boolTrimChars+",;:")
	rest := strings.Join(words[1:], " ")
	switch {
	case first == "true" && !mentionsWord(rest, "false"):
		return true, nil
	case first == "false" && !mentionsWord(rest, "true"):
		return false, nil
	default:
		return false, fmt.Errorf("%w: inconclusive answer %q", ErrInvalidResponse, truncateRunes(answer, 40))
	}
}

// mentionsWord reports whether text contains word as a whole word.
func mentionsWord(text, word string) bool {
	for _, w := range wordRegex.FindAllString(text, -1) {
		if w == word {
			return true
		}
	}
	return false
}

// parseLines splits a response into trimmed non-empty lines, dropping list
// markers such as "- ", "* " and "1. ". At most limit lines are kept when
// limit is positive.
func parseLines(response string, limit int) []string {
	text := stripCodeFence(response)
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(listMarkerRegex.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if limit > 0 && len(lines) == limit {
			break
		}
	}
	return lines
}

// parseSearchTerms decodes the JSON search term object. Missing fields are
// filled from DefaultSearchTerms(title); an undecodable answer yields the
// defaults and ErrInvalidResponse.
func parseSearchTerms(response, title string) (SearchTerms, error) {
	defaults := DefaultSearchTerms(title)

	text := stripCodeFence(response)
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	var terms SearchTerms
	if err := json.Unmarshal([]byte(text), &terms); err != nil {
		return defaults, fmt.Errorf("%w: search terms are not valid JSON: %v", ErrInvalidResponse, err)
	}

	terms.YouTubeQuery = strings.TrimSpace(terms.YouTubeQuery)
	terms.ImageQuery = strings.TrimSpace(terms.ImageQuery)
	if terms.YouTubeQuery == "" {
		terms.YouTubeQuery = defaults.YouTubeQuery
	}
	if terms.ImageQuery == "" {
		terms.ImageQuery = defaults.ImageQuery
	}
	return terms, nil
}

// parseCategory maps a category answer onto a supported category, falling
// back to domain.DefaultCategory.
func parseCategory(response string) (domain.Category, error) {
	text := stripCodeFence(response)
	if lines := parseLines(text, 1); len(lines) > 0 {
		text = lines[0]
	}
	if c, ok := domain.ParseCategory(text); ok {
		return c, nil
	}
	return domain.DefaultCategory, fmt.Errorf("%w: unknown category %q", ErrInvalidResponse, truncateRunes(text, 40))
}
