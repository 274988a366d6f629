package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bookofmonth/bookofmonth-api/internal/generation"
	"google.golang.org/genai"
)

// classifyError maps a genai client error onto the generation error sentinels.
// Rate limiting and server errors are transient; other API errors are
// permanent. Errors without an HTTP status (network failures) are transient,
// except for context cancellation, which is returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: gemini API error %d: %s", generation.ErrTransientFailure, apiErr.Code, apiErr.Message)
		default:
			return fmt.Errorf("%w: gemini API error %d: %s", generation.ErrGenerationFailed, apiErr.Code, apiErr.Message)
		}
	}

	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}

// blockedFinishReasons are candidate finish reasons that mean the answer was
// withheld by a safety or policy filter.
var blockedFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:            true,
	genai.FinishReasonBlocklist:         true,
	genai.FinishReasonProhibitedContent: true,
}

// responseText extracts the answer text from a GenerateContent response.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if blockedFinishReasons[candidate.FinishReason] {
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text += part.Text
	}
	if text == "" {
		return "", fmt.Errorf("%w: response contained no text", generation.ErrInvalidResponse)
	}
	return text, nil
}
