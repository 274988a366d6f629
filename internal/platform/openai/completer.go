package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/config"
	"github.com/bookofmonth/bookofmonth-api/internal/generation"
	openai "github.com/sashabaranov/go-openai"
)

// chatModel is the subset of *openai.Client used by Completer.
type chatModel interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Completer implements generation.Completer over the chat completions API.
type Completer struct {
	logger      *slog.Logger
	client      chatModel
	model       string
	temperature float32
	timeout     time.Duration
	retry       generation.RetryPolicy
}

var _ generation.Completer = (*Completer)(nil)

// NewCompleter creates an OpenAI-backed Completer from cfg.
func NewCompleter(logger *slog.Logger, cfg config.LLMConfig) (*Completer, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	return newCompleter(openai.NewClient(cfg.OpenAIAPIKey), logger, cfg)
}

func newCompleter(client chatModel, logger *slog.Logger, cfg config.LLMConfig) (*Completer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OpenAIModelName == "" {
		return nil, fmt.Errorf("%w: openai model name cannot be empty", generation.ErrInvalidConfig)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Completer{
		logger:      logger.With(slog.String("component", "openai_completer")),
		client:      client,
		model:       cfg.OpenAIModelName,
		temperature: cfg.Temperature,
		timeout:     timeout,
		retry: generation.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		},
	}, nil
}

// Complete sends prompt as a single user message and returns the first choice.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", generation.ErrEmptyInput
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	return c.retry.Do(ctx, c.logger, "openai", func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, req)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return "", fmt.Errorf("%w: request timed out after %s", generation.ErrTransientFailure, c.timeout)
			}
			return "", classifyError(err)
		}
		return choiceText(resp)
	})
}

func choiceText(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", generation.ErrInvalidResponse)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, choice.FinishReason)
	}
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: response contained no text", generation.ErrInvalidResponse)
	}
	return text, nil
}

// classifyError maps go-openai errors onto the generation sentinels.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: openai API error %d: %v", generation.ErrTransientFailure, status, err)
	}
	return fmt.Errorf("%w: openai API error %d: %v", generation.ErrGenerationFailed, status, err)
}
