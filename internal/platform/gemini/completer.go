package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/config"
	"github.com/bookofmonth/bookofmonth-api/internal/generation"
	"google.golang.org/genai"
)

// contentModel is the subset of *genai.Models used by Completer.
type contentModel interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Completer implements generation.Completer using Google's Gemini API.
type Completer struct {
	// logger is used for structured logging
	logger *slog.Logger

	// models executes GenerateContent requests
	models contentModel

	// model is the name of the Gemini model to use
	model string

	temperature float32
	timeout     time.Duration
	retry       generation.RetryPolicy
}

var _ generation.Completer = (*Completer)(nil)

// NewClient creates the genai client shared by the Gemini adapters.
// Returns generation.ErrInvalidConfig if the API key is missing.
func NewClient(ctx context.Context, cfg config.LLMConfig) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}
	return client, nil
}

// NewCompleter creates a Gemini-backed Completer.
//
// Parameters:
//   - client: A genai client, usually from NewClient
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing model name, retry and timeout settings
//
// Returns:
//   - A properly initialized Completer or an error if the configuration is invalid
func NewCompleter(client *genai.Client, logger *slog.Logger, cfg config.LLMConfig) (*Completer, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: gemini client cannot be nil", generation.ErrInvalidConfig)
	}
	return newCompleter(client.Models, logger, cfg)
}

func newCompleter(models contentModel, logger *slog.Logger, cfg config.LLMConfig) (*Completer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Completer{
		logger:      logger.With(slog.String("component", "gemini_completer")),
		models:      models,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		timeout:     timeout,
		retry: generation.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		},
	}, nil
}

// Complete sends prompt to Gemini and returns the text of the first candidate,
// retrying transient failures.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", generation.ErrEmptyInput
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}

	return c.retry.Do(ctx, c.logger, "gemini", func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.models.GenerateContent(callCtx, c.model, genai.Text(prompt), genConfig)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return "", fmt.Errorf("%w: request timed out after %s", generation.ErrTransientFailure, c.timeout)
			}
			return "", classifyError(err)
		}
		return responseText(resp)
	})
}
