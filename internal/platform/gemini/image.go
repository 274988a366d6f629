package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bookofmonth/bookofmonth-api/internal/config"
	"github.com/bookofmonth/bookofmonth-api/internal/generation"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// imageModel is the subset of *genai.Models used by ImageGenerator.
type imageModel interface {
	GenerateImages(
		ctx context.Context,
		model string,
		prompt string,
		config *genai.GenerateImagesConfig,
	) (*genai.GenerateImagesResponse, error)
}

// ImageGenerator implements generation.ImageGenerator using Imagen through
// the Gemini API. Images are written as PNG files under dir.
type ImageGenerator struct {
	logger *slog.Logger
	models imageModel
	model  string
	dir    string
}

var _ generation.ImageGenerator = (*ImageGenerator)(nil)

// NewImageGenerator creates an ImageGenerator that stores images in dir.
func NewImageGenerator(
	client *genai.Client,
	logger *slog.Logger,
	cfg config.LLMConfig,
	dir string,
) (*ImageGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: gemini client cannot be nil", generation.ErrInvalidConfig)
	}
	return newImageGenerator(client.Models, logger, cfg.ImageModelName, dir)
}

func newImageGenerator(models imageModel, logger *slog.Logger, model, dir string) (*ImageGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if model == "" {
		return nil, fmt.Errorf("%w: image model name cannot be empty", generation.ErrInvalidConfig)
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: image directory cannot be empty", generation.ErrInvalidConfig)
	}
	return &ImageGenerator{
		logger: logger.With(slog.String("component", "gemini_image_generator")),
		models: models,
		model:  model,
		dir:    dir,
	}, nil
}

// GenerateImage renders one landscape illustration and saves it as <uuid>.png.
func (g *ImageGenerator) GenerateImage(ctx context.Context, prompt, style string) (generation.GeneratedImage, error) {
	if prompt == "" {
		return generation.GeneratedImage{}, generation.ErrEmptyInput
	}

	fullPrompt := prompt
	if style != "" {
		fullPrompt = fmt.Sprintf("Generate an image in a %s style of: %s", style, prompt)
	}

	resp, err := g.models.GenerateImages(ctx, g.model, fullPrompt, &genai.GenerateImagesConfig{
		NumberOfImages:    1,
		AspectRatio:       "4:3",
		OutputMIMEType:    "image/png",
		SafetyFilterLevel: genai.SafetyFilterLevelBlockLowAndAbove,
		PersonGeneration:  genai.PersonGenerationDontAllow,
	})
	if err != nil {
		return generation.GeneratedImage{}, classifyError(err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0] == nil {
		return generation.GeneratedImage{}, fmt.Errorf("%w: no image generated", generation.ErrInvalidResponse)
	}

	generated := resp.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated.RAIFilteredReason != "" {
			return generation.GeneratedImage{}, fmt.Errorf("%w: %s", generation.ErrContentBlocked, generated.RAIFilteredReason)
		}
		return generation.GeneratedImage{}, fmt.Errorf("%w: empty image", generation.ErrInvalidResponse)
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return generation.GeneratedImage{}, fmt.Errorf("failed to create image directory: %w", err)
	}
	path := filepath.Join(g.dir, uuid.New().String()+".png")
	if err := os.WriteFile(path, generated.Image.ImageBytes, 0o644); err != nil {
		return generation.GeneratedImage{}, fmt.Errorf("failed to write image: %w", err)
	}

	g.logger.InfoContext(ctx, "illustration generated",
		slog.String("path", path),
		slog.Int("bytes", len(generated.Image.ImageBytes)))

	return generation.GeneratedImage{Path: path, Prompt: prompt, Style: style}, nil
}
