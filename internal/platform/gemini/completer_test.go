package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bookofmonth/bookofmonth-api/internal/config"
	"github.com/bookofmonth/bookofmonth-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeModels stands in for *genai.Models, returning queued results in order.
type fakeModels struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
	models    []string
	prompts   []string

	imageResp *genai.GenerateImagesResponse
	imageErr  error
	imageCfg  *genai.GenerateImagesConfig
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	_ *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.models = append(f.models, model)
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}

	var resp *genai.GenerateContentResponse
	var err error
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return resp, err
}

func (f *fakeModels) GenerateImages(
	_ context.Context,
	_ string,
	prompt string,
	cfg *genai.GenerateImagesConfig,
) (*genai.GenerateImagesResponse, error) {
	f.prompts = append(f.prompts, prompt)
	f.imageCfg = cfg
	return f.imageResp, f.imageErr
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Provider:          "gemini",
		GeminiAPIKey:      "test-key",
		ModelName:         "gemini-test",
		ImageModelName:    "imagen-test",
		MaxRetries:        2,
		RetryDelaySeconds: 1,
		TimeoutSeconds:    5,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	cfg := testLLMConfig()
	cfg.GeminiAPIKey = ""
	_, err := NewClient(context.Background(), cfg)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestNewCompleter_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewCompleter(nil, testLogger(), testLLMConfig())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = newCompleter(&fakeModels{}, nil, testLLMConfig())
	assert.Error(t, err)

	cfg := testLLMConfig()
	cfg.ModelName = ""
	_, err = newCompleter(&fakeModels{}, testLogger(), cfg)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestCompleter_Complete(t *testing.T) {
	t.Parallel()

	t.Run("returns candidate text", func(t *testing.T) {
		t.Parallel()

		models := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse("true")}}
		c, err := newCompleter(models, testLogger(), testLLMConfig())
		require.NoError(t, err)

		got, err := c.Complete(context.Background(), "Is water wet?")
		require.NoError(t, err)
		assert.Equal(t, "true", got)
		assert.Equal(t, []string{"gemini-test"}, models.models)
		assert.Equal(t, []string{"Is water wet?"}, models.prompts)
	})

	t.Run("safety block is permanent", func(t *testing.T) {
		t.Parallel()

		blocked := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}
		models := &fakeModels{responses: []*genai.GenerateContentResponse{blocked}}
		c, err := newCompleter(models, testLogger(), testLLMConfig())
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), "prompt")
		assert.ErrorIs(t, err, generation.ErrContentBlocked)
		assert.Equal(t, 1, models.calls, "blocked content should not be retried")
	})

	t.Run("permanent API error is not retried", func(t *testing.T) {
		t.Parallel()

		models := &fakeModels{errs: []error{genai.APIError{Code: 400, Message: "bad request"}}}
		c, err := newCompleter(models, testLogger(), testLLMConfig())
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), "prompt")
		assert.ErrorIs(t, err, generation.ErrGenerationFailed)
		assert.Equal(t, 1, models.calls)
	})

	t.Run("empty prompt", func(t *testing.T) {
		t.Parallel()

		c, err := newCompleter(&fakeModels{}, testLogger(), testLLMConfig())
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), "")
		assert.ErrorIs(t, err, generation.ErrEmptyInput)
	})
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, classifyError(nil))
	assert.ErrorIs(t, classifyError(genai.APIError{Code: 429}), generation.ErrTransientFailure)
	assert.ErrorIs(t, classifyError(genai.APIError{Code: 503}), generation.ErrTransientFailure)
	assert.ErrorIs(t, classifyError(genai.APIError{Code: 403}), generation.ErrGenerationFailed)
	assert.ErrorIs(t, classifyError(errors.New("connection reset")), generation.ErrTransientFailure)
	assert.Equal(t, context.Canceled, classifyError(context.Canceled))
}

func TestResponseText(t *testing.T) {
	t.Parallel()

	_, err := responseText(nil)
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)

	_, err = responseText(&genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	})
	assert.ErrorIs(t, err, generation.ErrContentBlocked)

	got, err := responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "Hello "},
				{Text: "world"},
			}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)
}

func TestImageGenerator(t *testing.T) {
	t.Parallel()

	t.Run("writes PNG to directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "images")
		models := &fakeModels{imageResp: &genai.GenerateImagesResponse{
			GeneratedImages: []*genai.GeneratedImage{{
				Image: &genai.Image{ImageBytes: []byte("png-bytes"), MIMEType: "image/png"},
			}},
		}}
		g, err := newImageGenerator(models, testLogger(), "imagen-test", dir)
		require.NoError(t, err)

		img, err := g.GenerateImage(context.Background(), "A child-friendly, educational illustration of: Octopus", "child-friendly, educational")
		require.NoError(t, err)

		assert.Equal(t, dir, filepath.Dir(img.Path))
		assert.Equal(t, ".png", filepath.Ext(img.Path))
		data, err := os.ReadFile(img.Path)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), data)
		assert.Equal(t, int32(1), models.imageCfg.NumberOfImages)
		assert.Equal(t, "Generate an image in a child-friendly, educational style of: A child-friendly, educational illustration of: Octopus", models.prompts[0])
	})

	t.Run("filtered image is reported as blocked", func(t *testing.T) {
		t.Parallel()

		models := &fakeModels{imageResp: &genai.GenerateImagesResponse{
			GeneratedImages: []*genai.GeneratedImage{{RAIFilteredReason: "filtered"}},
		}}
		g, err := newImageGenerator(models, testLogger(), "imagen-test", t.TempDir())
		require.NoError(t, err)

		_, err = g.GenerateImage(context.Background(), "prompt", "")
		assert.ErrorIs(t, err, generation.ErrContentBlocked)
	})

	t.Run("no images", func(t *testing.T) {
		t.Parallel()

		g, err := newImageGenerator(&fakeModels{imageResp: &genai.GenerateImagesResponse{}}, testLogger(), "imagen-test", t.TempDir())
		require.NoError(t, err)

		_, err = g.GenerateImage(context.Background(), "prompt", "")
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})

	t.Run("constructor validation", func(t *testing.T) {
		t.Parallel()

		_, err := newImageGenerator(&fakeModels{}, testLogger(), "", "dir")
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
		_, err = newImageGenerator(&fakeModels{}, testLogger(), "imagen", "")
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})
}
