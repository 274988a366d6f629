// Package youtube implements video search with the YouTube Data API v3.
package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/service"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// querySuffix steers results towards content made for children.
const querySuffix = " for kids educational"

// Client searches YouTube for short, strictly filtered videos.
type Client struct {
	svc     *yt.Service
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ service.VideoSearcher = (*Client)(nil)

// NewClient creates a YouTube client. An empty apiKey yields a client whose
// searches always return "". Extra options are passed to the generated
// service constructor, which lets tests point it at a local server.
func NewClient(
	ctx context.Context,
	apiKey string,
	requestsPerMinute int,
	logger *slog.Logger,
	opts ...option.ClientOption,
) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  logger.With(slog.String("component", "youtube_video_searcher")),
	}
	if requestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	if apiKey == "" {
		return c, nil
	}

	svc, err := yt.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	c.svc = svc
	return c, nil
}

// SearchVideo returns the watch URL of the first matching short video.
func (c *Client) SearchVideo(ctx context.Context, query string) (string, error) {
	if c.svc == nil {
		c.logger.DebugContext(ctx, "youtube API key not configured, skipping video search")
		return "", nil
	}
	if strings.TrimSpace(query) == "" {
		return "", nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("youtube rate limiter: %w", err)
	}

	resp, err := c.svc.Search.List([]string{"id"}).
		Q(query + querySuffix).
		Type("video").
		MaxResults(1).
		VideoDuration("short").
		SafeSearch("strict").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("youtube search failed: %w", err)
	}

	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		return watchURLPrefix + item.Id.VideoId, nil
	}
	return "", nil
}
