// Package newsapi implements the news aggregator port on top of the
// NewsAPI.org "everything" endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/config"
	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/redact"
	"github.com/bookofmonth/bookofmonth-api/internal/service"
)

// ErrMissingAPIKey is returned by NewClient when no API key is configured.
var ErrMissingAPIKey = errors.New("news API key not provided")

const everythingPath = "/v2/everything"

// truncationMarker matches the "… [+1234 chars]" suffix NewsAPI appends to content.
var truncationMarker = regexp.MustCompile(`\s*(…|\.\.\.)?\s*\[\+\d+ chars\]\s*$`)

// Client fetches articles from NewsAPI.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

var _ service.NewsAggregator = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a NewsAPI client from cfg.
func NewClient(cfg config.NewsConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg.NewsAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.NewsAPIKey,
		logger:     logger.With(slog.String("component", "newsapi_aggregator")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type everythingResponse struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []article `json:"articles"`
}

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

// FetchRecentNews queries /v2/everything sorted by publication date.
func (c *Client) FetchRecentNews(
	ctx context.Context,
	query string,
	since time.Time,
	language string,
) ([]domain.RawNewsArticle, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("from", since.UTC().Format(time.RFC3339))
	params.Set("sortBy", "publishedAt")
	if language != "" {
		params.Set("language", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+everythingPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build news request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "news request failed", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("news request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read news response: %w", err)
	}

	var payload everythingResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("news API returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || payload.Status == "error" {
		return nil, fmt.Errorf("news API returned status %d: %s: %s", resp.StatusCode, payload.Code, payload.Message)
	}

	articles := make([]domain.RawNewsArticle, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		content := strings.TrimSpace(truncationMarker.ReplaceAllString(a.Content, ""))
		if content == "" || a.URL == "" {
			continue
		}
		articles = append(articles, domain.RawNewsArticle{
			Title:       strings.TrimSpace(a.Title),
			Content:     content,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			SourceName:  a.Source.Name,
		})
	}

	c.logger.InfoContext(ctx, "fetched news articles",
		slog.String("query", query),
		slog.Int("received", len(payload.Articles)),
		slog.Int("kept", len(articles)))

	return articles, nil
}
