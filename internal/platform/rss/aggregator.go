// Package rss implements the news aggregator port over a fixed list of
// RSS, Atom or JSON feeds.
package rss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/redact"
	"github.com/bookofmonth/bookofmonth-api/internal/service"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

// maxParallelFeeds bounds how many feeds are downloaded at once.
const maxParallelFeeds = 4

// minTermLength drops short words such as "for" or "the" from the query.
const minTermLength = 4

// Aggregator reads articles from configured feeds.
type Aggregator struct {
	feeds  []string
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ service.NewsAggregator = (*Aggregator)(nil)

// NewAggregator creates an Aggregator for feedURLs. httpClient may be nil.
func NewAggregator(feedURLs []string, httpClient *http.Client, logger *slog.Logger) (*Aggregator, error) {
	if len(feedURLs) == 0 {
		return nil, errors.New("at least one feed URL is required")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	parser := gofeed.NewParser()
	parser.UserAgent = "bookofmonth/1.0"
	if httpClient != nil {
		parser.Client = httpClient
	} else {
		parser.Client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Aggregator{
		feeds:  append([]string(nil), feedURLs...),
		parser: parser,
		logger: logger.With(slog.String("component", "rss_aggregator")),
	}, nil
}

// FetchRecentNews downloads every feed and returns the items published at or
// after since whose title or text mentions one of the query terms, newest
// first. Feeds that fail to download or parse are logged and skipped. The
// language argument is ignored; feeds are assumed to be in the wanted language.
func (a *Aggregator) FetchRecentNews(
	ctx context.Context,
	query string,
	since time.Time,
	_ string,
) ([]domain.RawNewsArticle, error) {
	perFeed := make([][]domain.RawNewsArticle, len(a.feeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFeeds)
	for i, feedURL := range a.feeds {
		g.Go(func() error {
			articles, err := a.fetchFeed(gctx, feedURL)
			if err != nil {
				a.logger.WarnContext(ctx, "skipping feed",
					slog.String("feed", feedURL),
					slog.String("error", redact.Error(err)))
				return nil
			}
			perFeed[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := queryTerms(query)
	articles := make([]domain.RawNewsArticle, 0)
	for _, feedArticles := range perFeed {
		for _, article := range feedArticles {
			if article.PublishedAt.Before(since) {
				continue
			}
			if !matchesAny(article.Title+" "+article.Content, terms) {
				continue
			}
			articles = append(articles, article)
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	a.logger.InfoContext(ctx, "fetched feed articles",
		slog.Int("feeds", len(a.feeds)),
		slog.Int("kept", len(articles)))

	return articles, nil
}

func (a *Aggregator) fetchFeed(ctx context.Context, feedURL string) ([]domain.RawNewsArticle, error) {
	feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	articles := make([]domain.RawNewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published == nil {
			continue
		}

		content := cleanHTML(item.Content)
		if content == "" {
			content = cleanHTML(item.Description)
		}
		if content == "" {
			continue
		}

		articles = append(articles, domain.RawNewsArticle{
			Title:       strings.TrimSpace(item.Title),
			Content:     content,
			URL:         item.Link,
			PublishedAt: published.UTC(),
			SourceName:  feed.Title,
		})
	}
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func queryTerms(query string) []string {
	var terms []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		if len(field) >= minTermLength {
			terms = append(terms, field)
		}
	}
	return terms
}

// matchesAny reports whether text contains any term. No terms matches everything.
func matchesAny(text string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
