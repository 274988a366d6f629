package newsapi_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/config"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/newsapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "status": "ok",
  "totalResults": 3,
  "articles": [
    {
      "source": {"id": null, "name": "Ocean News"},
      "title": "Octopus Opens Jar ",
      "url": "https://example.com/octopus",
      "publishedAt": "2024-05-01T10:00:00Z",
      "content": "An octopus opened a jar in record time… [+1532 chars]"
    },
    {
      "source": {"id": null, "name": "Empty"},
      "title": "No content",
      "url": "https://example.com/empty",
      "publishedAt": "2024-05-01T09:00:00Z",
      "content": null
    },
    {
      "source": {"id": null, "name": "Space Daily"},
      "title": "New Moon Found",
      "url": "https://example.com/moon",
      "publishedAt": "2024-04-30T08:00:00Z",
      "content": "Astronomers found a small moon."
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *newsapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := newsapi.NewClient(config.NewsConfig{
		NewsAPIKey: "test-key",
		BaseURL:    srv.URL,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), newsapi.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Parallel()

	_, err := newsapi.NewClient(config.NewsConfig{BaseURL: "https://newsapi.org"}, slog.Default())
	assert.ErrorIs(t, err, newsapi.ErrMissingAPIKey)
}

func TestFetchRecentNews(t *testing.T) {
	t.Parallel()

	since := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	var gotReq *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, sampleResponse)
	})

	articles, err := client.FetchRecentNews(context.Background(), "kids science", since, "en")
	require.NoError(t, err)

	require.NotNil(t, gotReq)
	assert.Equal(t, "/v2/everything", gotReq.URL.Path)
	assert.Equal(t, "kids science", gotReq.URL.Query().Get("q"))
	assert.Equal(t, "2024-04-30T00:00:00Z", gotReq.URL.Query().Get("from"))
	assert.Equal(t, "en", gotReq.URL.Query().Get("language"))
	assert.Equal(t, "publishedAt", gotReq.URL.Query().Get("sortBy"))
	assert.Equal(t, "test-key", gotReq.Header.Get("X-Api-Key"))
	assert.Empty(t, gotReq.URL.Query().Get("apiKey"), "key must not be sent in the URL")

	require.Len(t, articles, 2, "articles without content are dropped")
	assert.Equal(t, "Octopus Opens Jar", articles[0].Title)
	assert.Equal(t, "An octopus opened a jar in record time", articles[0].Content)
	assert.Equal(t, "Ocean News", articles[0].SourceName)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), articles[0].PublishedAt.UTC())
	assert.Equal(t, "https://example.com/moon", articles[1].URL)
}

func TestFetchRecentNews_NoResults(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ok","totalResults":0,"articles":[]}`)
	})

	articles, err := client.FetchRecentNews(context.Background(), "nothing", time.Now(), "en")
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func TestFetchRecentNews_APIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`)
	})

	_, err := client.FetchRecentNews(context.Background(), "q", time.Now(), "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apiKeyInvalid")
}

func TestFetchRecentNews_NonJSONError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.FetchRecentNews(context.Background(), "q", time.Now(), "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
