package rss

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scienceFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Science for Kids</title>
  <link>https://science.example.com</link>
  <item>
    <title>Octopus opens a jar</title>
    <link>https://science.example.com/octopus</link>
    <description><![CDATA[<p>An <b>octopus</b> learned to open a jar.</p>]]></description>
    <pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Old science story</title>
    <link>https://science.example.com/old</link>
    <description>Something from long ago about science.</description>
    <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Football final</title>
    <link>https://science.example.com/football</link>
    <description>A sports result.</description>
    <pubDate>Wed, 01 May 2024 11:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

const spaceFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Space Daily</title>
  <entry>
    <title>Young octopus in space science</title>
    <link href="https://space.example.com/moon"/>
    <updated>2024-05-02T08:00:00Z</updated>
    <summary>Astronomers share new science.</summary>
  </entry>
</feed>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/science.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, scienceFeed)
	})
	mux.HandleFunc("/space.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, spaceFeed)
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchRecentNews(t *testing.T) {
	t.Parallel()

	srv := newFeedServer(t)
	agg, err := NewAggregator([]string{
		srv.URL + "/science.xml",
		srv.URL + "/broken.xml",
		srv.URL + "/space.xml",
	}, srv.Client(), testLogger())
	require.NoError(t, err)

	since := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	articles, err := agg.FetchRecentNews(context.Background(), "octopus science for kids", since, "en")
	require.NoError(t, err)

	require.Len(t, articles, 2)
	assert.Equal(t, "https://space.example.com/moon", articles[0].URL, "newest first")
	assert.Equal(t, "Space Daily", articles[0].SourceName)
	assert.Equal(t, "Octopus opens a jar", articles[1].Title)
	assert.Equal(t, "An octopus learned to open a jar.", articles[1].Content)
	assert.Equal(t, "Science for Kids", articles[1].SourceName)
}

func TestFetchRecentNews_EmptyQueryKeepsEverythingRecent(t *testing.T) {
	t.Parallel()

	srv := newFeedServer(t)
	agg, err := NewAggregator([]string{srv.URL + "/science.xml"}, srv.Client(), testLogger())
	require.NoError(t, err)

	since := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	articles, err := agg.FetchRecentNews(context.Background(), "", since, "en")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Football final", articles[0].Title)
}

func TestFetchRecentNews_AllFeedsFail(t *testing.T) {
	t.Parallel()

	srv := newFeedServer(t)
	agg, err := NewAggregator([]string{srv.URL + "/broken.xml"}, srv.Client(), testLogger())
	require.NoError(t, err)

	articles, err := agg.FetchRecentNews(context.Background(), "news", time.Time{}, "en")
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestNewAggregator_RequiresFeeds(t *testing.T) {
	t.Parallel()

	_, err := NewAggregator(nil, nil, testLogger())
	assert.Error(t, err)
}

func TestCleanHTML(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", cleanHTML("  "))
	assert.Equal(t, "Hello world !", cleanHTML("<div>Hello <i>world</i>\n\n!</div>"))
}

func TestQueryTerms(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"world", "news", "children"}, queryTerms("World news for children"))
	assert.Nil(t, queryTerms("a of"))
}
