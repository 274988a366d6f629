package youtube_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookofmonth/bookofmonth-api/internal/platform/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *youtube.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := youtube.NewClient(context.Background(), "yt-key", 0, nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client
}

func TestSearchVideo(t *testing.T) {
	t.Parallel()

	var gotReq *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"items":[{"id":{"kind":"youtube#video","videoId":"abc123"}}]}`)
	})

	got, err := client.SearchVideo(context.Background(), "Octopus")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", got)

	require.NotNil(t, gotReq)
	q := gotReq.URL.Query()
	assert.Equal(t, "Octopus for kids educational", q.Get("q"))
	assert.Equal(t, "video", q.Get("type"))
	assert.Equal(t, "1", q.Get("maxResults"))
	assert.Equal(t, "short", q.Get("videoDuration"))
	assert.Equal(t, "strict", q.Get("safeSearch"))
}

func TestSearchVideo_NoItems(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"items":[]}`)
	})

	got, err := client.SearchVideo(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchVideo_APIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"quota exceeded"}}`)
	})

	got, err := client.SearchVideo(context.Background(), "Octopus")
	require.Error(t, err)
	assert.Empty(t, got)
}

func TestSearchVideo_Unconfigured(t *testing.T) {
	t.Parallel()

	client, err := youtube.NewClient(context.Background(), "", 0, nil)
	require.NoError(t, err)

	got, err := client.SearchVideo(context.Background(), "Octopus")
	require.NoError(t, err)
	assert.Empty(t, got)
}
