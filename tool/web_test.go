package tool_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/internal/mylog"
	"github.com/habiliai/agentloop/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `<html><body>
<div class="result"><a class="result__a" href="https://go.dev">The Go Programming Language</a>
<a class="result__snippet">Go is an open source programming language that makes it simple to build software.</a></div>
<div class="result"><a class="result__a" href="https://x">short</a><a class="result__snippet">too short</a></div>
<div class="result"><a class="result__a" href="https://pkg.go.dev">Go Packages</a>
<a class="result__snippet">Discover packages and modules published by the Go community.</a></div>
</body></html>`

const feedBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>News</title>
<item><title>Go 1.24 released</title><link>https://go.dev/blog/go1.24</link><description>Generic type aliases</description></item>
<item><title>Rust news</title><link>https://example.com/rust</link><description>Borrow checker</description></item>
</channel></rss>`

func newTestRegistry(t *testing.T, conf *config.ToolConfig) *tool.Registry {
	if conf == nil {
		conf = config.NewToolConfig()
	}
	if conf.Workspace == "." {
		conf.Workspace = t.TempDir()
	}
	r := tool.NewRegistry(mylog.Discard(), conf)
	require.NoError(t, r.RegisterBuiltins(nil))
	t.Cleanup(r.Close)
	return r
}

func TestWebSearch(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		query = r.FormValue("q")
		_, _ = w.Write([]byte(searchPage))
	}))
	defer server.Close()

	conf := config.NewToolConfig()
	conf.SearchURL = server.URL
	r := newTestRegistry(t, conf)

	obs := r.Dispatch(t.Context(), "web_search", map[string]any{"q": "golang"})
	require.True(t, obs.OK, obs.Text)
	assert.Equal(t, "golang", query)
	assert.Equal(t,
		"✓ 1. Go is an open source programming language that makes it simple to build software.\n"+
			"2. Discover packages and modules published by the Go community.",
		obs.Text)
}

func TestWebSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	conf := config.NewToolConfig()
	conf.SearchURL = server.URL
	r := newTestRegistry(t, conf)

	obs := r.Dispatch(t.Context(), "web_search", map[string]any{"query": "golang"})
	assert.False(t, obs.OK)
	assert.Contains(t, obs.Text, "503")
}

func TestFetchURLOnlyWithAPIKey(t *testing.T) {
	r := newTestRegistry(t, nil)
	_, ok := r.Lookup("fetch_url")
	assert.False(t, ok)

	conf := config.NewToolConfig()
	conf.FireCrawlAPIKey = "fc-test"
	r = newTestRegistry(t, conf)
	_, ok = r.Lookup("fetch_url")
	assert.True(t, ok)
}

func TestDownloadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	conf := config.NewToolConfig()
	conf.Workspace = t.TempDir()
	r := newTestRegistry(t, conf)

	obs := r.Dispatch(t.Context(), "download_file", map[string]any{"url": server.URL + "/files/data.bin"})
	require.True(t, obs.OK, obs.Text)
	assert.Contains(t, obs.Text, "(7 bytes)")

	data, err := os.ReadFile(conf.Workspace + "/data.bin")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	obs = r.Dispatch(t.Context(), "download_file", map[string]any{"url": server.URL + "/missing", "path": "m.bin"})
	assert.False(t, obs.OK)
	assert.Contains(t, obs.Text, "404")
	assert.NoFileExists(t, conf.Workspace+"/m.bin")

	obs = r.Dispatch(t.Context(), "download_file", map[string]any{"url": "not a url"})
	assert.False(t, obs.OK)
	assert.Contains(t, obs.Text, "Invalid URL")
}

func TestReadFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedBody))
	}))
	defer server.Close()

	r := newTestRegistry(t, nil)

	obs := r.Dispatch(t.Context(), "read_feed", map[string]any{"url": server.URL, "limit": "1"})
	require.True(t, obs.OK, obs.Text)
	assert.Equal(t, "✓ 1. Go 1.24 released\n   https://go.dev/blog/go1.24\n   Generic type aliases", obs.Text)

	obs = r.Dispatch(t.Context(), "search_feeds", map[string]any{"urls": server.URL + ", " + server.URL, "query": "rust"})
	require.True(t, obs.OK, obs.Text)
	assert.Contains(t, obs.Text, "1. Rust news")
	assert.Contains(t, obs.Text, "2. Rust news")
}
