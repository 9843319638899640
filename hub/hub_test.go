package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAndCacheHit(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[{"tokens":["a"],"ner_tags":["O"],"space_after":[false]}]`))
	}))
	defer server.Close()

	f := &Fetcher{CacheDir: t.TempDir()}
	path, err := f.Fetch(context.Background(), server.URL+"/eval.json")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ner_tags")
	assert.Equal(t, int32(1), hits.Load())

	// Second fetch is served from cache.
	again, err := f.Fetch(context.Background(), server.URL+"/eval.json")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchDistinctURLsDistinctPaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	f := &Fetcher{CacheDir: t.TempDir()}
	a, err := f.Fetch(context.Background(), server.URL+"/v1/eval.json")
	require.NoError(t, err)
	b, err := f.Fetch(context.Background(), server.URL+"/v2/eval.json")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	f := &Fetcher{CacheDir: t.TempDir()}
	_, err := f.Fetch(context.Background(), server.URL+"/missing.json")
	assert.Error(t, err)
}

func TestFetchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &Fetcher{CacheDir: t.TempDir()}
	_, err := f.Fetch(ctx, "http://127.0.0.1:0/eval.json")
	assert.Error(t, err)
}
