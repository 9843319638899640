package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ana merge", req.Text)
		_, _ = w.Write([]byte(`{"spans":[{"start":0,"end":3,"label":"PERSON","text":"Ana"}]}`))
	}))
	defer server.Close()

	result, err := New(server.URL).Predict(context.Background(), "Ana merge")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 0, result[0].Start)
	assert.Equal(t, 3, result[0].End)
	assert.Equal(t, "PERSON", result[0].Label)
}

func TestPredictServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New(server.URL).Predict(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestPredictBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := New(server.URL).Predict(context.Background(), "text")
	assert.Error(t, err)
}

func TestPredictContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(server.URL).Predict(ctx, "text")
	assert.Error(t, err)
}
