package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(DefaultConfig().Validate())
	assert.NoError(Config{Provider: ProviderHash}.Validate())
	assert.Error(Config{Provider: ProviderOllama}.Validate())
	assert.ErrorIs(Config{Provider: "faiss"}.Validate(), ErrUnsupportedProvider)

	_, err := New(Config{Provider: "faiss"})
	assert.ErrorIs(err, ErrUnsupportedProvider)
}

func TestHashEmbedder(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	embedder := NewHashEmbedder(64)

	a, err := embedder.Embed(ctx, "Wheat requires loamy soil")
	require.NoError(t, err)

	b, err := embedder.Embed(ctx, "wheat REQUIRES loamy soil!")
	require.NoError(t, err)

	assert.Len(a, 64)
	assert.Equal(a, b, "case and punctuation should not matter")

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}

	assert.InDelta(1.0, math.Sqrt(norm), 1e-5)

	empty, err := embedder.Embed(ctx, "...")
	require.NoError(t, err)
	for _, v := range empty {
		assert.False(math.IsNaN(float64(v)))
	}
}

func TestHashEmbedderDefaultDimension(t *testing.T) {
	assert := assert.New(t)

	embedder, err := New(Config{Provider: ProviderHash})
	require.NoError(t, err)

	vector, err := embedder.Embed(context.Background(), "rice paddies")
	require.NoError(t, err)

	assert.Len(vector, DefaultHashDimension)
}

func TestOllamaEmbedder(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}

		var req struct {
			Model string `json:"model"`
			Input string `json:"input"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		assert.Equal("all-minilm", req.Model)
		assert.Equal("loamy soil", req.Input)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":      req.Model,
			"embeddings": [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	embedder, err := NewOllamaEmbedder(srv.URL, "all-minilm")
	require.NoError(t, err)

	vector, err := embedder.Embed(context.Background(), "loamy soil")
	require.NoError(t, err)

	assert.Equal([]float32{0.1, 0.2, 0.3}, vector)
}

func TestOllamaEmbedderEmptyResponse(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":      "all-minilm",
			"embeddings": [][]float32{},
		})
	}))
	defer srv.Close()

	embedder, err := NewOllamaEmbedder(srv.URL, "all-minilm")
	require.NoError(t, err)

	_, err = embedder.Embed(context.Background(), "loamy soil")
	assert.ErrorIs(err, ErrEmptyEmbedding)
}

func TestOllamaEmbedderUnavailable(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"all-minilm\" not found"}`))
	}))
	defer srv.Close()

	embedder, err := NewOllamaEmbedder(srv.URL, "all-minilm")
	require.NoError(t, err)

	_, err = embedder.Embed(context.Background(), "loamy soil")
	assert.Error(err)
}
