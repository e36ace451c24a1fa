package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens-cli/internal/core/domain"
)

type fakeData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

func newFakeAPI(t *testing.T, dim int, shuffle bool) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		data := make([]fakeData, len(req.Input))
		for i, text := range req.Input {
			vec := make([]float64, dim)
			for d := range vec {
				vec[d] = float64(len(text)) + float64(d)*0.5
			}
			data[i] = fakeData{Embedding: vec, Index: i}
		}
		if shuffle && len(data) > 1 {
			data[0], data[1] = data[1], data[0]
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": data}))
	}))
}

func TestEmbedBatch(t *testing.T) {
	srv := newFakeAPI(t, 6, false)
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: srv.URL, Dimensions: 6})
	require.NoError(t, err)
	defer svc.Close()

	got, err := svc.EmbedBatch(context.Background(), []string{"one", "three"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0], 6)
	// Length-derived fake: "one" (3) and "three" (5) differ in the first
	// component.
	assert.Equal(t, float32(3), got[0][0])
	assert.Equal(t, float32(5), got[1][0])
}

func TestEmbedBatchReordersByIndex(t *testing.T) {
	srv := newFakeAPI(t, 2, true)
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: srv.URL, Dimensions: 2})
	require.NoError(t, err)

	got, err := svc.EmbedBatch(context.Background(), []string{"a", "abc"})
	require.NoError(t, err)
	assert.Equal(t, float32(1), got[0][0])
	assert.Equal(t, float32(3), got[1][0])
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "test-key"})
	require.NoError(t, err)

	got, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAPIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "bad key", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestConnectionFailure(t *testing.T) {
	srv := newFakeAPI(t, 2, false)
	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: srv.URL, Dimensions: 2})
	require.NoError(t, err)
	srv.Close()

	_, err = svc.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestRequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestModelDimensionDefaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())
	assert.Equal(t, "text-embedding-3-large", svc.ModelName())
}
