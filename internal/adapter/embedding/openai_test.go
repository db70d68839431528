package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/domain"
)

const testKeyEnv = "CELLAR_TEST_EMBEDDING_KEY"

func newTestEmbedder(t *testing.T, url string, opts ...Option) *OpenAIEmbedder {
	t.Helper()
	t.Setenv(testKeyEnv, "secret")
	e, err := NewOpenAICompatibleEmbedder(testKeyEnv, "text-embedding-3-small", url, opts...)
	require.NoError(t, err)
	return e
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)

		// Answer out of order; the client must restore input order.
		resp := embeddingResponse{}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingData{
				Index:     i,
				Embedding: []float32{float32(len(req.Input[i])), 1},
			})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	e := newTestEmbedder(t, server.URL, WithBatchSize(2))
	out, err := e.Embed(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, []float32{1, 1}, out[0])
	assert.Equal(t, []float32{2, 1}, out[1])
	assert.Equal(t, []float32{3, 1}, out[2])
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIEmbedder_EmptyInput(t *testing.T) {
	e := newTestEmbedder(t, "http://127.0.0.1:1")
	out, err := e.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestOpenAIEmbedder_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer server.Close()

	_, err := newTestEmbedder(t, server.URL).Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.NotErrorIs(t, err, domain.ErrProviderUnavailable)

	var rl *domain.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
}

func TestOpenAIEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestEmbedder(t, server.URL).Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestOpenAIEmbedder_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad model"))
	}))
	defer server.Close()

	_, err := newTestEmbedder(t, server.URL).Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.False(t, domain.IsProviderError(err))
	assert.Contains(t, err.Error(), "bad model")
}

func TestOpenAIEmbedder_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestEmbedder(t, url).Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestOpenAIEmbedder_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEmbedder(t, server.URL).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, domain.IsProviderError(err))
}

func TestOpenAIEmbedder_MissingEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1]}]}`))
	}))
	defer server.Close()

	_, err := newTestEmbedder(t, server.URL).Embed(context.Background(), []string{"x", "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing embedding for input 1")
}

func TestNewOpenAICompatibleEmbedder_MissingKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	_, err := NewOpenAICompatibleEmbedder(testKeyEnv, "m", "http://localhost")
	assert.Error(t, err)
}

func TestNewOllamaEmbedder_Defaults(t *testing.T) {
	e, err := NewOllamaEmbedder("mxbai-embed-large", "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", e.baseURL)
	assert.Equal(t, 1024, e.Dimension())

	e, err = NewOllamaEmbedder("nomic-embed-text", "", WithDimension(512))
	require.NoError(t, err)
	assert.Equal(t, 512, e.Dimension())
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("soon"))

	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	d := parseRetryAfter(future)
	assert.Greater(t, d, 30*time.Second)
}
