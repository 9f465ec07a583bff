package ioembed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lexgraph/lexdb/pkg/config"
	"github.com/lexgraph/lexdb/pkg/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return New(&config.EmbeddingConfig{
		URL:        url,
		Model:      "paraphrase-multilingual-MiniLM-L12-v2",
		TimeoutSec: 5,
	})
}

func TestClientEmbed(t *testing.T) {
	var gotReq embedRequest
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			resp := embedResponse{
				Embeddings: [][]float32{{1, 0, 0}, {0, 1, 0}},
			}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	vectors, err := c.Embed(t.Context(), []string{"haus", "wasser"})
	require.NoError(t, err)

	assert.Equal(t, "paraphrase-multilingual-MiniLM-L12-v2", gotReq.Model)
	assert.Equal(t, []string{"haus", "wasser"}, gotReq.Input)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 0, 0}, vectors[0])
}

func TestClientOOMStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInsufficientStorage)
		}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Embed(t.Context(), []string{"haus"})
	require.Error(t, err)
	assert.ErrorIs(t, err, embed.ErrOOM)
}

func TestClientOOMBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("CUDA out of memory"))
		}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Embed(t.Context(), []string{"haus"})
	require.Error(t, err)
	assert.ErrorIs(t, err, embed.ErrOOM)
}

func TestClientOOMErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			resp := embedResponse{Error: "worker ran out of memory"}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Embed(t.Context(), []string{"haus"})
	require.Error(t, err)
	assert.ErrorIs(t, err, embed.ErrOOM)
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Embed(t.Context(), []string{"haus"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, embed.ErrOOM)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestClientUnreachable(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	_, err := c.Embed(t.Context(), []string{"haus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}
