package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingServer returns per-input vectors keyed by input order,
// deliberately shuffling the response index order to verify re-sorting.
func fakeEmbeddingServer(t *testing.T, capture *[][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if capture != nil {
			*capture = append(*capture, req.Input)
		}

		type item struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		for i := range req.Input {
			data[i] = item{Embedding: []float32{float32(i) + 1, 0}, Index: i}
		}
		// Reverse to exercise the index re-sort.
		for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
			data[i], data[j] = data[j], data[i]
		}
		resp := map[string]interface{}{"data": data, "model": req.Model}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: baseURL, APIKey: "test-key", Model: "test-embed", Dimensions: 2})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestEmbedBatch_EmptyInputSkipsAPICall(t *testing.T) {
	var calls [][]string
	srv := fakeEmbeddingServer(t, &calls)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, calls, "no API call expected for empty input")
}

func TestEmbedBatch_AllBlankSkipsAPICall(t *testing.T) {
	var calls [][]string
	srv := fakeEmbeddingServer(t, &calls)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.EmbedBatch(context.Background(), []string{"", "   "})

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Nil(t, out[0])
	assert.Nil(t, out[1])
	assert.Empty(t, calls)
}

func TestEmbedBatch_FiltersBlanksAndRestoresOrder(t *testing.T) {
	var calls [][]string
	srv := fakeEmbeddingServer(t, &calls)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.EmbedBatch(context.Background(), []string{"first", "", "third"})

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []float32{1, 0}, out[0])
	assert.Nil(t, out[1], "blank input keeps a nil vector at its position")
	assert.Equal(t, []float32{2, 0}, out[2])

	require.Len(t, calls, 1)
	assert.Equal(t, []string{"first", "third"}, calls[0], "blanks filtered before the call")
}

func TestEmbedBatch_APIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.EmbedBatch(context.Background(), []string{"text"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
}
