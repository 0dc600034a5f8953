package clustering

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/topicforge/internal/llm"
)

// chatServer returns a fixed assistant reply for any chat completion request.
func chatServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newClusterer(t *testing.T, baseURL string) *LLMClusterer {
	t.Helper()
	client, err := llm.NewClient(llm.Config{BaseURL: baseURL, APIKey: "test-key"})
	require.NoError(t, err)
	return NewLLMClusterer(client)
}

func TestCluster_EmptyInputSkipsRequest(t *testing.T) {
	c := newClusterer(t, "http://127.0.0.1:1") // would fail if called
	groups, err := c.Cluster(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestCluster_ParsesFencedReplyAndFiltersUnknownIDs(t *testing.T) {
	reply := "```json\n" + `{"clusters":[
		{"conceptIds":["c1","c2","ghost"],"previewSummaries":["slow service"]},
		{"conceptIds":["invented"],"previewSummaries":["nothing real"]}
	]}` + "\n```"
	srv := chatServer(t, reply)
	defer srv.Close()

	c := newClusterer(t, srv.URL)
	groups, err := c.Cluster(context.Background(), []Item{
		{ID: "c1", Summary: "slow service", Judgment: "negative"},
		{ID: "c2", Summary: "waited forever", Judgment: "negative"},
	})

	require.NoError(t, err)
	require.Len(t, groups, 1, "group with only unknown ids is dropped")
	assert.Equal(t, []string{"c1", "c2"}, groups[0].ConceptIDs)
	assert.Equal(t, []string{"slow service"}, groups[0].PreviewSummaries)
}

func TestCluster_MalformedReplyIsAnError(t *testing.T) {
	srv := chatServer(t, "sorry, I cannot do that")
	defer srv.Close()

	c := newClusterer(t, srv.URL)
	_, err := c.Cluster(context.Background(), []Item{{ID: "c1", Summary: "s"}})

	assert.Error(t, err)
}
