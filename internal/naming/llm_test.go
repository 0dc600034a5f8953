package naming

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/topicforge/internal/llm"
)

func namerFor(t *testing.T, reply string, capture *string) *LLMNamer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			var req struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			*capture = req.Messages[len(req.Messages)-1].Content
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)

	client, err := llm.NewClient(llm.Config{BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return NewLLMNamer(client)
}

func TestName_CleansReplyAndPassesBusinessContext(t *testing.T) {
	var prompt string
	n := namerFor(t, "\"Atención lenta.\"\nSome extra explanation", &prompt)

	label, err := n.Name(context.Background(), []string{"el servicio fue lento"}, BusinessContext{
		BusinessType: "restaurant",
		ActivityName: "La Terraza",
	})

	require.NoError(t, err)
	assert.Equal(t, "Atención lenta", label)
	assert.Contains(t, prompt, "restaurant")
	assert.Contains(t, prompt, "La Terraza")
	assert.Contains(t, prompt, "el servicio fue lento")
}

func TestName_EmptyReplyIsAnError(t *testing.T) {
	n := namerFor(t, "   ", nil)

	_, err := n.Name(context.Background(), []string{"x"}, BusinessContext{})
	assert.Error(t, err)
}

func TestCleanLabel_CapsLengthOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("á", MaxLabelLength+20)
	got := CleanLabel(long)

	assert.Equal(t, MaxLabelLength, len([]rune(got)))
}
