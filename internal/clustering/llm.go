package clustering

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/reviewlens/topicforge/internal/llm"
)

const clusterSystemPrompt = `You group customer review opinions into semantic clusters.
Each input item is one atomic opinion with an id, a short summary, and sentiment metadata.
Group items that express the same underlying theme, even when worded differently.
Respond ONLY with JSON of the form:
{"clusters": [{"conceptIds": ["id1", "id2"], "previewSummaries": ["example summary", "..."]}]}
Rules:
- Every conceptId must come from the input; never invent ids.
- An item belongs to at most one cluster.
- previewSummaries holds up to 5 representative summaries copied verbatim from the cluster's items.
- Singleton clusters are allowed.`

// LLMClusterer implements Clusterer via an OpenAI-compatible chat model.
type LLMClusterer struct {
	client *llm.Client
}

// Compile-time check that LLMClusterer implements Clusterer.
var _ Clusterer = (*LLMClusterer)(nil)

// NewLLMClusterer creates a chat-model-backed clusterer.
func NewLLMClusterer(client *llm.Client) *LLMClusterer {
	return &LLMClusterer{client: client}
}

type clusterReply struct {
	Clusters []Group `json:"clusters"`
}

// Cluster sends all items in one request and parses the JSON reply.
// Groups referencing only unknown ids are dropped; unknown ids inside an
// otherwise valid group are filtered out.
func (c *LLMClusterer) Cluster(ctx context.Context, items []Item) ([]Group, error) {
	if len(items) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal cluster items: %w", err)
	}

	reply, err := c.client.Complete(ctx, clusterSystemPrompt, string(payload))
	if err != nil {
		return nil, fmt.Errorf("clustering request: %w", err)
	}

	var parsed clusterReply
	if err := json.Unmarshal([]byte(llm.StripFences(reply)), &parsed); err != nil {
		return nil, fmt.Errorf("parse clustering reply: %w", err)
	}

	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.ID] = true
	}

	groups := make([]Group, 0, len(parsed.Clusters))
	dropped := 0
	for _, g := range parsed.Clusters {
		ids := make([]string, 0, len(g.ConceptIDs))
		for _, id := range g.ConceptIDs {
			id = strings.TrimSpace(id)
			if known[id] {
				ids = append(ids, id)
			} else {
				dropped++
			}
		}
		if len(ids) == 0 {
			continue
		}
		groups = append(groups, Group{ConceptIDs: ids, PreviewSummaries: g.PreviewSummaries})
	}

	if dropped > 0 {
		log.Warn().Int("droppedIds", dropped).Msg("Clusterer returned unknown concept ids")
	}

	return groups, nil
}
