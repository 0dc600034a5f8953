package naming

import (
	"context"
	"fmt"
	"strings"

	"github.com/reviewlens/topicforge/internal/llm"
)

// MaxLabelLength caps generated labels; longer replies are truncated.
const MaxLabelLength = 80

const nameSystemPrompt = `You name topics for customer review analytics.
Given example opinion summaries that belong to one topic, reply with a short,
specific topic label in the same language as the summaries (2-5 words,
no quotes, no trailing punctuation, no explanations).`

// LLMNamer implements Namer via an OpenAI-compatible chat model.
type LLMNamer struct {
	client *llm.Client
}

// Compile-time check that LLMNamer implements Namer.
var _ Namer = (*LLMNamer)(nil)

// NewLLMNamer creates a chat-model-backed namer.
func NewLLMNamer(client *llm.Client) *LLMNamer {
	return &LLMNamer{client: client}
}

// Name asks the model for a label over the preview summaries.
func (n *LLMNamer) Name(ctx context.Context, previewSummaries []string, biz BusinessContext) (string, error) {
	var b strings.Builder
	if biz.BusinessType != "" {
		fmt.Fprintf(&b, "Business type: %s\n", biz.BusinessType)
	}
	if biz.ActivityName != "" {
		fmt.Fprintf(&b, "Business name: %s\n", biz.ActivityName)
	}
	b.WriteString("Example opinions:\n")
	for _, s := range previewSummaries {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	reply, err := n.client.Complete(ctx, nameSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("naming request: %w", err)
	}

	label := CleanLabel(reply)
	if label == "" {
		return "", fmt.Errorf("naming request returned an empty label")
	}
	return label, nil
}

// CleanLabel normalizes a model reply into a usable label: first line only,
// surrounding quotes and trailing punctuation stripped, length capped.
func CleanLabel(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.Trim(s, `"'`)
	s = strings.TrimRight(s, ".,;:")
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > MaxLabelLength {
		s = strings.TrimSpace(string(runes[:MaxLabelLength]))
	}
	return s
}
