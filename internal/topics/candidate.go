// Package topics implements the topic deduplication and assignment engine:
// intra-batch lexical consolidation, soft capacity planning, embedding-based
// historical merging, and assignment persistence.
package topics

import (
	"strings"

	"github.com/reviewlens/topicforge/pkg/similarity"
)

const (
	// MaxSignatureLength bounds the embedding payload for one candidate.
	MaxSignatureLength = 900

	// MaxSignatureSummaries caps how many example summaries go into a
	// candidate's signature.
	MaxSignatureSummaries = 5
)

// Candidate is an ephemeral in-run topic candidate. ConceptIDs is a set
// (duplicates collapse on merge); Signature exists only to request an
// embedding and is never persisted.
type Candidate struct {
	Name       string
	ConceptIDs map[string]bool
	AvgRating  *float64
	Signature  string

	// Embedding is filled by the batched embedding call before the
	// historical merge loop; nil when the signature was blank.
	Embedding []float32

	tokens map[string]bool
}

// NewCandidate builds a candidate from a named cluster. previews feed the
// signature; duplicate concept ids collapse.
func NewCandidate(name string, conceptIDs []string, avgRating *float64, previews []string) *Candidate {
	ids := make(map[string]bool, len(conceptIDs))
	for _, id := range conceptIDs {
		ids[id] = true
	}
	return &Candidate{
		Name:       name,
		ConceptIDs: ids,
		AvgRating:  avgRating,
		Signature:  buildSignature(name, previews),
		tokens:     similarity.NormalizeTokens(name),
	}
}

// Size returns the number of distinct concepts in the candidate.
func (c *Candidate) Size() int { return len(c.ConceptIDs) }

// IDs returns the concept ids as a slice. Order is not significant.
func (c *Candidate) IDs() []string {
	out := make([]string, 0, len(c.ConceptIDs))
	for id := range c.ConceptIDs {
		out = append(out, id)
	}
	return out
}

// Tokens returns the normalized name-token set, computed once.
func (c *Candidate) Tokens() map[string]bool {
	if c.tokens == nil {
		c.tokens = similarity.NormalizeTokens(c.Name)
	}
	return c.tokens
}

// absorb merges other into c: concept ids become the set union, the average
// rating becomes the mean of both averages when both are defined (else
// whichever is defined), and the signatures concatenate under the length cap.
// The accumulator keeps its name and token set.
func (c *Candidate) absorb(other *Candidate) {
	for id := range other.ConceptIDs {
		c.ConceptIDs[id] = true
	}

	switch {
	case c.AvgRating != nil && other.AvgRating != nil:
		mean := (*c.AvgRating + *other.AvgRating) / 2
		c.AvgRating = &mean
	case c.AvgRating == nil:
		c.AvgRating = other.AvgRating
	}

	c.Signature = truncateRunes(c.Signature+" "+other.Signature, MaxSignatureLength)
}

// buildSignature joins the label with up to MaxSignatureSummaries example
// summaries, truncated to keep the embedding payload bounded.
func buildSignature(name string, previews []string) string {
	parts := make([]string, 0, 1+MaxSignatureSummaries)
	if s := strings.TrimSpace(name); s != "" {
		parts = append(parts, s)
	}
	taken := 0
	for _, p := range previews {
		if taken == MaxSignatureSummaries {
			break
		}
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
			taken++
		}
	}
	return truncateRunes(strings.Join(parts, ". "), MaxSignatureLength)
}

// truncateRunes caps s at n runes without splitting a multi-byte character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
