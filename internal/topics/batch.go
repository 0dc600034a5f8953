package topics

import "github.com/reviewlens/topicforge/pkg/similarity"

// DefaultJaccardThreshold is the lexical cutoff at which two clusters in the
// same run are considered the same topic.
const DefaultJaccardThreshold = 0.6

// MergeBatch consolidates the clusters produced within one run. Single
// left-to-right pass: each input is compared against the accumulated output
// (never against other raw inputs) and merged into the first entry whose
// normalized name tokens reach the Jaccard threshold; otherwise it is
// appended. Greedy and order-dependent, which keeps it O(n²) token-set
// comparisons and stable relative to first-occurrence order.
func MergeBatch(candidates []*Candidate, threshold float64) []*Candidate {
	out := make([]*Candidate, 0, len(candidates))

	for _, cand := range candidates {
		merged := false
		for _, acc := range out {
			if similarity.Jaccard(acc.Tokens(), cand.Tokens()) >= threshold {
				acc.absorb(cand)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, cand)
		}
	}

	return out
}
