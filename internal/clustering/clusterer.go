// Package clustering defines the clustering collaborator that groups
// unassigned concepts into semantic clusters.
package clustering

import "context"

// Item is one unassigned concept adapted for the clusterer.
type Item struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Entity   string `json:"entity,omitempty"`
	Aspect   string `json:"aspect,omitempty"`
	Category string `json:"category,omitempty"`
	Judgment string `json:"judgment"`
}

// Group is a semantic cluster of concept ids with a few example summaries
// used later for naming and embedding.
type Group struct {
	ConceptIDs       []string `json:"conceptIds"`
	PreviewSummaries []string `json:"previewSummaries"`
}

// Clusterer groups concepts into semantic clusters. Implementations may
// return zero groups; the engine treats that as an empty result, not an
// error.
type Clusterer interface {
	Cluster(ctx context.Context, items []Item) ([]Group, error)
}
