// Package naming defines the LLM-backed collaborator that labels a cluster
// from its example summaries.
package naming

import "context"

// BusinessContext carries optional metadata about the reviewed business,
// passed through to the label generator.
type BusinessContext struct {
	BusinessType string
	ActivityName string
}

// Namer turns a cluster's example summaries into a short human-readable
// topic label.
type Namer interface {
	Name(ctx context.Context, previewSummaries []string, biz BusinessContext) (string, error)
}
