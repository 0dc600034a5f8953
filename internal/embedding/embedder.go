// Package embedding provides batched text embedding via an OpenAI-compatible
// REST API.
package embedding

import "context"

// Embedder generates vector embeddings for text. Implementations support
// batch operations natively, following OpenAI API patterns.
type Embedder interface {
	// EmbedBatch returns one vector per input text, order-preserving.
	// Blank inputs are filtered out before the API call and yield a nil
	// vector at their position. An empty input returns an empty result
	// without any API call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the embedding model identifier, recorded on topics
	// created with vectors from this embedder.
	ModelName() string
}
