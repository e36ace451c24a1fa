package driven

import "context"

// EmbeddingService maps text to dense vectors of a fixed dimension.
//
// Output is deterministic for a fixed model and is returned raw, without
// normalization. Callers must normalize to unit L2 norm before any
// inner-product comparison.
//
// Implementations may include:
//   - Ollama (all-minilm, nomic-embed-text)
//   - OpenAI-compatible APIs (text-embedding-3-small, ...)
type EmbeddingService interface {
	// Embed generates a vector embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. Row i of the
	// result corresponds to texts[i]. More efficient than calling Embed
	// in a loop for bulk builds.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 1536).
	// Must match the vector index dimension.
	Dimensions() int

	// ModelName returns the opaque model identifier.
	ModelName() string

	// Ping validates the backend is reachable with a lightweight request.
	// Used at startup before committing to a search mode.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
