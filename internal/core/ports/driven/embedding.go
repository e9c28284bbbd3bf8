package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations include:
//   - Text Embeddings Inference (sentence-transformers/all-MiniLM-L6-v2)
//   - Ollama (all-minilm, nomic-embed-text)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// Zero means the size is not known ahead of the first call.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at construction to surface a missing model immediately.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
