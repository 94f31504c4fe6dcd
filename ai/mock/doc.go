// Package mock provides test double implementations of the ai
// interfaces.
//
// MockEmbedder returns deterministic vectors derived from an FNV hash
// of the input text, so tests get stable similarity results without an
// external embedding service. Custom behavior can be injected via the
// function fields:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
package mock
