// Package mock provides a test double implementation of the ai.Embedder interface.
//
// The mock allows tests to run without an embedding service and enables
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockEmbedder := mock.NewMockEmbedder()
//	vector, err := mockEmbedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// The default behavior returns a deterministic 384-dimensional vector derived
// from the FNV hash of the input text, so identical texts always embed to
// identical vectors.
package mock
