package vision

// Engine evaluates the exported classifier on one preprocessed batch.
// Implementations must be safe for concurrent Run calls.
type Engine interface {
	// Run takes a flat float32 tensor matching InputShape and returns the
	// per-class scores of the single batch item.
	Run(input []float32) ([]float32, error)
	InputShape() []int64
	Close() error
}
