package inference

import (
	"context"

	"dermscan/internal/registry"
)

// Runtime loads artifacts of one format into executable sessions.
// Concrete implementations (ONNX Runtime, TensorFlow) satisfy this interface.
type Runtime interface {
	// Kind reports the backend this runtime produces.
	Kind() BackendKind
	// Available reports whether the runtime can be used in this binary.
	Available() error
	// Load prepares a session for the artifact. Implementations must honor
	// ctx where the underlying library allows it.
	Load(ctx context.Context, art registry.Artifact) (Session, error)
}

// Session represents a loaded model ready for inference.
type Session interface {
	// Signature returns the input and output names discovered from model metadata.
	Signature() (input, output string)
	// Run executes the model on t and returns the flattened output values.
	Run(ctx context.Context, t *Tensor) ([]float32, error)
	// Close releases any resources associated with the session.
	Close() error
}

// kindForFormat maps an artifact format to the backend that loads it.
func kindForFormat(f registry.Format) BackendKind {
	switch f {
	case registry.FormatExchange:
		return BackendExchange
	case registry.FormatGraph:
		return BackendGraph
	}
	return BackendNone
}
