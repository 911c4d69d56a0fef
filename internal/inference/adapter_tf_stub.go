//go:build !tensorflow

package inference

import (
	"context"

	"dermscan/internal/registry"
)

// GraphOptions configures the TensorFlow SavedModel adapter.
type GraphOptions struct {
	// Tags selects the MetaGraph; defaults to "serve".
	Tags []string
	// SignatureKey defaults to "serving_default".
	SignatureKey string
}

// graphRuntime refuses to load without the 'tensorflow' build tag.
type graphRuntime struct{}

func NewGraphRuntime(GraphOptions) Runtime { return graphRuntime{} }

func (graphRuntime) Kind() BackendKind { return BackendGraph }

func (graphRuntime) Available() error {
	return ErrDependencyUnavailable("tensorflow runtime not built (missing 'tensorflow' build tag)")
}

func (r graphRuntime) Load(context.Context, registry.Artifact) (Session, error) {
	return nil, r.Available()
}
