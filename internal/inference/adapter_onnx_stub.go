//go:build !onnx

package inference

// This file provides a no-CGO stub for the ONNX Runtime adapter. It is
// compiled when the 'onnx' build tag is NOT set, keeping default builds and CI
// CGO-free. The real adapter lives in adapter_onnx.go.

import (
	"context"
	"net/http"

	"dermscan/internal/registry"
)

// ExchangeOptions configures the ONNX Runtime adapter.
type ExchangeOptions struct {
	LibPath string
	Threads int
	Client  *http.Client
}

type exchangeRuntime struct{}

func NewExchangeRuntime(ExchangeOptions) Runtime { return exchangeRuntime{} }

func (exchangeRuntime) Kind() BackendKind { return BackendExchange }

func (exchangeRuntime) Available() error {
	return ErrDependencyUnavailable("onnx runtime not built (missing 'onnx' build tag)")
}

func (r exchangeRuntime) Load(context.Context, registry.Artifact) (Session, error) {
	return nil, r.Available()
}
