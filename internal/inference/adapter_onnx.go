//go:build onnx

package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"dermscan/internal/registry"
)

// ExchangeOptions configures the ONNX Runtime adapter.
type ExchangeOptions struct {
	// LibPath points at the onnxruntime shared library; empty uses the
	// library's platform default.
	LibPath string
	// Threads sets intra-op parallelism when > 0.
	Threads int
	// Client fetches remote .onnx artifacts.
	Client *http.Client
}

// exchangeRuntime loads ONNX models through onnxruntime_go. The ORT
// environment is process-global and initialized at most once.
type exchangeRuntime struct {
	opts     ExchangeOptions
	initOnce sync.Once
	initErr  error
}

func NewExchangeRuntime(opts ExchangeOptions) Runtime {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &exchangeRuntime{opts: opts}
}

func (r *exchangeRuntime) Kind() BackendKind { return BackendExchange }

func (r *exchangeRuntime) Available() error {
	r.initOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if r.opts.LibPath != "" {
			ort.SetSharedLibraryPath(r.opts.LibPath)
		}
		r.initErr = ort.InitializeEnvironment()
	})
	if r.initErr != nil {
		return ErrDependencyUnavailable("onnxruntime: " + r.initErr.Error())
	}
	return nil
}

func (r *exchangeRuntime) Load(ctx context.Context, art registry.Artifact) (Session, error) {
	if err := r.Available(); err != nil {
		return nil, err
	}
	data, err := art.ReadAll(ctx, r.opts.Client)
	if err != nil {
		return nil, err
	}
	ins, outs, err := ort.GetInputOutputInfoWithONNXData(data)
	if err != nil {
		return nil, fmt.Errorf("read onnx metadata: %w", err)
	}
	if len(ins) == 0 || len(outs) == 0 {
		return nil, errors.New("onnx model declares no inputs or outputs")
	}
	in, out := ins[0].Name, outs[0].Name

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer opts.Destroy()
	if r.opts.Threads > 0 {
		if err := opts.SetIntraOpNumThreads(r.opts.Threads); err != nil {
			return nil, fmt.Errorf("set threads: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess, err := ort.NewDynamicAdvancedSessionWithONNXData(data, []string{in}, []string{out}, opts)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return &exchangeSession{sess: sess, input: in, output: out}, nil
}

type exchangeSession struct {
	sess   *ort.DynamicAdvancedSession
	input  string
	output string
}

func (s *exchangeSession) Signature() (string, string) { return s.input, s.output }

func (s *exchangeSession) Run(ctx context.Context, t *Tensor) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in, err := ort.NewTensor(ort.NewShape(t.Shape[:]...), t.Data)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer in.Destroy()
	// nil outputs are allocated by ONNX Runtime from model metadata.
	outs := []ort.ArbitraryTensor{nil}
	if err := s.sess.Run([]ort.ArbitraryTensor{in}, outs); err != nil {
		return nil, err
	}
	defer func() {
		if outs[0] != nil {
			_ = outs[0].Destroy()
		}
	}()
	ft, ok := outs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output %q is not a float32 tensor", s.output)
	}
	data := ft.GetData()
	res := make([]float32, len(data))
	copy(res, data)
	return res, nil
}

func (s *exchangeSession) Close() error {
	if s.sess == nil {
		return nil
	}
	err := s.sess.Destroy()
	s.sess = nil
	return err
}
