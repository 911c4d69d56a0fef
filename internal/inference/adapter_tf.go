//go:build tensorflow

package inference

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tf "github.com/wamuir/graft/tensorflow"

	"dermscan/internal/registry"
)

// GraphOptions configures the TensorFlow SavedModel adapter.
type GraphOptions struct {
	// Tags selects the MetaGraph; defaults to "serve".
	Tags []string
	// SignatureKey defaults to "serving_default".
	SignatureKey string
}

type graphRuntime struct {
	opts GraphOptions
}

func NewGraphRuntime(opts GraphOptions) Runtime {
	if len(opts.Tags) == 0 {
		opts.Tags = []string{"serve"}
	}
	if opts.SignatureKey == "" {
		opts.SignatureKey = "serving_default"
	}
	return &graphRuntime{opts: opts}
}

func (r *graphRuntime) Kind() BackendKind { return BackendGraph }

func (r *graphRuntime) Available() error { return nil }

// Load opens a local SavedModel directory. Remote SavedModels are not
// supported because the format is a directory tree.
func (r *graphRuntime) Load(ctx context.Context, art registry.Artifact) (Session, error) {
	dir, err := art.LocalPath()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model, err := tf.LoadSavedModel(dir, r.opts.Tags, nil)
	if err != nil {
		return nil, fmt.Errorf("load saved model: %w", err)
	}
	sig, ok := model.Signatures[r.opts.SignatureKey]
	if !ok {
		_ = model.Session.Close()
		return nil, fmt.Errorf("signature %q not found", r.opts.SignatureKey)
	}
	inInfo, err := firstTensorInfo(sig.Inputs)
	if err != nil {
		_ = model.Session.Close()
		return nil, fmt.Errorf("signature inputs: %w", err)
	}
	outInfo, err := firstTensorInfo(sig.Outputs)
	if err != nil {
		_ = model.Session.Close()
		return nil, fmt.Errorf("signature outputs: %w", err)
	}
	in, err := graphOutput(model.Graph, inInfo.Name)
	if err != nil {
		_ = model.Session.Close()
		return nil, err
	}
	out, err := graphOutput(model.Graph, outInfo.Name)
	if err != nil {
		_ = model.Session.Close()
		return nil, err
	}
	return &graphSession{model: model, in: in, out: out, inName: inInfo.Name, outName: outInfo.Name}, nil
}

// firstTensorInfo picks the lexically first signature entry so that models
// with a single input or output resolve deterministically.
func firstTensorInfo(m map[string]tf.TensorInfo) (tf.TensorInfo, error) {
	if len(m) == 0 {
		return tf.TensorInfo{}, fmt.Errorf("empty")
	}
	var key string
	for k := range m {
		if key == "" || k < key {
			key = k
		}
	}
	return m[key], nil
}

// graphOutput resolves "op:index" tensor names against the graph.
func graphOutput(g *tf.Graph, name string) (tf.Output, error) {
	op, idx := name, 0
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		n, err := strconv.Atoi(name[i+1:])
		if err != nil {
			return tf.Output{}, fmt.Errorf("tensor name %q: %w", name, err)
		}
		op, idx = name[:i], n
	}
	o := g.Operation(op)
	if o == nil {
		return tf.Output{}, fmt.Errorf("operation %q not in graph", op)
	}
	return o.Output(idx), nil
}

type graphSession struct {
	model   *tf.SavedModel
	in      tf.Output
	out     tf.Output
	inName  string
	outName string
}

func (s *graphSession) Signature() (string, string) { return s.inName, s.outName }

func (s *graphSession) Run(ctx context.Context, t *Tensor) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in, err := tf.NewTensor(t.Data)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	if err := in.Reshape(t.Shape[:]); err != nil {
		return nil, fmt.Errorf("reshape input: %w", err)
	}
	res, err := s.model.Session.Run(map[tf.Output]*tf.Tensor{s.in: in}, []tf.Output{s.out}, nil)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("no output tensors")
	}
	switch v := res[0].Value().(type) {
	case [][]float32:
		var flat []float32
		for _, row := range v {
			flat = append(flat, row...)
		}
		return flat, nil
	case []float32:
		return v, nil
	default:
		return nil, fmt.Errorf("unexpected output type %T", v)
	}
}

func (s *graphSession) Close() error {
	if s.model == nil {
		return nil
	}
	err := s.model.Session.Close()
	s.model = nil
	return err
}
