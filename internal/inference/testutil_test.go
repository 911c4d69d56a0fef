package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dermscan/internal/registry"
)

const testModelURL = "http://models.invalid/lesion"

// callLog records load attempts across runtimes in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	l.calls = append(l.calls, s)
	l.mu.Unlock()
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// fakeRuntime is an in-memory Runtime used by tests.
type fakeRuntime struct {
	kind      BackendKind
	log       *callLog
	loadErr   error
	loadDelay time.Duration
	loadPanic bool
	loads     atomic.Int32
	sess      *fakeSession
}

func (r *fakeRuntime) Kind() BackendKind { return r.kind }

func (r *fakeRuntime) Available() error {
	if r.loadErr != nil {
		return r.loadErr
	}
	return nil
}

func (r *fakeRuntime) Load(ctx context.Context, art registry.Artifact) (Session, error) {
	r.loads.Add(1)
	if r.log != nil {
		r.log.add(string(r.kind))
	}
	if r.loadPanic {
		panic("boom")
	}
	if r.loadDelay > 0 {
		// Ignores ctx on purpose to model a runtime that cannot be interrupted.
		time.Sleep(r.loadDelay)
	}
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.sess == nil {
		r.sess = &fakeSession{out: []float32{0, 1}}
	}
	return r.sess, nil
}

// fakeSession returns fixed outputs; failRuns makes the next N runs fail.
type fakeSession struct {
	mu       sync.Mutex
	out      []float32
	failRuns int
	panicRun bool
	layouts  []Layout
	shapes   [][4]int64
	closed   atomic.Int32
}

func (s *fakeSession) Signature() (string, string) { return "input_1", "probs" }

func (s *fakeSession) Run(ctx context.Context, t *Tensor) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts = append(s.layouts, t.Layout)
	s.shapes = append(s.shapes, t.Shape)
	if s.panicRun {
		panic("run boom")
	}
	if s.failRuns > 0 {
		s.failRuns--
		return nil, errors.New("device lost")
	}
	return append([]float32(nil), s.out...), nil
}

func (s *fakeSession) Close() error {
	s.closed.Add(1)
	return nil
}

type fakeRuntimes struct {
	exchange *fakeRuntime
	graph    *fakeRuntime
	log      *callLog
}

func newFakeRuntimes() *fakeRuntimes {
	l := &callLog{}
	return &fakeRuntimes{
		exchange: &fakeRuntime{kind: BackendExchange, log: l},
		graph:    &fakeRuntime{kind: BackendGraph, log: l},
		log:      l,
	}
}

func (f *fakeRuntimes) m() map[BackendKind]Runtime {
	return map[BackendKind]Runtime{BackendExchange: f.exchange, BackendGraph: f.graph}
}

// newTestService builds a Service with fake runtimes, zero jitter and a
// standard device class unless overridden by mut.
func newTestService(t *testing.T, f *fakeRuntimes, mut func(*ServiceConfig)) (*Service, *MemoryPublisher) {
	t.Helper()
	pub := NewMemoryPublisher()
	cfg := ServiceConfig{
		ModelURL:  testModelURL,
		Device:    DeviceStandard,
		Runtimes:  f.m(),
		Publisher: pub,
		Jitter:    func() float64 { return 0 },
	}
	if mut != nil {
		mut(&cfg)
	}
	return NewWithConfig(cfg), pub
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func pngDataURL(t *testing.T, img image.Image) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, img))
}

func grayDataURL(t *testing.T) string {
	t.Helper()
	return pngDataURL(t, solidImage(32, 32, color.RGBA{R: 128, G: 128, B: 128, A: 255}))
}

var errTest = errors.New("test failure")
