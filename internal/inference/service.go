package inference

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Service owns the model lifecycle. It is safe for concurrent use.
type Service struct {
	mu sync.RWMutex
	// runMu is held shared by in-flight backend runs and exclusively by Close.
	runMu sync.RWMutex

	state        State
	initCalled   bool
	initialized  bool
	initializing bool
	handle       *ModelHandle
	fallback     bool
	lightActive  bool
	attempts     int
	err          string
	// gen advances on Close so a load that finishes afterwards is discarded.
	gen uint64

	modelURL    string
	modelsDir   string
	lightMode   bool
	userAgent   string
	device      DeviceClass
	loadTimeout time.Duration
	runtimes    map[BackendKind]Runtime

	publisher EventPublisher
	log       zerolog.Logger
	jitter    func() float64

	predictions atomic.Int64
	degraded    atomic.Int64
	startTime   time.Time
}

// New constructs a Service for modelURL with package defaults.
func New(modelURL string) *Service {
	return NewWithConfig(ServiceConfig{ModelURL: modelURL})
}

// SetEventPublisher replaces the publisher. Passing nil installs a no-op.
func (s *Service) SetEventPublisher(p EventPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	s.publisher = p
}

func (s *Service) publish(e Event) {
	s.mu.RLock()
	p := s.publisher
	s.mu.RUnlock()
	p.Publish(e)
}

// UsingFallback reports whether predictions are served by the heuristic
// because no backend loaded.
func (s *Service) UsingFallback() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fallback
}

// Ready reports whether Initialize has completed, with or without a backend.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Backend returns the kind of the active backend.
func (s *Service) Backend() BackendKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.handle == nil {
		return BackendNone
	}
	return s.handle.Kind
}

// Close releases the active backend and returns the service to its
// uninitialized state. It waits for in-flight runs to finish.
func (s *Service) Close() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.gen++
	s.state = StateUninitialized
	s.initCalled, s.initialized, s.initializing = false, false, false
	s.fallback, s.lightActive = false, false
	s.attempts, s.err = 0, ""
	s.mu.Unlock()
	if h == nil || h.session == nil {
		return nil
	}
	return h.session.Close()
}
