package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dermscan/internal/registry"
)

// Initialize acquires a backend for modelURL (or the configured location when
// empty). It returns immediately when the service is already initialized or
// an initialization is in progress. Load failures are absorbed: when every
// candidate fails the service serves the heuristic and UsingFallback reports
// true. The returned error is reserved for a canceled ctx.
func (s *Service) Initialize(ctx context.Context, modelURL string) error {
	s.mu.Lock()
	if s.initialized || s.initializing {
		s.mu.Unlock()
		return nil
	}
	s.initCalled = true
	if modelURL == "" {
		modelURL = s.modelURL
	}
	if modelURL == "" {
		modelURL = s.modelsDir
	}
	s.modelURL = modelURL
	if s.lightModeActive() {
		s.initialized, s.fallback, s.lightActive = true, true, true
		s.state = StateFallback
		s.mu.Unlock()
		s.log.Info().Str("user_agent", s.userAgent).Msg("light mode: skipping model load")
		s.publish(Event{Name: EventLightMode, Backend: BackendNone})
		return nil
	}
	s.initializing = true
	s.state = StateLoading
	gen := s.gen
	s.mu.Unlock()

	handle, attempts, lastErr := s.loadFirst(ctx, s.orderedCandidates(modelURL))

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		if handle != nil && handle.session != nil {
			_ = handle.session.Close()
		}
		s.log.Info().Str("model_url", modelURL).Msg("service closed during load; discarding backend")
		return nil
	}
	s.initializing = false
	if handle == nil && ctx.Err() != nil {
		// Canceled by the caller: leave the service retryable.
		s.state = StateUninitialized
		s.attempts = attempts
		s.mu.Unlock()
		return ctx.Err()
	}
	s.initialized = true
	s.attempts = attempts
	if handle != nil {
		s.handle = handle
		s.fallback = false
		s.state = StateReady
		s.err = ""
	} else {
		s.fallback = true
		s.state = StateFallback
		if lastErr != nil {
			s.err = lastErr.Error()
		}
	}
	s.mu.Unlock()

	if handle == nil {
		s.log.Warn().Int("attempts", attempts).Str("model_url", modelURL).Msg("no backend loaded; using heuristic fallback")
		s.publish(Event{Name: EventFallbackActive, Backend: BackendNone, Fields: map[string]any{"attempts": attempts}})
	}
	return nil
}

// orderedCandidates applies the device preference: constrained devices try
// the graph runtime first, everything else tries the exchange runtime first.
func (s *Service) orderedCandidates(modelURL string) []registry.Artifact {
	cands := registry.Candidates(modelURL)
	first := registry.FormatExchange
	if s.constrained() {
		first = registry.FormatGraph
	}
	out := make([]registry.Artifact, 0, len(cands))
	for _, c := range cands {
		if c.Format == first {
			out = append(out, c)
		}
	}
	for _, c := range cands {
		if c.Format != first {
			out = append(out, c)
		}
	}
	return out
}

// loadResult is the outcome of one candidate loader.
type loadResult struct {
	handle *ModelHandle
	err    error
}

// loadFirst folds the candidates left to right and stops at the first
// success. It returns the attempt count and the last failure.
func (s *Service) loadFirst(ctx context.Context, cands []registry.Artifact) (*ModelHandle, int, error) {
	var lastErr error
	attempts := 0
	for _, art := range cands {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}
		attempts++
		r := s.attempt(ctx, art)
		if r.err == nil {
			return r.handle, attempts, nil
		}
		lastErr = r.err
	}
	if lastErr == nil {
		lastErr = errors.New("no model candidates")
	}
	return nil, attempts, lastErr
}

// attempt runs one load under the load timeout. A session that arrives after
// the deadline is closed.
func (s *Service) attempt(ctx context.Context, art registry.Artifact) loadResult {
	kind := kindForFormat(art.Format)
	s.log.Debug().Str("backend", string(kind)).Str("artifact", art.Location).Msg("load attempt")
	s.publish(Event{Name: EventLoadAttempt, Backend: kind, Fields: map[string]any{"artifact": art.Location}})

	res := s.load(ctx, kind, art)
	if res.err != nil {
		res.err = ErrLoad(kind, art.Location, res.err)
		s.log.Warn().Err(res.err).Str("backend", string(kind)).Msg("load failed")
		s.publish(Event{Name: EventLoadFail, Backend: kind, Fields: map[string]any{"artifact": art.Location, "error": res.err.Error()}})
		return res
	}
	s.log.Info().Str("backend", string(kind)).Str("artifact", art.Location).
		Str("input", res.handle.InputName).Str("output", res.handle.OutputName).Msg("backend loaded")
	s.publish(Event{Name: EventLoadOK, Backend: kind, Fields: map[string]any{"artifact": art.Location}})
	return res
}

func (s *Service) load(ctx context.Context, kind BackendKind, art registry.Artifact) loadResult {
	rt, ok := s.runtimes[kind]
	if !ok || rt == nil {
		return loadResult{err: fmt.Errorf("no runtime registered for %s", kind)}
	}
	actx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	type out struct {
		sess Session
		err  error
	}
	ch := make(chan out, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- out{err: fmt.Errorf("runtime panic: %v", r)}
			}
		}()
		sess, err := rt.Load(actx, art)
		ch <- out{sess: sess, err: err}
	}()

	select {
	case o := <-ch:
		if o.err != nil {
			return loadResult{err: o.err}
		}
		if o.sess == nil {
			return loadResult{err: errors.New("runtime returned no session")}
		}
		in, outName := o.sess.Signature()
		return loadResult{handle: &ModelHandle{Kind: kind, Artifact: art.Location, InputName: in, OutputName: outName, session: o.sess}}
	case <-actx.Done():
		go func() {
			if o := <-ch; o.sess != nil {
				_ = o.sess.Close()
			}
		}()
		if errors.Is(actx.Err(), context.DeadlineExceeded) {
			return loadResult{err: fmt.Errorf("timed out after %s: %w", s.loadTimeout.Round(time.Millisecond), actx.Err())}
		}
		return loadResult{err: actx.Err()}
	}
}
