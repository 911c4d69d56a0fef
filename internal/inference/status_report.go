package inference

import (
	"time"

	"dermscan/internal/common/fsutil"
	"dermscan/internal/registry"
	"dermscan/pkg/types"
)

// Snapshot returns a read-only view of the service state.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{State: s.state, Backend: BackendNone, UsingFallback: s.fallback, LightMode: s.lightActive, Err: s.err}
	if s.handle != nil {
		snap.Backend = s.handle.Kind
		snap.Artifact = s.handle.Artifact
	}
	return snap
}

// Status builds a detailed status response for /status.
func (s *Service) Status() types.StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := types.StatusResponse{
		State:         string(s.state),
		Backend:       string(BackendNone),
		ModelURL:      s.modelURL,
		UsingFallback: s.fallback,
		LightMode:     s.lightActive,
		LoadAttempts:  s.attempts,
		Predictions:   s.predictions.Load(),
		Degraded:      s.degraded.Load(),
		UptimeSeconds: int64(time.Since(s.startTime) / time.Second),
		Error:         s.err,
	}
	if h := s.handle; h != nil {
		resp.Backend = string(h.Kind)
		resp.Artifact = h.Artifact
		resp.InputName = h.InputName
		resp.OutputName = h.OutputName
	}
	return resp
}

// ListModels scans the configured models directory. A missing directory
// yields an empty list.
func (s *Service) ListModels() ([]types.Model, error) {
	s.mu.RLock()
	dir := s.modelsDir
	s.mu.RUnlock()
	if dir == "" {
		return []types.Model{}, nil
	}
	if exp, err := fsutil.ExpandHome(dir); err == nil && !fsutil.IsDir(exp) {
		return []types.Model{}, nil
	}
	arts, err := registry.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return registry.ToModels(arts), nil
}
