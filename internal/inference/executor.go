package inference

import (
	"context"
	"fmt"
)

// Predict classifies one encoded image. It returns an Uninitialized error
// when Initialize was never called and a decode error for bad input; backend
// failures never surface. A Predict that races an in-progress Initialize is
// answered by the heuristic.
func (s *Service) Predict(ctx context.Context, image string) (PredictionResult, error) {
	s.mu.RLock()
	initCalled := s.initCalled
	s.mu.RUnlock()
	if !initCalled {
		return PredictionResult{}, ErrUninitialized()
	}
	sample, err := Decode(image)
	if err != nil {
		return PredictionResult{}, err
	}

	s.runMu.RLock()
	defer s.runMu.RUnlock()
	s.mu.RLock()
	h := s.handle
	s.mu.RUnlock()

	kind := BackendNone
	if h != nil {
		kind = h.Kind
	}
	t := ToTensor(sample, kind)
	defer t.Release()

	raw, err := s.execute(ctx, h, t)
	res := Postprocess(raw)
	if err != nil {
		res.Degraded = true
		s.degraded.Add(1)
		s.log.Warn().Err(err).Str("backend", string(kind)).Msg("inference failed; heuristic answered this call")
		s.publish(Event{Name: EventInferDegraded, Backend: kind, Fields: map[string]any{"error": err.Error()}})
	}
	s.predictions.Add(1)
	s.publish(Event{Name: EventPredict, Backend: kind, Fields: map[string]any{
		"source": string(res.Source), "risk": string(res.RiskLevel), "label": string(res.Label),
	}})
	return res, nil
}

// execute dispatches on the handle kind. A backend error is returned next to
// a heuristic RawOutput so the caller can still answer.
func (s *Service) execute(ctx context.Context, h *ModelHandle, t *Tensor) (RawOutput, error) {
	if h == nil || h.Kind == BackendNone {
		return s.heuristicOutput(t), nil
	}
	raw, err := runBackend(ctx, h, t)
	if err != nil {
		return s.heuristicOutput(t), err
	}
	return raw, nil
}

func (s *Service) heuristicOutput(t *Tensor) RawOutput {
	p := HeuristicProbability(t, s.jitter())
	return RawOutput{Logits: pseudoLogits(p), Source: SourceHeuristic}
}

func runBackend(ctx context.Context, h *ModelHandle, t *Tensor) (raw RawOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrInference(h.Kind, fmt.Errorf("runtime panic: %v", r))
		}
	}()
	out, err := h.session.Run(ctx, t)
	if err != nil {
		return RawOutput{}, ErrInference(h.Kind, err)
	}
	if len(out) < 2 {
		return RawOutput{}, ErrInference(h.Kind, fmt.Errorf("output %q has %d values, want at least 2", h.OutputName, len(out)))
	}
	return RawOutput{Logits: [2]float32{out[0], out[1]}, Source: SourceModel}, nil
}
