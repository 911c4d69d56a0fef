package inference

// RuntimeCheck reports whether one runtime is usable in this binary.
type RuntimeCheck struct {
	Backend   string `json:"backend"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// SanityReport describes runtime checks for external dependencies.
type SanityReport struct {
	Runtimes   []RuntimeCheck `json:"runtimes"`
	ModelURL   string         `json:"model_url,omitempty"`
	Candidates []string       `json:"candidates,omitempty"`
	LightMode  bool           `json:"light_mode"`
	// Heuristic is true when no runtime is available and predictions would
	// come from the fallback estimator.
	Heuristic bool `json:"heuristic"`
}

// SanityCheck validates that runtimes are compiled in and their native
// libraries load, and lists the candidates Initialize would try in order.
// It does not load models and is safe to call at any time.
func (s *Service) SanityCheck() SanityReport {
	s.mu.RLock()
	modelURL := s.modelURL
	if modelURL == "" {
		modelURL = s.modelsDir
	}
	light := s.lightModeActive()
	s.mu.RUnlock()

	r := SanityReport{ModelURL: modelURL, LightMode: light, Heuristic: true}
	for _, kind := range []BackendKind{BackendExchange, BackendGraph} {
		rt, ok := s.runtimes[kind]
		c := RuntimeCheck{Backend: string(kind)}
		switch {
		case !ok || rt == nil:
			c.Error = "no runtime registered"
		default:
			if err := rt.Available(); err != nil {
				c.Error = err.Error()
			} else {
				c.Available = true
				r.Heuristic = light
			}
		}
		r.Runtimes = append(r.Runtimes, c)
	}
	for _, a := range s.orderedCandidates(modelURL) {
		r.Candidates = append(r.Candidates, a.String())
	}
	return r
}
