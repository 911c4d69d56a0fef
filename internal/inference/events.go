package inference

// Event represents a service lifecycle event.
// Minimal and stable: name + backend kind and optional fields via key/values.
type Event struct {
	Name    string
	Backend BackendKind
	Fields  map[string]any
}

// Event names published by the service.
const (
	EventLightMode      = "light_mode"
	EventLoadAttempt    = "load_attempt"
	EventLoadOK         = "load_ok"
	EventLoadFail       = "load_fail"
	EventFallbackActive = "fallback_active"
	EventPredict        = "predict"
	EventInferDegraded  = "infer_degraded"
)

// EventPublisher receives events from the service. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MultiPublisher fans an event out to several publishers.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}
