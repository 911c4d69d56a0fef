package inference

// BackendKind tags the runtime behind a ModelHandle.
type BackendKind string

const (
	BackendNone     BackendKind = "none"
	BackendGraph    BackendKind = "graph"
	BackendExchange BackendKind = "exchange"
)

// State represents the lifecycle state of the service.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateFallback      State = "fallback"
)

// Label is the predicted class.
type Label string

const (
	LabelBenign    Label = "Benign"
	LabelMalignant Label = "Malignant"
	LabelUnknown   Label = "Unknown"
)

// RiskLevel is the discretized risk tier.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Source records which path produced a result.
type Source string

const (
	SourceModel     Source = "model"
	SourceHeuristic Source = "heuristic"
)

// ModelHandle references an initialized backend. Graph handles carry the
// signature tensor names, exchange handles the ONNX input/output names; both
// are discovered from model metadata at load time.
type ModelHandle struct {
	Kind       BackendKind
	Artifact   string
	InputName  string
	OutputName string
	session    Session
}

// RawOutput is the two-logit vector {benign, malignant}.
type RawOutput struct {
	Logits [2]float32
	Source Source
}

// PredictionResult is the immutable outcome of one Predict call.
type PredictionResult struct {
	Label      Label
	Confidence float64
	RiskLevel  RiskLevel
	Source     Source
	// Degraded is set when a real backend failed for this call and the
	// heuristic answered instead.
	Degraded bool
}

// Snapshot is a read-only projection of the service state.
type Snapshot struct {
	State         State
	Backend       BackendKind
	Artifact      string
	UsingFallback bool
	LightMode     bool
	Err           string
}
