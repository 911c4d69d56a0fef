package types

// InitializeRequest asks the service to load a model runtime.
type InitializeRequest struct {
	// Location of a model artifact: an .onnx file, a SavedModel directory, a
	// directory holding both, or an http(s) URL. Empty uses the configured
	// models directory.
	// example: /srv/models/lesion.onnx
	ModelURL string `json:"model_url,omitempty" example:"/srv/models/lesion.onnx"`
}

// PredictRequest carries one encoded image.
type PredictRequest struct {
	// Encoded image: a data URL (data:image/jpeg;base64,...) or a file URI.
	// example: data:image/png;base64,iVBORw0KGgo=
	Image string `json:"image" example:"data:image/png;base64,iVBORw0KGgo="`
}

// PredictResponse is returned by POST /predict and POST /predict/image.
type PredictResponse struct {
	// Unique id for this prediction.
	// example: 5f0c7c8e-7d4e-4d8e-9d1a-2f6f3f0e9b11
	ID string `json:"id" example:"5f0c7c8e-7d4e-4d8e-9d1a-2f6f3f0e9b11"`
	// Benign, Malignant or Unknown.
	// example: Benign
	Prediction string `json:"prediction" example:"Benign"`
	// Estimated probability of malignancy in [0,1].
	// example: 0.23
	Confidence float64 `json:"confidence" example:"0.23"`
	// Discretized risk tier: low, medium or high.
	// example: low
	RiskLevel string `json:"riskLevel" example:"low"`
	// Which path produced the result: model or heuristic.
	// example: model
	Source string `json:"source" example:"model"`
	// True when no model is loaded and the service answers every request with
	// the heuristic estimator.
	// example: false
	UsingFallback bool `json:"using_fallback" example:"false"`
	// True when a loaded model failed on this call and the heuristic answered
	// instead.
	// example: false
	Degraded bool `json:"degraded" example:"false"`
}

// ModelsResponse wraps the list of artifacts returned by GET /models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Lifecycle state: uninitialized, loading, ready or fallback.
	// example: ready
	State string `json:"state" example:"ready"`
	// Active backend kind: graph, exchange or none.
	// example: exchange
	Backend string `json:"backend" example:"exchange"`
	// Artifact the active backend was loaded from.
	Artifact string `json:"artifact,omitempty"`
	// Input and output names discovered from model metadata.
	InputName  string `json:"input_name,omitempty"`
	OutputName string `json:"output_name,omitempty"`
	// Model location passed to initialize.
	ModelURL string `json:"model_url,omitempty"`
	// True when no real model is loaded and the heuristic serves predictions.
	UsingFallback bool `json:"using_fallback"`
	// True when light mode skipped model loading.
	LightMode bool `json:"light_mode"`
	// Number of load attempts made during initialization.
	LoadAttempts int `json:"load_attempts"`
	// Predictions served and how many of them degraded to the heuristic.
	Predictions int64 `json:"predictions"`
	Degraded    int64 `json:"degraded"`
	// Seconds since the service was constructed.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Last load error, if every candidate failed.
	Error string `json:"error,omitempty"`
}
