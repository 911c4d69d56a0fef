package types

// Model describes one artifact discovered in the models directory.
type Model struct {
	// Artifact format: graph or exchange.
	// example: exchange
	Format string `json:"format" example:"exchange"`
	// Filesystem path or URL of the artifact.
	// example: /srv/models/lesion.onnx
	Location string `json:"location" example:"/srv/models/lesion.onnx"`
}
