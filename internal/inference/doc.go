// Package inference estimates skin-lesion malignancy risk from an encoded
// image. It loads one of two interchangeable model runtimes, normalizes image
// tensors to the runtime's layout, executes inference, and degrades to a
// heuristic pixel-color estimator when no runtime can be loaded. It is
// structured into small files by concern:
//
//   - service.go: Service type, constructor, simple getters.
//   - config.go: ServiceConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: state and result types (BackendKind, ModelHandle, PredictionResult).
//   - errors.go: error types and helpers (IsDecodeError, IsUninitialized, ...).
//   - device.go: light-mode and constrained-device detection.
//   - loader.go: Initialize and the ordered candidate fold.
//   - preprocess.go, tensor.go: image decoding and backend-aware tensors.
//   - executor.go: Predict and backend dispatch with per-call degrade.
//   - postprocess.go, heuristic.go: softmax, risk tiers, heuristic estimator.
//   - status_report.go, sanity.go: Status/Snapshot and runtime checks.
//
// Build tags and runtimes:
//
//   - Exchange runtime (ONNX): uses onnxruntime_go. Enabled with `-tags=onnx`.
//     Files: adapter_onnx.go; a stub without the tag: adapter_onnx_stub.go.
//
//   - Graph runtime (TensorFlow SavedModel): uses graft. Enabled with
//     `-tags=tensorflow`. Files: adapter_tf.go; stub: adapter_tf_stub.go.
//
// Stubs report a dependency-unavailable error from Load, which the loader
// treats as a failed candidate, so default builds serve the heuristic.
package inference
