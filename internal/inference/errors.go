package inference

import (
	"errors"
	"fmt"
)

// decodeError signals an encoded image that cannot be rendered (400 mapping).
type decodeError struct {
	reason string
	err    error
}

func (e decodeError) Error() string {
	if e.err != nil {
		return "decode image: " + e.reason + ": " + e.err.Error()
	}
	return "decode image: " + e.reason
}

func (e decodeError) Unwrap() error { return e.err }

// ErrDecode constructs a decodeError.
func ErrDecode(reason string, err error) error { return decodeError{reason: reason, err: err} }

// IsDecodeError reports whether err indicates a bad input image.
func IsDecodeError(err error) bool {
	var e decodeError
	return errors.As(err, &e)
}

// loadError records a failed backend load. It is absorbed by the loader and
// never returned from Initialize.
type loadError struct {
	kind     BackendKind
	location string
	err      error
}

func (e loadError) Error() string {
	return fmt.Sprintf("load %s backend from %s: %v", e.kind, e.location, e.err)
}

func (e loadError) Unwrap() error { return e.err }

// ErrLoad constructs a loadError.
func ErrLoad(kind BackendKind, location string, err error) error {
	return loadError{kind: kind, location: location, err: err}
}

// IsLoadError reports whether err indicates a backend load failure.
func IsLoadError(err error) bool {
	var e loadError
	return errors.As(err, &e)
}

// inferenceError records a failed backend run. Predict absorbs it by
// answering that call with the heuristic.
type inferenceError struct {
	kind BackendKind
	err  error
}

func (e inferenceError) Error() string {
	return fmt.Sprintf("%s inference: %v", e.kind, e.err)
}

func (e inferenceError) Unwrap() error { return e.err }

// ErrInference constructs an inferenceError.
func ErrInference(kind BackendKind, err error) error { return inferenceError{kind: kind, err: err} }

// IsInferenceError reports whether err indicates a backend run failure.
func IsInferenceError(err error) bool {
	var e inferenceError
	return errors.As(err, &e)
}

// uninitializedError is returned by Predict when Initialize was never called.
type uninitializedError struct{}

func (uninitializedError) Error() string { return "model not initialized: call Initialize first" }

// ErrUninitialized constructs an uninitializedError.
func ErrUninitialized() error { return uninitializedError{} }

// IsUninitialized reports whether err indicates Predict before Initialize.
func IsUninitialized(err error) bool {
	var e uninitializedError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a runtime that is not compiled into this
// binary (missing build tag) or whose native library cannot be found.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}
