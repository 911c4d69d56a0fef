package main

// General API documentation for swaggo. Generate with `swag init -g cmd/dermscan/docs.go -o docs`.
//
// @title           dermscan API
// @version         1.0
// @description     Skin-lesion risk estimation with ONNX/TensorFlow runtimes and a heuristic fallback.
//
// @contact.name   dermscan maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
