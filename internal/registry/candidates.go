package registry

import (
	"path"
	"path/filepath"
	"strings"

	"dermscan/internal/common/fsutil"
)

const (
	savedModelFile = "saved_model.pb"
	savedModelDir  = "saved_model"
	defaultONNX    = "model.onnx"
	tfjsManifest   = "model.json"
)

// Candidates derives one exchange and one graph candidate from a model
// location, whichever format the location names. The result is ordered
// exchange first; callers apply their own preference.
//
// Accepted locations: an .onnx file, a saved_model.pb file, a model.json
// manifest, a directory holding either, and http(s) URLs of the same shapes.
func Candidates(modelURL string) []Artifact {
	loc := strings.TrimSpace(modelURL)
	if loc == "" {
		return nil
	}
	if isRemote(loc) {
		return remoteCandidates(loc)
	}
	loc = strings.TrimPrefix(loc, "file://")
	if exp, err := fsutil.ExpandHome(loc); err == nil {
		loc = exp
	}
	return localCandidates(filepath.Clean(loc))
}

func localCandidates(loc string) []Artifact {
	lower := strings.ToLower(loc)
	var exchange, graph string
	switch {
	case fsutil.IsDir(loc):
		exchange = fsutil.FirstWithExt(loc, ".onnx")
		if exchange == "" {
			exchange = filepath.Join(loc, defaultONNX)
		}
		graph = savedModelIn(loc)
	case strings.HasSuffix(lower, ".onnx"):
		exchange = loc
		dir := filepath.Dir(loc)
		stem := strings.TrimSuffix(filepath.Base(loc), filepath.Ext(loc))
		if sib := filepath.Join(dir, stem); fsutil.IsFile(filepath.Join(sib, savedModelFile)) {
			graph = sib
		} else {
			graph = savedModelIn(dir)
		}
	case strings.HasSuffix(lower, savedModelFile), strings.HasSuffix(lower, tfjsManifest):
		dir := filepath.Dir(loc)
		graph = dir
		exchange = fsutil.FirstWithExt(dir, ".onnx")
		if exchange == "" {
			exchange = filepath.Join(dir, defaultONNX)
		}
	default:
		// Unknown shape: treat as a directory that may not exist yet.
		exchange = filepath.Join(loc, defaultONNX)
		graph = savedModelIn(loc)
	}
	return []Artifact{
		{Format: FormatExchange, Location: exchange},
		{Format: FormatGraph, Location: graph},
	}
}

// savedModelIn returns dir itself when it holds a SavedModel, else dir/saved_model.
func savedModelIn(dir string) string {
	if fsutil.IsFile(filepath.Join(dir, savedModelFile)) {
		return dir
	}
	return filepath.Join(dir, savedModelDir)
}

func remoteCandidates(loc string) []Artifact {
	i := strings.Index(loc, "://") + 3
	scheme, rest := loc[:i], loc[i:]
	lower := strings.ToLower(rest)
	var exchange, graph string
	switch {
	case strings.HasSuffix(lower, ".onnx"):
		exchange = rest
		graph = path.Join(path.Dir(rest), savedModelDir)
	case strings.HasSuffix(lower, savedModelFile), strings.HasSuffix(lower, tfjsManifest):
		graph = path.Dir(rest)
		exchange = path.Join(path.Dir(rest), defaultONNX)
	default:
		base := strings.TrimSuffix(rest, "/")
		exchange = base + "/" + defaultONNX
		graph = base
	}
	return []Artifact{
		{Format: FormatExchange, Location: scheme + exchange},
		{Format: FormatGraph, Location: scheme + graph},
	}
}
