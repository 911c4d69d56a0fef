package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dermscan/internal/common/fsutil"
	"dermscan/pkg/types"
)

// LoadDir scans a directory for model artifacts: *.onnx files become exchange
// artifacts, and the directory itself or any immediate subdirectory holding a
// saved_model.pb becomes a graph artifact.
func LoadDir(dir string) ([]Artifact, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []Artifact
	if fsutil.IsFile(filepath.Join(abs, savedModelFile)) {
		out = append(out, Artifact{Format: FormatGraph, Location: abs})
	}
	for _, e := range entries {
		p := filepath.Join(abs, e.Name())
		if e.IsDir() {
			if fsutil.IsFile(filepath.Join(p, savedModelFile)) {
				out = append(out, Artifact{Format: FormatGraph, Location: p})
			}
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".onnx") {
			out = append(out, Artifact{Format: FormatExchange, Location: p})
		}
	}
	return out, nil
}

// ToModels projects artifacts into API DTOs.
func ToModels(arts []Artifact) []types.Model {
	out := make([]types.Model, 0, len(arts))
	for _, a := range arts {
		out = append(out, types.Model{Format: string(a.Format), Location: a.Location})
	}
	return out
}
