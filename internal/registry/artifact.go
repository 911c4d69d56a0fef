package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Format identifies the on-disk model format of an artifact.
type Format string

const (
	// FormatGraph is a TensorFlow SavedModel directory (graph-execution format).
	FormatGraph Format = "graph"
	// FormatExchange is a single ONNX file (portable exchange format).
	FormatExchange Format = "exchange"
)

// maxRemoteBytes bounds artifact downloads.
const maxRemoteBytes = 512 << 20

// Artifact is one candidate model location.
type Artifact struct {
	Format   Format
	Location string
}

func (a Artifact) String() string { return string(a.Format) + ":" + a.Location }

// Remote reports whether the artifact is served over HTTP(S).
func (a Artifact) Remote() bool { return isRemote(a.Location) }

func isRemote(loc string) bool {
	l := strings.ToLower(loc)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// LocalPath returns the filesystem path of a local artifact.
func (a Artifact) LocalPath() (string, error) {
	if a.Remote() {
		return "", fmt.Errorf("artifact %s is remote; a local path is required", a.Location)
	}
	return strings.TrimPrefix(a.Location, "file://"), nil
}

// ReadAll returns the artifact bytes, downloading remote artifacts with client
// (http.DefaultClient when nil).
func (a Artifact) ReadAll(ctx context.Context, client *http.Client) ([]byte, error) {
	if !a.Remote() {
		p, _ := a.LocalPath()
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read artifact: %w", err)
		}
		return b, nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.Location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch artifact: unexpected status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read artifact body: %w", err)
	}
	if len(b) > maxRemoteBytes {
		return nil, fmt.Errorf("artifact exceeds %d bytes", maxRemoteBytes)
	}
	return b, nil
}
