package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, p string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

func byFormat(arts []Artifact) map[Format]string {
	m := map[Format]string{}
	for _, a := range arts {
		m[a.Format] = a.Location
	}
	return m
}

func TestCandidates_Empty(t *testing.T) {
	if got := Candidates("   "); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestCandidates_ONNXFileProbesSiblingSavedModel(t *testing.T) {
	dir := t.TempDir()
	onnx := filepath.Join(dir, "lesion.onnx")
	touch(t, onnx)
	touch(t, filepath.Join(dir, "lesion", savedModelFile))

	got := byFormat(Candidates(onnx))
	if got[FormatExchange] != onnx {
		t.Fatalf("exchange=%q", got[FormatExchange])
	}
	if got[FormatGraph] != filepath.Join(dir, "lesion") {
		t.Fatalf("graph=%q", got[FormatGraph])
	}
}

func TestCandidates_ONNXFileFallsBackToSavedModelDir(t *testing.T) {
	dir := t.TempDir()
	onnx := filepath.Join(dir, "m.onnx")
	got := byFormat(Candidates("file://" + onnx))
	if got[FormatGraph] != filepath.Join(dir, savedModelDir) {
		t.Fatalf("graph=%q", got[FormatGraph])
	}
}

func TestCandidates_Directory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.onnx"))
	touch(t, filepath.Join(dir, savedModelFile))
	got := byFormat(Candidates(dir))
	if got[FormatExchange] != filepath.Join(dir, "b.onnx") {
		t.Fatalf("exchange=%q", got[FormatExchange])
	}
	if got[FormatGraph] != dir {
		t.Fatalf("graph=%q", got[FormatGraph])
	}
}

func TestCandidates_GraphManifest(t *testing.T) {
	dir := t.TempDir()
	got := byFormat(Candidates(filepath.Join(dir, "model.json")))
	if got[FormatGraph] != dir || got[FormatExchange] != filepath.Join(dir, defaultONNX) {
		t.Fatalf("unexpected candidates: %+v", got)
	}
}

func TestCandidates_Remote(t *testing.T) {
	cases := map[string][2]string{
		"https://cdn.example/models/m.onnx":     {"https://cdn.example/models/m.onnx", "https://cdn.example/models/saved_model"},
		"https://cdn.example/models/model.json": {"https://cdn.example/models/model.onnx", "https://cdn.example/models"},
		"http://cdn.example/models/":            {"http://cdn.example/models/model.onnx", "http://cdn.example/models"},
	}
	for in, want := range cases {
		got := byFormat(Candidates(in))
		if got[FormatExchange] != want[0] || got[FormatGraph] != want[1] {
			t.Fatalf("Candidates(%q) = %+v, want %v", in, got, want)
		}
	}
}

func TestArtifact_ReadAllLocalAndRemote(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "m.onnx")
	touch(t, p)
	b, err := Artifact{Format: FormatExchange, Location: p}.ReadAll(context.Background(), nil)
	if err != nil || string(b) != "x" {
		t.Fatalf("local read: %q %v", b, err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.onnx" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("onnx-bytes"))
	}))
	defer srv.Close()
	b, err = Artifact{Format: FormatExchange, Location: srv.URL + "/m.onnx"}.ReadAll(context.Background(), srv.Client())
	if err != nil || string(b) != "onnx-bytes" {
		t.Fatalf("remote read: %q %v", b, err)
	}
	if _, err := (Artifact{Format: FormatExchange, Location: srv.URL + "/missing.onnx"}).ReadAll(context.Background(), srv.Client()); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestArtifact_LocalPathRejectsRemote(t *testing.T) {
	if _, err := (Artifact{Location: "https://x/y"}).LocalPath(); err == nil {
		t.Fatalf("expected error for remote artifact")
	}
	p, err := Artifact{Location: "file:///srv/m"}.LocalPath()
	if err != nil || p != "/srv/m" {
		t.Fatalf("got %q %v", p, err)
	}
}
