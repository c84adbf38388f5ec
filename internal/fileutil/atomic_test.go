package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicReplaces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "train.ckpt")

	for _, content := range []string{`{"iteration":1000}`, `{"iteration":2000}`} {
		if err := WriteFileAtomic(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(data) != content {
			t.Errorf("content mismatch: got %q, want %q", data, content)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions mismatch: got %o, want %o", info.Mode().Perm(), 0o600)
	}
	assertOnlyEntries(t, dir, "train.ckpt")
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "chart.json")
	if err := WriteFileAtomic(path, []byte("{}"), 0o644); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}

func TestWriteFileAtomicCleansUpOnFailure(t *testing.T) {
	t.Parallel()

	// Renaming a file over a non-empty directory fails after the temp file
	// has been written.
	dir := t.TempDir()
	target := filepath.Join(dir, "chart.json")
	if err := os.MkdirAll(filepath.Join(target, "occupied"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := WriteFileAtomic(target, []byte("{}"), 0o644); err == nil {
		t.Fatal("expected rename over a directory to fail")
	}
	assertOnlyEntries(t, dir, "chart.json")
}

func assertOnlyEntries(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for _, e := range entries {
		if !want[e.Name()] {
			t.Errorf("unexpected file in directory: %s", e.Name())
		}
	}
}

func TestWriteJSONAtomicRoundTrip(t *testing.T) {
	t.Parallel()

	type doc struct {
		Name  string    `json:"name"`
		Cells []float64 `json:"cells"`
	}
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	in := doc{Name: "pusher", Cells: []float64{0, 0.5, 1}}
	if err := WriteJSONAtomic(path, in); err != nil {
		t.Fatalf("WriteJSONAtomic failed: %v", err)
	}

	var out doc
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if out.Name != in.Name || len(out.Cells) != 3 || out.Cells[1] != 0.5 {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestReadJSONRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var v map[string]any
	if err := ReadJSON(path, &v); err == nil {
		t.Error("expected decode error")
	}
}
