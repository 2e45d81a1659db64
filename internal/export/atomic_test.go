package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReplaceTx_NewDirectory(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "out", ArtifactsDir)

	tx := NewReplaceTx(baseDir)
	if err := tx.Begin(); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if _, err := os.Stat(tx.tempDir); err != nil {
		t.Errorf("temp directory not created: %v", err)
	}

	content := []byte(`{"1001": {}}`)
	if err := tx.WriteFile("sdpi-requirements.json", content); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(baseDir, "sdpi-requirements.json"))
	if err != nil {
		t.Fatalf("failed to read committed file: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("committed content = %q, want %q", data, content)
	}
	if _, err := os.Stat(tx.tempDir); !os.IsNotExist(err) {
		t.Errorf("temp directory not cleaned up")
	}
}

func TestReplaceTx_ExistingDirectory(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), ArtifactsDir)
	if err := os.MkdirAll(filepath.Join(baseDir, "history"), 0755); err != nil {
		t.Fatalf("failed to create base directory: %v", err)
	}

	original := []byte("original")
	if err := os.WriteFile(filepath.Join(baseDir, "sdpi-use-cases.json"), original, 0644); err != nil {
		t.Fatalf("failed to write original file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(baseDir, "history", "old.json"), []byte("old"), 0644); err != nil {
		t.Fatalf("failed to write nested file: %v", err)
	}

	tx := NewReplaceTx(baseDir)
	if err := tx.Begin(); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tx.tempDir, "sdpi-use-cases.json")); !os.IsNotExist(err) {
		t.Errorf("staging directory should start empty")
	}

	updated := []byte("updated")
	if err := tx.WriteFile("sdpi-use-cases.yaml", updated); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(baseDir, "sdpi-use-cases.json"))
	if err != nil {
		t.Fatalf("failed to read base file: %v", err)
	}
	if string(data) != string(original) {
		t.Errorf("base content modified during transaction = %q, want %q", data, original)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}

	data, err = os.ReadFile(filepath.Join(baseDir, "sdpi-use-cases.yaml"))
	if err != nil {
		t.Fatalf("failed to read committed file: %v", err)
	}
	if string(data) != string(updated) {
		t.Errorf("committed content = %q, want %q", data, updated)
	}

	for _, stale := range []string{"sdpi-use-cases.json", filepath.Join("history", "old.json")} {
		if _, err := os.Stat(filepath.Join(baseDir, stale)); !os.IsNotExist(err) {
			t.Errorf("%s survived the commit", stale)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(baseDir))
	if err != nil {
		t.Fatalf("failed to list parent directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("parent directory has %d entries, want only the artifact directory", len(entries))
	}
}

func TestReplaceTx_Rollback(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), ArtifactsDir)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		t.Fatalf("failed to create base directory: %v", err)
	}
	original := []byte("original")
	if err := os.WriteFile(filepath.Join(baseDir, "manifest.json"), original, 0644); err != nil {
		t.Fatalf("failed to write original file: %v", err)
	}

	tx := NewReplaceTx(baseDir)
	if err := tx.Begin(); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if err := tx.WriteFile("manifest.json", []byte("changed")); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(baseDir, "manifest.json"))
	if err != nil {
		t.Fatalf("failed to read base file: %v", err)
	}
	if string(data) != string(original) {
		t.Errorf("base content = %q, want %q (rollback failed)", data, original)
	}
	if _, err := os.Stat(tx.tempDir); !os.IsNotExist(err) {
		t.Errorf("temp directory not cleaned up after rollback")
	}
}

func TestReplaceTx_CommitTwice(t *testing.T) {
	tx := NewReplaceTx(filepath.Join(t.TempDir(), ArtifactsDir))
	if err := tx.Begin(); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("first Commit() failed: %v", err)
	}

	if err := tx.Commit(); err == nil {
		t.Error("second Commit() should fail, but succeeded")
	}
	if err := tx.Rollback(); err == nil {
		t.Error("Rollback() after Commit() should fail, but succeeded")
	}
	if err := tx.WriteFile("late.json", []byte("{}")); err == nil {
		t.Error("WriteFile() after Commit() should fail, but succeeded")
	}
}
