package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("Load() = %q, not a uuid", first)
	}

	second, err := Load(dir)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if second != first {
		t.Errorf("second Load() = %q, want %q", second, first)
	}
}

func TestLoadReplacesCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	id, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("Load() = %q, not a uuid", id)
	}
}
