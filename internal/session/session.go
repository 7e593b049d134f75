package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const fileName = "session"

func NewID() string {
	return uuid.NewString()
}

// Load returns the panel session stored in dir, creating one on first use so
// the terminal panel resumes the same server-side state across runs.
func Load(dir string) (string, error) {
	path := filepath.Join(dir, fileName)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id := strings.TrimSpace(string(data))
		if _, perr := uuid.Parse(id); perr == nil {
			return id, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	id := NewID()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to write session file: %w", err)
	}
	return id, nil
}
