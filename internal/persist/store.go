package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store keeps one snapshot file on disk.
type Store struct {
	Path string
}

// Save replaces the file atomically: the data goes to a temp file in the
// same directory which is then renamed over the old one.
func (s Store) Save(data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create save directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".moongates-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp save file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close save file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace save file: %w", err)
	}
	return nil
}

// Load returns the saved bytes. A missing file is not an error and yields nil.
func (s Store) Load() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read save file: %w", err)
	}
	return data, nil
}
