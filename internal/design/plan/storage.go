package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrBadName = errors.New("invalid file name")

// ============================================================
// File Storage
// ============================================================

// FileStorage keeps the SVG a project was imported from, one directory per
// user.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) UserDir(user string) string {
	return filepath.Join(s.root, user)
}

func (s *FileStorage) SourcePath(user, projectID string) (string, error) {
	if !safeName(user) || !safeName(projectID) {
		return "", fmt.Errorf("%w: %q/%q", ErrBadName, user, projectID)
	}
	return filepath.Join(s.UserDir(user), projectID+".svg"), nil
}

func (s *FileStorage) SaveSource(user, projectID string, data []byte) error {
	path, err := s.SourcePath(user, projectID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadSource returns os.ErrNotExist (wrapped) when the project was not
// imported.
func (s *FileStorage) LoadSource(user, projectID string) ([]byte, error) {
	path, err := s.SourcePath(user, projectID)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func safeName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
