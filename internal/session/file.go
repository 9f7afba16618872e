package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the token in a small YAML document on disk.
type FileStore struct {
	path string
}

type fileDocument struct {
	Token string `yaml:"token"`
}

// DefaultPath returns $HOME/.calmora/session.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".calmora", "session.yaml"), nil
}

// NewFileStore returns a store backed by path, or DefaultPath when path is empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to determine session path: %w", err)
		}
		path = p
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse session file: %w", err)
	}
	if doc.Token == "" {
		return "", ErrNoToken
	}
	return doc.Token, nil
}

func (s *FileStore) Set(_ context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(fileDocument{Token: token})
	if err != nil {
		return err
	}

	// Write next to the target and rename so a reader never sees a partial file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
