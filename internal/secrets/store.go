package secrets

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/enerscope/enerscope/internal/logger"
)

// Store holds named secrets. Get reports presence separately from failure so
// a missing entry is not an error.
type Store interface {
	Get(name string) (string, bool, error)
	Set(name, value string) error
	Delete(name string) error
}

// FileStore keeps secrets in a single JSON file readable only by the owning
// user.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

func NewFileStore(dataDir string) *FileStore {
	return &FileStore{
		path: filepath.Join(dataDir, "secrets.json"),
		log:  logger.Default().WithPrefix("secrets"),
	}
}

func (s *FileStore) Get(name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return "", false, err
	}
	value, ok := entries[name]
	return value, ok, nil
}

func (s *FileStore) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	entries[name] = value
	return s.write(entries)
}

func (s *FileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := entries[name]; !ok {
		return nil
	}
	delete(entries, name)
	return s.write(entries)
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		s.log.Error("failed to read secret file: %v", err)
		return nil, err
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Error("failed to parse secret file: %v", err)
		return nil, err
	}
	return entries, nil
}

func (s *FileStore) write(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write cannot truncate the store.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		s.log.Error("failed to write secret file: %v", err)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Error("failed to replace secret file: %v", err)
		return err
	}
	return nil
}
