package filestore

import (
	"errors"
	"os"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("filestore: file not found")

// Entry is one retrievable download.
type Entry struct {
	Path     string
	Filename string
}

// Store maps opaque file identifiers to files on local disk. Jobs reference
// downloads only by these ids; clients never see paths.
type Store struct {
	mu    sync.RWMutex
	files map[string]Entry
}

func New() *Store {
	return &Store{files: make(map[string]Entry)}
}

// Register records a finished download and returns its opaque id.
func (s *Store) Register(path, filename string) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.files[id] = Entry{Path: path, Filename: filename}
	s.mu.Unlock()
	return id
}

func (s *Store) Get(id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.files[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Remove drops the entry and deletes the underlying file. Removing an unknown
// id is not an error; the janitor may race a restart.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	entry, ok := s.files[id]
	delete(s.files, id)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if err := os.Remove(entry.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
