// Package pkg provides shared utilities for mend.
package pkg

import (
	"encoding/gob"
	"fmt"
	"os"
	"sync"
)

// Spool is a generic append-only store that spills items of type T to a
// temporary file. Exhaustive repair runs use it so validation results for
// large search spaces never accumulate in memory.
type Spool[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(f func(index uint64, item T) error) error
	Close() error
}

type spool[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// NewSpool creates a Spool backed by a fresh temporary file. Close removes
// the file.
func NewSpool[T any]() (Spool[T], error) {
	file, err := os.CreateTemp("", "mend-spool-*.gob")
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}

	return &spool[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Len returns the number of appended items.
func (s *spool[T]) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.length
}

// Path returns the backing file path.
func (s *spool[T]) Path() string {
	return s.path
}

// Append encodes one item at the end of the spool.
func (s *spool[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("spool %s is closed", s.path)
	}

	if err := s.encoder.Encode(item); err != nil {
		return fmt.Errorf("encode spool item %d: %w", s.length, err)
	}

	s.length++

	return nil
}

// Range decodes every item in append order, stopping at the first error the
// callback returns.
func (s *spool[T]) Range(f func(index uint64, item T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.length == 0 {
		return nil
	}

	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open spool: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := gob.NewDecoder(file)

	for i := uint64(0); i < s.length; i++ {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return fmt.Errorf("decode spool item %d: %w", i, err)
		}

		if err := f(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close closes and removes the backing file.
func (s *spool[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	if err := s.file.Close(); err != nil {
		return err
	}

	s.file = nil

	return os.Remove(s.path)
}
