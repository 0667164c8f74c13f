// Package pkg provides utilities shared by the oracles commands.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrSpillClosed is returned by operations on a closed spill.
var ErrSpillClosed = errors.New("file spill is closed")

// FileSpill is an append-only sequence of items kept on disk, so that
// sessions over many tests do not hold every report in memory.
type FileSpill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	AppendBatch(items []T) error
	Get(index uint64) (T, error)
	Range(f func(index uint64, item T) error) error
	Close() error
}

// SpillOption configures a FileSpill.
type SpillOption func(*spillConfig)

type spillConfig struct {
	dir  string
	keep bool
}

// WithDir places the spill file in dir instead of the system temp
// directory.
func WithDir(dir string) SpillOption {
	return func(c *spillConfig) {
		c.dir = dir
	}
}

// WithKeep leaves the spill file on disk after Close.
func WithKeep() SpillOption {
	return func(c *spillConfig) {
		c.keep = true
	}
}

type fileSpill[T any] struct {
	path string
	keep bool

	mu      sync.Mutex
	file    *os.File
	encoder *gob.Encoder
	length  uint64
}

// NewFileSpill creates a FileSpill for items of type T backed by a fresh
// gob file.
func NewFileSpill[T any](opts ...SpillOption) (FileSpill[T], error) {
	cfg := spillConfig{dir: filepath.Join(os.TempDir(), "oracles-spill")}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(cfg.dir, 0o750); err != nil {
		slog.Error("Failed to create spill directory", "path", cfg.dir, "error", err)
		return nil, fmt.Errorf("failed to create spill directory: %w", err)
	}

	file, err := os.CreateTemp(cfg.dir, "spill-*.gob")
	if err != nil {
		slog.Error("Failed to create spill file", "path", cfg.dir, "error", err)
		return nil, fmt.Errorf("failed to create spill file: %w", err)
	}

	slog.Debug("Created file spill", "path", file.Name())

	return &fileSpill[T]{
		path:    file.Name(),
		keep:    cfg.keep,
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

func (f *fileSpill[T]) Path() string {
	return f.path
}

func (f *fileSpill[T]) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.length
}

func (f *fileSpill[T]) Append(item T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.appendLocked(item)
}

// AppendBatch appends items in order, stopping at the first failure.
func (f *fileSpill[T]) AppendBatch(items []T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range items {
		if err := f.appendLocked(item); err != nil {
			return err
		}
	}

	return nil
}

func (f *fileSpill[T]) appendLocked(item T) error {
	if f.file == nil {
		return ErrSpillClosed
	}

	if err := f.encoder.Encode(item); err != nil {
		slog.Error("Failed to encode spilled item", "path", f.path, "index", f.length, "error", err)
		return fmt.Errorf("failed to encode item %d: %w", f.length, err)
	}

	f.length++

	return nil
}

func (f *fileSpill[T]) Get(index uint64) (T, error) {
	var (
		found T
		ok    bool
	)

	err := f.Range(func(i uint64, item T) error {
		if i == index {
			found, ok = item, true
			return io.EOF
		}

		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		var zero T
		return zero, err
	}

	if !ok {
		var zero T
		return zero, fmt.Errorf("index %d out of bounds (length %d)", index, f.Len())
	}

	return found, nil
}

// Range decodes the items in append order. An error returned by fn stops
// the iteration and is returned as is.
func (f *fileSpill[T]) Range(fn func(index uint64, item T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrSpillClosed
	}

	reader, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open spill file: %w", err)
	}

	defer func() {
		if err := reader.Close(); err != nil {
			slog.Warn("Failed to close spill reader", "path", f.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(reader)

	for i := range f.length {
		// A fresh item per decode; gob leaves absent fields untouched.
		var item T
		if err := decoder.Decode(&item); err != nil {
			return fmt.Errorf("failed to decode item %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the spill and removes its file unless WithKeep was given.
// Closing twice is a no-op.
func (f *fileSpill[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}

	err := f.file.Close()
	f.file = nil

	if err != nil {
		return fmt.Errorf("failed to close spill file: %w", err)
	}

	if !f.keep {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove spill file: %w", err)
		}
	}

	slog.Debug("Closed file spill", "path", f.path, "length", f.length)

	return nil
}
