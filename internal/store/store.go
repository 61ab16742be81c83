// Package store provides a JSON-file-backed record store. Every mutation is
// a whole-file replace through an atomic temp-file rename, serialized by an
// in-process mutex plus a cross-process file lock.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// File is a single JSON file holding one value of type T. A missing file is
// created with the default value on first load. A file that fails to parse
// is quarantined and replaced with the default so the corruption stays
// observable on disk instead of being silently shadowed.
type File[T any] struct {
	path       string
	defaultVal func() T
	logger     *zap.Logger

	mu   sync.Mutex
	lock *flock.Flock
}

// New creates a store over path. defaultVal must return a fresh value on
// each call; it is used whenever the file is missing or unreadable.
func New[T any](path string, defaultVal func() T, logger *zap.Logger) *File[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File[T]{
		path:       path,
		defaultVal: defaultVal,
		logger:     logger,
		lock:       flock.New(path + ".lock"),
	}
}

// Path returns the file path backing the store.
func (f *File[T]) Path() string {
	return f.path
}

// Load returns the current contents of the store. If the file does not
// exist it is created containing the default value, which is returned.
func (f *File[T]) Load() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.acquire(); err != nil {
		var zero T
		return zero, err
	}
	defer f.release()

	return f.loadLocked()
}

// Save replaces the entire file content with the serialized value.
func (f *File[T]) Save(value T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.acquire(); err != nil {
		return err
	}
	defer f.release()

	return f.saveLocked(value)
}

// Update applies fn to the current contents and persists the result, all
// under a single lock acquisition. Returns the value that was persisted.
func (f *File[T]) Update(fn func(T) (T, error)) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	if err := f.acquire(); err != nil {
		return zero, err
	}
	defer f.release()

	current, err := f.loadLocked()
	if err != nil {
		return zero, err
	}

	next, err := fn(current)
	if err != nil {
		return zero, err
	}

	if err := f.saveLocked(next); err != nil {
		return zero, err
	}
	return next, nil
}

func (f *File[T]) loadLocked() (T, error) {
	var zero T

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		def := f.defaultVal()
		if err := f.saveLocked(def); err != nil {
			return zero, fmt.Errorf("initializing %s: %w", f.path, err)
		}
		return def, nil
	}
	if err != nil {
		return zero, fmt.Errorf("reading %s: %w", f.path, err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		f.logger.Warn("store file is corrupt, replacing with default",
			zap.String("path", f.path),
			zap.Error(err))
		f.quarantine()

		def := f.defaultVal()
		if err := f.saveLocked(def); err != nil {
			return zero, fmt.Errorf("resetting %s: %w", f.path, err)
		}
		return def, nil
	}

	return value, nil
}

// saveLocked writes the value to a temp file in the same directory and
// renames it over the target, so readers never observe a partial write.
func (f *File[T]) saveLocked(value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f.path, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", f.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}

// quarantine moves an unparsable file aside so it can be inspected later.
// The name carries a random token so repeated corruption within the same
// second never overwrites an earlier quarantined copy.
func (f *File[T]) quarantine() {
	dst := fmt.Sprintf("%s.corrupt-%s-%s",
		f.path, time.Now().Format("20060102150405"), uuid.NewString()[:8])
	if err := os.Rename(f.path, dst); err != nil {
		f.logger.Warn("failed to quarantine corrupt store file",
			zap.String("path", f.path),
			zap.Error(err))
		return
	}
	f.logger.Info("quarantined corrupt store file",
		zap.String("path", f.path),
		zap.String("quarantined", dst))
}

func (f *File[T]) acquire() error {
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", f.lock.Path(), err)
	}
	return nil
}

func (f *File[T]) release() {
	if err := f.lock.Unlock(); err != nil {
		f.logger.Warn("failed to release store lock",
			zap.String("path", f.lock.Path()),
			zap.Error(err))
	}
}
