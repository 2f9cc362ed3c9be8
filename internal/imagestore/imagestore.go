// Package imagestore persists uploaded capture images under a confined
// storage directory.
package imagestore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/logging"
	"github.com/wastenet/wastenet-go/internal/observability"
)

// filenameTimeLayout orders stored images chronologically when listed.
const filenameTimeLayout = "20060102T150405"

// Store writes and resolves capture images inside a single base directory.
// All paths handed out are relative to the base; absolute paths and parent
// traversal are rejected on resolution.
type Store struct {
	baseDir string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Store rooted at baseDir, creating the directory if needed.
func New(baseDir string, metrics *observability.Metrics) (*Store, error) {
	if baseDir == "" {
		return nil, errors.Newf("image store base directory must not be empty").
			Component("imagestore").
			Category(errors.CategoryConfiguration).
			Build()
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("base_dir", baseDir).
			Build()
	}

	if err := os.MkdirAll(absBase, 0o755); err != nil {
		return nil, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("base_dir", absBase).
			Build()
	}

	logger := logging.ForService("imagestore")
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		baseDir: absBase,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// BaseDir returns the absolute storage directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// SaveJPEG writes the buffer to a new uniquely named file and returns the
// file name (relative to the base directory) and the byte count written.
// The name combines a timestamp with a random suffix so concurrent uploads
// cannot collide; O_EXCL guarantees no existing file is ever overwritten.
func (s *Store) SaveJPEG(data []byte) (string, int64, error) {
	if len(data) == 0 {
		return "", 0, errors.Newf("empty image buffer").
			Component("imagestore").
			Category(errors.CategoryValidation).
			Build()
	}

	name := fmt.Sprintf("capture_%s_%s.jpg",
		time.Now().Format(filenameTimeLayout),
		uuid.NewString()[:8])
	path := filepath.Join(s.baseDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ImageStore.IncrementSaveErrors()
		}
		return "", 0, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			FileContext(path, int64(len(data))).
			Build()
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		if s.metrics != nil {
			s.metrics.ImageStore.IncrementSaveErrors()
		}
		return "", 0, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			FileContext(path, int64(len(data))).
			Build()
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		if s.metrics != nil {
			s.metrics.ImageStore.IncrementSaveErrors()
		}
		return "", 0, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			FileContext(path, int64(len(data))).
			Build()
	}

	if s.metrics != nil {
		s.metrics.ImageStore.IncrementImagesSaved(int64(len(data)))
	}
	s.logger.Debug("image saved", "name", name, "size_bytes", len(data))

	return name, int64(len(data)), nil
}

// Resolve validates a stored file name and returns its absolute path. Names
// containing separators or parent traversal are rejected, confining access to
// the base directory.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", errors.Newf("invalid image name %q", name).
			Component("imagestore").
			Category(errors.CategoryValidation).
			Build()
	}

	path := filepath.Join(s.baseDir, name)

	// Belt and braces: verify the joined path did not escape the base.
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.Newf("image name %q escapes storage directory", name).
			Component("imagestore").
			Category(errors.CategoryValidation).
			Build()
	}

	return path, nil
}

// Stat returns file info for a stored image.
func (s *Store) Stat(name string) (os.FileInfo, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Stat(path)
}

// Remove deletes a stored image. Missing files are not an error; record
// deletion is allowed to proceed when the image is already gone.
func (s *Store) Remove(name string) error {
	path, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("name", name).
			Build()
	}
	return nil
}
