// Package gallery owns the image directories: per-user scan images under
// scanned_images/ and the per-user, per-person face gallery under face_db/
// that the external matcher consumes. The matcher keeps derived index caches
// directly under face_db/<user>/; any gallery mutation deletes those caches
// so the matcher re-indexes on next use.
package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nautilus/internal/config"
)

const timestampFormat = "20060102_150405"

// Item is one gallery image to store for a person.
type Item struct {
	Data         []byte
	OriginalName string
	// Camera marks webcam captures, which use the cam_ name prefix.
	Camera bool
}

// Person describes one registered person in a user's gallery.
type Person struct {
	Name   string   `json:"name"`
	Images []string `json:"images"`
}

// Store manages scan image and face gallery directories.
type Store struct {
	cfg    *config.Storage
	logger *zap.Logger

	// writeFile is os.WriteFile, swappable in tests to force write failures.
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// NewStore creates an image store over the configured directories.
func NewStore(cfg *config.Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{cfg: cfg, logger: logger, writeFile: os.WriteFile}
}

// nameToken returns a short random token making generated file names unique
// even for saves within the same second.
func nameToken() string {
	return uuid.NewString()[:8]
}

// imageExt picks the stored extension for an uploaded file name, falling
// back to .jpg for anything unrecognized.
func (s *Store) imageExt(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if s.cfg.IsImageExtension(ext) {
		return ext
	}
	return ".jpg"
}

// SaveScanImage writes a scan image into the user's directory and returns
// the generated file name and full path.
func (s *Store) SaveScanImage(user string, data []byte, originalName string) (string, string, error) {
	if err := ValidateName(user); err != nil {
		return "", "", fmt.Errorf("user %q: %w", user, err)
	}

	userDir := filepath.Join(s.cfg.ScanImagesDir, user)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating %s: %w", userDir, err)
	}

	fileName := fmt.Sprintf("scan_%s_%s%s",
		time.Now().Format(timestampFormat), nameToken(), s.imageExt(originalName))
	path := filepath.Join(userDir, fileName)

	if err := s.writeFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", path, err)
	}
	return fileName, path, nil
}

// SaveGalleryImages stores items under face_db/<user>/<person>/ and returns
// how many were written. An empty input is not an error; the caller treats 0
// as nothing to do. The user's matcher caches are invalidated whenever at
// least one image landed on disk, even if a later item in the batch failed.
func (s *Store) SaveGalleryImages(user, person string, items []Item) (int, error) {
	if err := ValidateName(user); err != nil {
		return 0, fmt.Errorf("user %q: %w", user, err)
	}
	if err := ValidateName(person); err != nil {
		return 0, fmt.Errorf("person %q: %w", person, err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	personDir := filepath.Join(s.cfg.FaceDBDir, user, person)
	if err := os.MkdirAll(personDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", personDir, err)
	}

	saved := 0
	defer func() {
		if saved > 0 {
			s.invalidateCache(user)
		}
	}()

	ts := time.Now().Format(timestampFormat)
	for idx, item := range items {
		var fileName string
		if item.Camera {
			fileName = fmt.Sprintf("cam_%s_%s.jpg", ts, nameToken())
		} else {
			fileName = fmt.Sprintf("upload_%s_%d_%s%s", ts, idx, nameToken(), s.imageExt(item.OriginalName))
		}
		path := filepath.Join(personDir, fileName)
		if err := s.writeFile(path, item.Data, 0o644); err != nil {
			return saved, fmt.Errorf("writing %s: %w", path, err)
		}
		saved++
	}

	return saved, nil
}

// DeletePerson removes the person's whole directory subtree and the user's
// matcher caches. Deleting a person that does not exist is a no-op.
func (s *Store) DeletePerson(user, person string) error {
	if err := ValidateName(user); err != nil {
		return fmt.Errorf("user %q: %w", user, err)
	}
	if err := ValidateName(person); err != nil {
		return fmt.Errorf("person %q: %w", person, err)
	}

	personDir := filepath.Join(s.cfg.FaceDBDir, user, person)
	if err := os.RemoveAll(personDir); err != nil {
		return fmt.Errorf("removing %s: %w", personDir, err)
	}
	s.invalidateCache(user)
	return nil
}

// ListPeople returns the registered people for a user with their image file
// names, sorted by person name. A missing gallery yields an empty list.
func (s *Store) ListPeople(user string) ([]Person, error) {
	if err := ValidateName(user); err != nil {
		return nil, fmt.Errorf("user %q: %w", user, err)
	}

	userDir := filepath.Join(s.cfg.FaceDBDir, user)
	entries, err := os.ReadDir(userDir)
	if os.IsNotExist(err) {
		return []Person{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", userDir, err)
	}

	people := []Person{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		images, err := s.listImages(filepath.Join(userDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		people = append(people, Person{Name: entry.Name(), Images: images})
	}
	sort.Slice(people, func(i, j int) bool { return people[i].Name < people[j].Name })
	return people, nil
}

func (s *Store) listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	images := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if s.cfg.IsImageExtension(strings.ToLower(filepath.Ext(entry.Name()))) {
			images = append(images, entry.Name())
		}
	}
	sort.Strings(images)
	return images, nil
}

// UserGalleryDir returns the gallery root for a user, the path handed to
// the external matcher.
func (s *Store) UserGalleryDir(user string) (string, error) {
	if err := ValidateName(user); err != nil {
		return "", fmt.Errorf("user %q: %w", user, err)
	}
	return filepath.Join(s.cfg.FaceDBDir, user), nil
}

// HasGallery reports whether the user has at least one registered person.
func (s *Store) HasGallery(user string) bool {
	people, err := s.ListPeople(user)
	return err == nil && len(people) > 0
}

// invalidateCache deletes matcher index caches directly under the user's
// gallery root (not recursively). The caches are disposable, so failures
// are logged and ignored.
func (s *Store) invalidateCache(user string) {
	userDir := filepath.Join(s.cfg.FaceDBDir, user)
	entries, err := os.ReadDir(userDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !s.isCacheExtension(ext) {
			continue
		}
		path := filepath.Join(userDir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to delete matcher cache",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		s.logger.Debug("invalidated matcher cache", zap.String("path", path))
	}
}

func (s *Store) isCacheExtension(ext string) bool {
	for _, e := range s.cfg.CacheExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
