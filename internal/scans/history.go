// Package scans persists the per-user scan history as a JSON array in
// scans.json. Field names in the persisted records are display labels and
// must stay exactly as they are for compatibility with existing files.
package scans

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"nautilus/internal/store"
)

const (
	// StatusAnalysed is the status label every saved scan carries.
	StatusAnalysed = "Analysed"

	// NoFaceDetected is the emotion summary stored when analysis found no
	// faces in the saved image.
	NoFaceDetected = "No face detected"

	dateFormat = "2006-01-02 15:04"
)

// Record describes one saved analysis event and its stored image.
type Record struct {
	Date     string `json:"Date"`
	User     string `json:"User"`
	Emotion  string `json:"Emotion"`
	Status   string `json:"Status"`
	FileName string `json:"File Name"`
	FilePath string `json:"File Path"`
}

// NewRecord builds a record for a scan saved now. An empty emotion summary
// is stored as the no-face sentinel.
func NewRecord(user, emotionSummary, fileName, filePath string) Record {
	if emotionSummary == "" {
		emotionSummary = NoFaceDetected
	}
	return Record{
		Date:     time.Now().Format(dateFormat),
		User:     user,
		Emotion:  emotionSummary,
		Status:   StatusAnalysed,
		FileName: fileName,
		FilePath: filePath,
	}
}

// History is the ordered scan record store, oldest first.
type History struct {
	file   *store.File[[]Record]
	logger *zap.Logger
}

// NewHistory creates a history backed by path.
func NewHistory(path string, logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{
		file:   store.New(path, func() []Record { return []Record{} }, logger),
		logger: logger,
	}
}

// Append adds a record to the end of the history.
func (h *History) Append(rec Record) error {
	_, err := h.file.Update(func(records []Record) ([]Record, error) {
		return append(records, rec), nil
	})
	if err != nil {
		return fmt.Errorf("appending scan record: %w", err)
	}
	return nil
}

// All returns the full history in insertion order.
func (h *History) All() ([]Record, error) {
	records, err := h.file.Load()
	if err != nil {
		return nil, fmt.Errorf("loading scans: %w", err)
	}
	return records, nil
}

// ListByUser returns the records owned by user, in insertion order.
func (h *History) ListByUser(user string) ([]Record, error) {
	records, err := h.file.Load()
	if err != nil {
		return nil, fmt.Errorf("loading scans: %w", err)
	}
	var out []Record
	for _, rec := range records {
		if rec.User == user {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Find returns the first record whose file name matches, or false.
func (h *History) Find(fileName string) (Record, bool, error) {
	records, err := h.file.Load()
	if err != nil {
		return Record{}, false, fmt.Errorf("loading scans: %w", err)
	}
	for _, rec := range records {
		if rec.FileName == fileName {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}

// Delete removes the first record whose file name matches and deletes the
// referenced image file. A missing image file is logged and the record is
// removed anyway; the delete is best-effort, not transactional. Returns
// false when no record matches.
func (h *History) Delete(fileName string) (bool, error) {
	found := false
	_, err := h.file.Update(func(records []Record) ([]Record, error) {
		for i, rec := range records {
			if rec.FileName != fileName {
				continue
			}
			found = true
			h.removeImage(rec)
			return append(records[:i], records[i+1:]...), nil
		}
		return records, nil
	})
	if err != nil {
		return false, fmt.Errorf("deleting scan record: %w", err)
	}
	return found, nil
}

func (h *History) removeImage(rec Record) {
	if rec.FilePath == "" {
		return
	}
	switch err := os.Remove(rec.FilePath); {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		h.logger.Warn("scan image already missing",
			zap.String("file_name", rec.FileName),
			zap.String("file_path", rec.FilePath))
	default:
		h.logger.Warn("failed to delete scan image",
			zap.String("file_name", rec.FileName),
			zap.String("file_path", rec.FilePath),
			zap.Error(err))
	}
}
