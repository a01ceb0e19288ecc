package handlers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore persists uploaded PDFs to disk. Stored names carry a random
// prefix so two uploads of "report.pdf" never clobber each other.
type FileStore struct {
	uploadDir string
}

func NewFileStore(uploadDir string) (*FileStore, error) {
	if err := os.MkdirAll(uploadDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileStore{uploadDir: uploadDir}, nil
}

// Save writes the uploaded file and returns the path it was stored under.
func (s *FileStore) Save(filename string, src io.Reader) (string, error) {
	if err := ValidatePdfFilename(filename); err != nil {
		return "", err
	}

	storedName := uuid.NewString() + "_" + filepath.Base(filename)
	target := filepath.Join(s.uploadDir, storedName)

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return target, nil
}
