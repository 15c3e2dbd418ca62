// Package blob stores receipt image files on the local filesystem,
// partitioned as images/{projectID}/{receiptID}/{filename} under a
// configured root directory.
//
// Deletes are idempotent: removing a file or folder that is already
// gone is not an error. Writes are all-or-nothing: the image is
// copied to a temporary name and renamed into place, so a reader
// never observes a partially written file.
package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gitlab.com/yelinaung/receipt-vault/internal/logger"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrBadFilename is returned for image names containing path
// separators or other path components.
var ErrBadFilename = errors.New("invalid image filename")

// imageExtensions are the file extensions recognized as images.
var imageExtensions = map[string]bool{
	".jpg": true,
	".png": true,
}

// Store is a filesystem-backed image store.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given data directory. Image
// files live under root/images.
func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// ImagesRoot returns the directory holding all image files.
func (s *Store) ImagesRoot() string {
	return filepath.Join(s.root, "images")
}

// ValidateFilename rejects names that are empty or contain path
// components.
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrBadFilename, name)
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("%w: %q", ErrBadFilename, name)
	}
	return nil
}

// IsImageFile reports whether the filename has a recognized image
// extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// receiptDir returns the folder holding a receipt's images.
func (s *Store) receiptDir(projectID, receiptID int) string {
	return filepath.Join(s.ImagesRoot(), strconv.Itoa(projectID), strconv.Itoa(receiptID))
}

// ImagePath derives the full path of a named image file.
func (s *Store) ImagePath(projectID, receiptID int, filename string) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}
	return filepath.Join(s.receiptDir(projectID, receiptID), filename), nil
}

// EnsureReceiptFolder creates the folder for a receipt's images,
// including intermediate directories. Idempotent.
func (s *Store) EnsureReceiptFolder(projectID, receiptID int) error {
	dir := s.receiptDir(projectID, receiptID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create receipt folder %s: %w", dir, err)
	}
	return nil
}

// WriteImage copies the source file into the receipt's folder under
// the given filename and returns the destination path. The source is
// never moved or modified. The copy goes through a temporary file in
// the destination directory and is renamed into place.
func (s *Store) WriteImage(sourcePath string, projectID, receiptID int, filename string) (string, error) {
	dest, err := s.ImagePath(projectID, receiptID, filename)
	if err != nil {
		return "", err
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open source image: %w", err)
	}
	defer func() { _ = src.Close() }()

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create receipt folder %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to copy image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to set image permissions: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to move image into place: %w", err)
	}

	logger.Log.Debug().
		Str("source", sourcePath).
		Str("dest", dest).
		Msg("Image written")
	return dest, nil
}

// DeleteImage removes a single image file. Succeeds if the file is
// already gone.
func (s *Store) DeleteImage(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image %s: %w", path, err)
	}
	if err == nil {
		logger.Log.Debug().Str("path", path).Msg("Image deleted")
	}
	return nil
}

// DeleteReceiptFolder removes a receipt's image folder recursively.
// Succeeds if the folder is already gone.
func (s *Store) DeleteReceiptFolder(projectID, receiptID int) error {
	return s.deleteFolder(s.receiptDir(projectID, receiptID))
}

// DeleteProjectFolder removes a project's entire image subtree.
// Succeeds if the folder is already gone.
func (s *Store) DeleteProjectFolder(projectID int) error {
	return s.deleteFolder(filepath.Join(s.ImagesRoot(), strconv.Itoa(projectID)))
}

func (s *Store) deleteFolder(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete folder %s: %w", dir, err)
	}
	logger.Log.Debug().Str("dir", dir).Msg("Folder deleted")
	return nil
}

// ListReceiptImageFiles returns the image filenames stored for a
// receipt, sorted by name. An absent folder yields an empty list.
func (s *Store) ListReceiptImageFiles(projectID, receiptID int) ([]string, error) {
	dir := s.receiptDir(projectID, receiptID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt folder %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
