package blob

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// imageNamePattern matches generated image filenames:
// receipt_{projectID}_{receiptID}_{seq}{ext}.
var imageNamePattern = regexp.MustCompile(`^receipt_(\d+)_(\d+)_(\d+)\.(jpg|png)$`)

// ImageFilename builds the filename for the given per-receipt
// sequence number. ext must include the leading dot.
func ImageFilename(projectID, receiptID, seq int, ext string) string {
	return fmt.Sprintf("receipt_%d_%d_%d%s", projectID, receiptID, seq, strings.ToLower(ext))
}

// NextImageName returns a collision-free filename for a new image of
// the receipt, continuing the receipt's sequence past any name
// already on disk. ext defaults to .jpg when the source extension is
// not a recognized image type.
func (s *Store) NextImageName(projectID, receiptID int, sourcePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(sourcePath))
	if !imageExtensions[ext] {
		ext = ".jpg"
	}

	existing, err := s.ListReceiptImageFiles(projectID, receiptID)
	if err != nil {
		return "", err
	}

	maxSeq := 0
	for _, name := range existing {
		m := imageNamePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if seq, err := strconv.Atoi(m[3]); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}

	return ImageFilename(projectID, receiptID, maxSeq+1, ext), nil
}
