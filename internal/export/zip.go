package export

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ZipImages writes a zip archive of the entire image tree to w,
// preserving the images/{projectID}/{receiptID}/{name} layout.
// Fails if no images have ever been stored.
func (p *Projector) ZipImages(w io.Writer) error {
	root := p.blobs.ImagesRoot()
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return fmt.Errorf("images folder does not exist")
	} else if err != nil {
		return fmt.Errorf("failed to stat images folder: %w", err)
	}

	zw := zip.NewWriter(w)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(filepath.Dir(root), path)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to zip images: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize zip: %w", err)
	}
	return nil
}
