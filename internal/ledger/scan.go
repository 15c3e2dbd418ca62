package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/yelinaung/receipt-vault/internal/scan"
)

// Scanner extracts a receipt suggestion from image bytes. Satisfied
// by *scan.Client.
type Scanner interface {
	ScanReceipt(ctx context.Context, imageBytes []byte, mimeType string) (*scan.Suggestion, error)
}

// SetScanner enables receipt scanning. Without one, ScanReceiptImage
// fails.
func (c *Coordinator) SetScanner(scanner Scanner) {
	c.scanner = scanner
}

// ScanReceiptImage runs the scanner over a stored receipt image and
// returns the extracted suggestion. Read-only: it touches neither
// store.
func (c *Coordinator) ScanReceiptImage(ctx context.Context, imageID int) (*scan.Suggestion, error) {
	if c.scanner == nil {
		return nil, fmt.Errorf("receipt scanner is not configured")
	}

	img, err := c.store.Images.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	receipt, err := c.store.Receipts.GetByID(ctx, img.ReceiptID)
	if err != nil {
		return nil, err
	}

	path, err := c.blobs.ImagePath(receipt.ProjectID, img.ReceiptID, img.ImageName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	mimeType := "image/jpeg"
	if strings.ToLower(filepath.Ext(img.ImageName)) == ".png" {
		mimeType = "image/png"
	}

	return c.scanner.ScanReceipt(ctx, data, mimeType)
}
