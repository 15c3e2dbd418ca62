// Package ledger sequences operations that span the record store and
// the blob store.
//
// No cross-store transaction exists, so each multi-step operation
// orders its writes to bound the damage of a failure in between:
// adds write the blob before the record (a failure leaves at worst an
// orphaned file, never a record pointing at nothing), while deletes
// remove blobs before records (a failure leaves a record whose
// missing file is detectable, rather than files nothing references).
package ledger

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/receipt-vault/internal/blob"
	"gitlab.com/yelinaung/receipt-vault/internal/logger"
	"gitlab.com/yelinaung/receipt-vault/internal/models"
	"gitlab.com/yelinaung/receipt-vault/internal/repository"
)

// Coordinator orchestrates multi-store operations. Each call runs to
// completion or fails; there is no persisted operation state and no
// rollback of completed steps.
type Coordinator struct {
	store   *repository.Store
	blobs   *blob.Store
	totals  *Totals
	scanner Scanner
}

// NewCoordinator creates a Coordinator over the given stores.
func NewCoordinator(store *repository.Store, blobs *blob.Store) *Coordinator {
	return &Coordinator{
		store:  store,
		blobs:  blobs,
		totals: NewTotals(store.Projects, store.Receipts),
	}
}

// Totals exposes the aggregate maintainer for pure-relational receipt
// mutations issued outside the coordinator.
func (c *Coordinator) Totals() *Totals {
	return c.totals
}

// AddImage copies the source file into the receipt's blob folder and
// records it. The record row is written last: if the blob write
// fails, no row exists; if the row insert fails, the orphaned file is
// logged and the error returned.
func (c *Coordinator) AddImage(ctx context.Context, projectID, receiptID int, sourcePath string) (*models.ReceiptImage, error) {
	receipt, err := c.store.Receipts.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt.ProjectID != projectID {
		return nil, fmt.Errorf("receipt %d does not belong to project %d: %w",
			receiptID, projectID, models.ErrValidation)
	}

	if err := c.blobs.EnsureReceiptFolder(projectID, receiptID); err != nil {
		return nil, err
	}

	filename, err := c.blobs.NextImageName(projectID, receiptID, sourcePath)
	if err != nil {
		return nil, err
	}

	dest, err := c.blobs.WriteImage(sourcePath, projectID, receiptID, filename)
	if err != nil {
		return nil, err
	}

	img, err := c.store.Images.Add(ctx, receiptID, filename)
	if err != nil {
		// The file stays behind as an orphan; wasted space, but no
		// record points at a missing file.
		logger.Log.Error().Err(err).
			Str("path", dest).
			Int("receipt_id", receiptID).
			Msg("Image file written but record insert failed")
		return nil, err
	}

	logger.Log.Info().
		Int("image_id", img.ID).
		Int("receipt_id", receiptID).
		Str("filename", filename).
		Msg("Image added")
	return img, nil
}

// DeleteImage removes an image record and then its file. A failure
// deleting the file is logged, not surfaced: the record is already
// gone and the leftover file is unreferenced.
func (c *Coordinator) DeleteImage(ctx context.Context, imageID int) error {
	img, err := c.store.Images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	receipt, err := c.store.Receipts.GetByID(ctx, img.ReceiptID)
	if err != nil {
		return err
	}

	if err := c.store.Images.Delete(ctx, imageID); err != nil {
		return err
	}

	path, err := c.blobs.ImagePath(receipt.ProjectID, img.ReceiptID, img.ImageName)
	if err == nil {
		err = c.blobs.DeleteImage(path)
	}
	if err != nil {
		logger.Log.Error().Err(err).
			Int("image_id", imageID).
			Str("image_name", img.ImageName).
			Msg("Image record deleted but file cleanup failed")
	}
	return nil
}

// DeleteReceipt removes a receipt's image folder, then the receipt
// and its image rows, then refreshes the project total.
func (c *Coordinator) DeleteReceipt(ctx context.Context, projectID, receiptID int) error {
	if err := c.blobs.DeleteReceiptFolder(projectID, receiptID); err != nil {
		return err
	}
	if err := c.store.Receipts.Delete(ctx, receiptID); err != nil {
		return err
	}
	return c.totals.RefreshProjectTotal(ctx, projectID)
}

// DeleteProject removes a project's entire image subtree, then the
// project with all its receipts and image rows.
func (c *Coordinator) DeleteProject(ctx context.Context, projectID int) error {
	if err := c.blobs.DeleteProjectFolder(projectID); err != nil {
		return err
	}
	return c.store.Projects.Delete(ctx, projectID)
}

// CreateReceipt inserts a receipt and refreshes the project total.
func (c *Coordinator) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if err := c.store.Receipts.Create(ctx, receipt); err != nil {
		return err
	}
	return c.totals.RefreshProjectTotal(ctx, receipt.ProjectID)
}

// UpdateReceipt updates a receipt and refreshes the project total.
func (c *Coordinator) UpdateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if err := c.store.Receipts.Update(ctx, receipt); err != nil {
		return err
	}
	return c.totals.RefreshProjectTotal(ctx, receipt.ProjectID)
}
