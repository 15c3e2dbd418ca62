// Package repository provides database access for domain entities.
//
// All mutating operations across the four repositories share a single
// write mutex, so at most one relational write is in flight at a time.
// Reads are not serialized.
package repository

import (
	"sync"

	"gitlab.com/yelinaung/receipt-vault/internal/database"
)

// Store bundles the four entity repositories over one database handle.
type Store struct {
	Projects   *ProjectRepository
	Categories *CategoryRepository
	Receipts   *ReceiptRepository
	Images     *ReceiptImageRepository
}

// New creates a Store with all repositories sharing the write mutex.
func New(db database.PGXDB) *Store {
	mu := &sync.Mutex{}
	return &Store{
		Projects:   NewProjectRepository(db, mu),
		Categories: NewCategoryRepository(db, mu),
		Receipts:   NewReceiptRepository(db, mu),
		Images:     NewReceiptImageRepository(db, mu),
	}
}
