package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"catalog-service/internal/model"
)

// ErrConflict signals a write rejected by the unique product-code constraint.
var ErrConflict = errors.New("product code already exists")

// PersistenceError wraps any other storage failure so driver errors never
// cross the repository boundary.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Filter restricts a product search. Zero-value fields impose no constraint.
type Filter struct {
	// Name matches as a case-insensitive substring of the product name.
	Name string
	// MaxNetPrice caps the net price. Negative values are rejected.
	MaxNetPrice *decimal.Decimal
}

// ProductRepository is the persistence gateway for the catalog. All writes run
// inside a transaction that rolls back on failure.
type ProductRepository interface {
	// Create inserts the product and returns the storage-assigned row id.
	// Duplicate codes fail with ErrConflict and leave storage untouched.
	Create(ctx context.Context, p *model.Product) (uint, error)

	// FindAllActive returns the active products ordered by name. Rows that
	// fail reconstruction are skipped; their count is the second result.
	FindAllActive(ctx context.Context) ([]*model.Product, int, error)

	// FindByCode returns the active product with the given code, or (nil, nil)
	// when there is none.
	FindByCode(ctx context.Context, code string) (*model.Product, error)

	// Search returns the active products matching the filter, ordered by name.
	Search(ctx context.Context, f Filter) ([]*model.Product, error)

	// Update overwrites name and prices for the row matching p's code.
	// A missing row yields (false, nil), not an error.
	Update(ctx context.Context, p *model.Product) (bool, error)

	// Delete removes the row matching code. A missing row yields (false, nil).
	Delete(ctx context.Context, code string) (bool, error)

	// ListSuppliers returns every supplier ordered by name.
	ListSuppliers(ctx context.Context) ([]*model.Supplier, error)
}
