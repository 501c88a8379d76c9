package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"catalog-service/internal/model"
)

// productRow is the GORM mapping for the products table. The active flag is
// owned by storage: inserts set it true, reads filter on it, and Delete
// removes the row outright rather than toggling it.
type productRow struct {
	ID         uint            `gorm:"primaryKey"`
	Code       string          `gorm:"column:code;type:varchar(50);uniqueIndex;not null"`
	Name       string          `gorm:"column:name;type:varchar(255);not null"`
	NetPrice   decimal.Decimal `gorm:"column:net_price;type:decimal(10,2);not null"`
	VATRate    decimal.Decimal `gorm:"column:vat_rate;type:decimal(5,2);not null"`
	GrossPrice decimal.Decimal `gorm:"column:gross_price;type:decimal(10,2);not null"`
	Active     bool            `gorm:"column:active;not null;default:true"`
	SupplierID *uint           `gorm:"column:supplier_id;index"`
	Supplier   *supplierRow    `gorm:"foreignKey:SupplierID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (productRow) TableName() string { return "products" }

type supplierRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"column:name;type:varchar(100);not null"`
}

func (supplierRow) TableName() string { return "suppliers" }

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&supplierRow{}, &productRow{}); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// Store is the PostgreSQL-backed ProductRepository.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) Create(ctx context.Context, p *model.Product) (uint, error) {
	row := rowFromProduct(p)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("%w: %q", ErrConflict, p.Code())
		}
		return 0, &PersistenceError{Op: "insert product", Err: err}
	}
	return row.ID, nil
}

func (s *Store) FindAllActive(ctx context.Context) ([]*model.Product, int, error) {
	var rows []productRow
	result := s.db.WithContext(ctx).
		Preload("Supplier").
		Where("active = ?", true).
		Order("name asc").
		Find(&rows)
	if result.Error != nil {
		return nil, 0, &PersistenceError{Op: "list products", Err: result.Error}
	}
	products, skipped := s.rebuildRows(rows)
	return products, skipped, nil
}

func (s *Store) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var row productRow
	result := s.db.WithContext(ctx).
		Preload("Supplier").
		Where("code = ? AND active = ?", code, true).
		First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, &PersistenceError{Op: "find product", Err: result.Error}
	}
	p, err := productFromRow(&row)
	if err != nil {
		// A single stored row that no longer validates is a storage
		// consistency fault, not an absence.
		return nil, &PersistenceError{Op: "rebuild product", Err: err}
	}
	return p, nil
}

func (s *Store) Search(ctx context.Context, f Filter) ([]*model.Product, error) {
	if f.MaxNetPrice != nil && f.MaxNetPrice.IsNegative() {
		return nil, &model.ValidationError{Field: "max_net_price", Reason: "must not be negative"}
	}

	query := s.db.WithContext(ctx).Preload("Supplier").Where("active = ?", true)
	if f.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.MaxNetPrice != nil {
		query = query.Where("net_price <= ?", f.MaxNetPrice)
	}

	var rows []productRow
	result := query.Order("name asc").Find(&rows)
	if result.Error != nil {
		return nil, &PersistenceError{Op: "search products", Err: result.Error}
	}
	products, _ := s.rebuildRows(rows)
	return products, nil
}

func (s *Store) Update(ctx context.Context, p *model.Product) (bool, error) {
	var matched bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&productRow{}).
			Where("code = ?", p.Code()).
			Updates(map[string]any{
				"name":        p.Name(),
				"net_price":   p.NetPrice(),
				"vat_rate":    p.VATRate(),
				"gross_price": p.GrossPrice(),
			})
		if result.Error != nil {
			return result.Error
		}
		matched = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, &PersistenceError{Op: "update product", Err: err}
	}
	return matched, nil
}

func (s *Store) Delete(ctx context.Context, code string) (bool, error) {
	var matched bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("code = ?", code).Delete(&productRow{})
		if result.Error != nil {
			return result.Error
		}
		matched = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, &PersistenceError{Op: "delete product", Err: err}
	}
	return matched, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]*model.Supplier, error) {
	var rows []supplierRow
	result := s.db.WithContext(ctx).Order("name asc").Find(&rows)
	if result.Error != nil {
		return nil, &PersistenceError{Op: "list suppliers", Err: result.Error}
	}
	suppliers := make([]*model.Supplier, 0, len(rows))
	for _, row := range rows {
		supplier, err := model.NewSupplier(row.ID, row.Name)
		if err != nil {
			return nil, &PersistenceError{Op: "rebuild supplier", Err: err}
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, nil
}

// rebuildRows reconstructs products through the validating constructor,
// skipping and logging rows that no longer satisfy the invariants.
func (s *Store) rebuildRows(rows []productRow) ([]*model.Product, int) {
	products := make([]*model.Product, 0, len(rows))
	skipped := 0
	for i := range rows {
		p, err := productFromRow(&rows[i])
		if err != nil {
			skipped++
			s.log.Warn("skipping product row that fails validation",
				zap.Uint("row_id", rows[i].ID),
				zap.String("code", rows[i].Code),
				zap.Error(err))
			continue
		}
		products = append(products, p)
	}
	return products, skipped
}

func rowFromProduct(p *model.Product) productRow {
	row := productRow{
		Code:       p.Code(),
		Name:       p.Name(),
		NetPrice:   p.NetPrice(),
		VATRate:    p.VATRate(),
		GrossPrice: p.GrossPrice(),
		Active:     true,
	}
	if supplier := p.Supplier(); supplier != nil {
		id := supplier.ID()
		row.SupplierID = &id
	}
	return row
}

func productFromRow(row *productRow) (*model.Product, error) {
	var supplier *model.Supplier
	if row.Supplier != nil {
		var err error
		supplier, err = model.NewSupplier(row.Supplier.ID, row.Supplier.Name)
		if err != nil {
			return nil, err
		}
	}
	return model.NewStoredProduct(row.ID, row.Code, row.Name, row.NetPrice, row.VATRate, supplier)
}
