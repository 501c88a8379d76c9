package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"catalog-service/internal/model"
)

// MemoryStore is a map-backed ProductRepository with the same contract as the
// PostgreSQL store. It backs tests and lets the composition root run without a
// database.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   uint
	products map[string]*memProduct
	supplier map[uint]string
}

// memProduct keeps raw field values; reads rebuild through the validating
// constructor exactly like rows coming back from SQL.
type memProduct struct {
	id         uint
	code       string
	name       string
	netPrice   decimal.Decimal
	vatRate    decimal.Decimal
	active     bool
	supplierID *uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*memProduct),
		supplier: make(map[uint]string),
	}
}

// AddSupplier seeds a supplier row and returns its snapshot.
func (s *MemoryStore) AddSupplier(name string) (*model.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	supplier, err := model.NewSupplier(s.nextID, name)
	if err != nil {
		return nil, err
	}
	s.supplier[supplier.ID()] = supplier.Name()
	return supplier, nil
}

func (s *MemoryStore) Create(_ context.Context, p *model.Product) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[p.Code()]; exists {
		return 0, fmt.Errorf("%w: %q", ErrConflict, p.Code())
	}
	s.nextID++
	row := &memProduct{
		id:       s.nextID,
		code:     p.Code(),
		name:     p.Name(),
		netPrice: p.NetPrice(),
		vatRate:  p.VATRate(),
		active:   true,
	}
	if supplier := p.Supplier(); supplier != nil {
		if _, ok := s.supplier[supplier.ID()]; !ok {
			return 0, &PersistenceError{Op: "insert product", Err: fmt.Errorf("unknown supplier id %d", supplier.ID())}
		}
		id := supplier.ID()
		row.supplierID = &id
	}
	s.products[row.code] = row
	return row.id, nil
}

func (s *MemoryStore) FindAllActive(_ context.Context) ([]*model.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]*model.Product, 0, len(s.products))
	skipped := 0
	for _, row := range s.products {
		if !row.active {
			continue
		}
		p, err := s.rebuild(row)
		if err != nil {
			skipped++
			continue
		}
		products = append(products, p)
	}
	sortByName(products)
	return products, skipped, nil
}

func (s *MemoryStore) FindByCode(_ context.Context, code string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.products[code]
	if !ok || !row.active {
		return nil, nil
	}
	p, err := s.rebuild(row)
	if err != nil {
		return nil, &PersistenceError{Op: "rebuild product", Err: err}
	}
	return p, nil
}

func (s *MemoryStore) Search(_ context.Context, f Filter) ([]*model.Product, error) {
	if f.MaxNetPrice != nil && f.MaxNetPrice.IsNegative() {
		return nil, &model.ValidationError{Field: "max_net_price", Reason: "must not be negative"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(f.Name)
	var products []*model.Product
	for _, row := range s.products {
		if !row.active {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(row.name), needle) {
			continue
		}
		if f.MaxNetPrice != nil && row.netPrice.GreaterThan(*f.MaxNetPrice) {
			continue
		}
		p, err := s.rebuild(row)
		if err != nil {
			continue
		}
		products = append(products, p)
	}
	sortByName(products)
	return products, nil
}

func (s *MemoryStore) Update(_ context.Context, p *model.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.products[p.Code()]
	if !ok {
		return false, nil
	}
	row.name = p.Name()
	row.netPrice = p.NetPrice()
	row.vatRate = p.VATRate()
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[code]; !ok {
		return false, nil
	}
	delete(s.products, code)
	return true, nil
}

func (s *MemoryStore) ListSuppliers(_ context.Context) ([]*model.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	suppliers := make([]*model.Supplier, 0, len(s.supplier))
	for id, name := range s.supplier {
		supplier, err := model.NewSupplier(id, name)
		if err != nil {
			return nil, &PersistenceError{Op: "rebuild supplier", Err: err}
		}
		suppliers = append(suppliers, supplier)
	}
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i].Name() < suppliers[j].Name() })
	return suppliers, nil
}

func (s *MemoryStore) rebuild(row *memProduct) (*model.Product, error) {
	var supplier *model.Supplier
	if row.supplierID != nil {
		name, ok := s.supplier[*row.supplierID]
		if ok {
			var err error
			supplier, err = model.NewSupplier(*row.supplierID, name)
			if err != nil {
				return nil, err
			}
		}
	}
	return model.NewStoredProduct(row.id, row.code, row.name, row.netPrice, row.vatRate, supplier)
}

func sortByName(products []*model.Product) {
	sort.Slice(products, func(i, j int) bool { return products[i].Name() < products[j].Name() })
}
