package model

import "strings"

// Supplier is a snapshot of a supplier row (id + display name). Products hold
// a reference to one but never own or mutate supplier state.
type Supplier struct {
	id   uint
	name string
}

// NewSupplier builds a supplier snapshot, rejecting blank names.
func NewSupplier(id uint, name string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "supplier.name", Reason: "must not be empty"}
	}
	return &Supplier{id: id, name: name}, nil
}

func (s *Supplier) ID() uint {
	return s.id
}

func (s *Supplier) Name() string {
	return s.name
}
