package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultVATRate is the standard Italian IVA rate, in percent.
const DefaultVATRate = 22

var oneHundred = decimal.NewFromInt(100)

// Product is the catalog entity. All fields are set through the validating
// constructor or the Set* methods, so a Product in hand always satisfies the
// pricing invariants: code and name non-blank, net price and VAT rate
// non-negative, gross price equal to net * (1 + rate/100) rounded half-up to
// two decimals.
type Product struct {
	id         uint
	code       string
	name       string
	netPrice   decimal.Decimal
	vatRate    decimal.Decimal
	grossPrice decimal.Decimal
	supplier   *Supplier
}

// NewProduct validates the inputs and builds a product with its gross price
// computed. The first violated rule wins: code, name, net price, VAT rate,
// then supplier. Nothing is observable on failure.
func NewProduct(code, name string, netPrice, vatRate decimal.Decimal, supplier *Supplier) (*Product, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, &ValidationError{Field: "code", Reason: "must not be empty"}
	}
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if netPrice.IsNegative() {
		return nil, &ValidationError{Field: "net_price", Reason: "must not be negative"}
	}
	if vatRate.IsNegative() {
		return nil, &ValidationError{Field: "vat_rate", Reason: "must not be negative"}
	}
	if supplier != nil && supplier.Name() == "" {
		return nil, &ValidationError{Field: "supplier", Reason: "must be a valid supplier reference"}
	}

	p := &Product{
		code:     code,
		name:     name,
		netPrice: roundMoney(netPrice),
		vatRate:  vatRate,
		supplier: supplier,
	}
	p.grossPrice = grossOf(p.netPrice, p.vatRate)
	return p, nil
}

// NewStoredProduct rebuilds a product from a storage row. Rows pass through
// the same validation as fresh input; storage is not trusted to bypass it.
func NewStoredProduct(id uint, code, name string, netPrice, vatRate decimal.Decimal, supplier *Supplier) (*Product, error) {
	p, err := NewProduct(code, name, netPrice, vatRate, supplier)
	if err != nil {
		return nil, err
	}
	p.id = id
	return p, nil
}

// SetNetPrice re-validates, re-rounds and recomputes the gross price. On a
// negative input the product keeps its prior state.
func (p *Product) SetNetPrice(v decimal.Decimal) error {
	if v.IsNegative() {
		return &ValidationError{Field: "net_price", Reason: "must not be negative"}
	}
	p.netPrice = roundMoney(v)
	p.grossPrice = grossOf(p.netPrice, p.vatRate)
	return nil
}

// SetVATRate re-validates and recomputes the gross price.
func (p *Product) SetVATRate(v decimal.Decimal) error {
	if v.IsNegative() {
		return &ValidationError{Field: "vat_rate", Reason: "must not be negative"}
	}
	p.vatRate = v
	p.grossPrice = grossOf(p.netPrice, p.vatRate)
	return nil
}

// SetName re-validates the trimmed name.
func (p *Product) SetName(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	p.name = v
	return nil
}

func (p *Product) ID() uint                    { return p.id }
func (p *Product) Code() string                { return p.code }
func (p *Product) Name() string                { return p.name }
func (p *Product) NetPrice() decimal.Decimal   { return p.netPrice }
func (p *Product) VATRate() decimal.Decimal    { return p.vatRate }
func (p *Product) GrossPrice() decimal.Decimal { return p.grossPrice }
func (p *Product) Supplier() *Supplier         { return p.supplier }

// roundMoney rounds to two decimals, half up. decimal.Round rounds half away
// from zero, which coincides with half-up on the non-negative amounts the
// validation admits.
func roundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

func grossOf(net, rate decimal.Decimal) decimal.Decimal {
	return roundMoney(net.Mul(decimal.NewFromInt(1).Add(rate.Div(oneHundred))))
}
