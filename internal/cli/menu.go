// Package cli implements the interactive product-catalog menu. It exercises
// the same repository as the REST API, one prompt-driven operation at a time.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"catalog-service/internal/model"
	"catalog-service/internal/repository"
)

// Menu is the interactive loop over an injected repository.
type Menu struct {
	repo repository.ProductRepository
	in   *bufio.Scanner
	out  io.Writer
}

func New(repo repository.ProductRepository, in io.Reader, out io.Writer) *Menu {
	return &Menu{repo: repo, in: bufio.NewScanner(in), out: out}
}

// Run loops until the user picks exit or input ends.
func (m *Menu) Run(ctx context.Context) {
	for {
		m.printMenu()
		choice, ok := m.prompt("Select an option (0-6): ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			m.listProducts(ctx)
		case "2":
			m.createProduct(ctx)
		case "3":
			m.updateProduct(ctx)
		case "4":
			m.deleteProduct(ctx)
		case "5":
			m.searchProducts(ctx)
		case "6":
			m.listSuppliers(ctx)
		case "0":
			fmt.Fprintln(m.out, "Goodbye.")
			return
		default:
			fmt.Fprintln(m.out, "Unknown option, try again.")
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, strings.Repeat("=", 40))
	fmt.Fprintln(m.out, "        PRODUCT CATALOG MENU")
	fmt.Fprintln(m.out, strings.Repeat("=", 40))
	fmt.Fprintln(m.out, "1. List all products")
	fmt.Fprintln(m.out, "2. Add a new product (CREATE)")
	fmt.Fprintln(m.out, "3. Update a product (UPDATE)")
	fmt.Fprintln(m.out, "4. Delete a product (DELETE)")
	fmt.Fprintln(m.out, "5. Filtered search")
	fmt.Fprintln(m.out, "6. List suppliers")
	fmt.Fprintln(m.out, "0. Exit")
	fmt.Fprintln(m.out, strings.Repeat("=", 40))
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) listProducts(ctx context.Context) {
	products, skipped, err := m.repo.FindAllActive(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "Could not list products: %v\n", err)
		return
	}
	if skipped > 0 {
		fmt.Fprintf(m.out, "Warning: %d stored row(s) were skipped because they no longer validate.\n", skipped)
	}
	m.printProducts(products)
}

func (m *Menu) printProducts(products []*model.Product) {
	if len(products) == 0 {
		fmt.Fprintln(m.out, "No products found.")
		return
	}
	fmt.Fprintf(m.out, "\n%-12s %-30s %10s %10s %6s  %s\n", "Code", "Name", "Net", "Gross", "VAT%", "Supplier")
	fmt.Fprintln(m.out, strings.Repeat("-", 80))
	for _, p := range products {
		supplier := "-"
		if s := p.Supplier(); s != nil {
			supplier = s.Name()
		}
		fmt.Fprintf(m.out, "%-12s %-30s %10s %10s %6s  %s\n",
			p.Code(), p.Name(),
			p.NetPrice().StringFixed(2), p.GrossPrice().StringFixed(2),
			p.VATRate().StringFixed(0), supplier)
	}
	fmt.Fprintln(m.out, strings.Repeat("-", 80))
}

func (m *Menu) createProduct(ctx context.Context) {
	fmt.Fprintln(m.out, "\n--- NEW PRODUCT ---")
	code, ok := m.prompt("Product code: ")
	if !ok {
		return
	}
	name, ok := m.prompt("Product name: ")
	if !ok {
		return
	}
	netRaw, ok := m.prompt("Net price: ")
	if !ok {
		return
	}
	rateRaw, ok := m.prompt(fmt.Sprintf("VAT rate %% [enter for %d]: ", model.DefaultVATRate))
	if !ok {
		return
	}

	net, err := decimal.NewFromString(netRaw)
	if err != nil {
		fmt.Fprintln(m.out, "Input error: the net price must be a number.")
		return
	}
	rate := decimal.NewFromInt(model.DefaultVATRate)
	if rateRaw != "" {
		rate, err = decimal.NewFromString(rateRaw)
		if err != nil {
			fmt.Fprintln(m.out, "Input error: the VAT rate must be a number.")
			return
		}
	}

	product, err := model.NewProduct(code, name, net, rate, nil)
	if err != nil {
		fmt.Fprintf(m.out, "Operation failed: %v\n", err)
		return
	}

	fmt.Fprintf(m.out, "Ready to save: net %s, gross %s\n",
		product.NetPrice().StringFixed(2), product.GrossPrice().StringFixed(2))

	id, err := m.repo.Create(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			fmt.Fprintf(m.out, "Operation failed: a product with code %q already exists.\n", product.Code())
			return
		}
		fmt.Fprintf(m.out, "Operation failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Product %q saved with id %d.\n", product.Code(), id)
}

func (m *Menu) updateProduct(ctx context.Context) {
	fmt.Fprintln(m.out, "\n--- UPDATE PRODUCT ---")
	code, ok := m.prompt("Code of the product to update: ")
	if !ok {
		return
	}

	product, err := m.repo.FindByCode(ctx, code)
	if err != nil {
		fmt.Fprintf(m.out, "Operation failed: %v\n", err)
		return
	}
	if product == nil {
		fmt.Fprintf(m.out, "No product with code %q.\n", code)
		return
	}

	fmt.Fprintf(m.out, "Current name: %s, net price: %s, VAT: %s%%\n",
		product.Name(), product.NetPrice().StringFixed(2), product.VATRate().StringFixed(0))

	// Blank input keeps the current value.
	name, ok := m.prompt("New name [enter to keep]: ")
	if !ok {
		return
	}
	netRaw, ok := m.prompt("New net price [enter to keep]: ")
	if !ok {
		return
	}

	if name != "" {
		if err := product.SetName(name); err != nil {
			fmt.Fprintf(m.out, "Operation failed: %v\n", err)
			return
		}
	}
	if netRaw != "" {
		net, err := decimal.NewFromString(netRaw)
		if err != nil {
			fmt.Fprintln(m.out, "Input error: the net price must be a number.")
			return
		}
		if err := product.SetNetPrice(net); err != nil {
			fmt.Fprintf(m.out, "Operation failed: %v\n", err)
			return
		}
	}

	updated, err := m.repo.Update(ctx, product)
	if err != nil {
		fmt.Fprintf(m.out, "Operation failed: %v\n", err)
		return
	}
	if !updated {
		fmt.Fprintf(m.out, "No product with code %q.\n", code)
		return
	}
	fmt.Fprintf(m.out, "Updated: net %s, gross %s.\n",
		product.NetPrice().StringFixed(2), product.GrossPrice().StringFixed(2))
}

func (m *Menu) deleteProduct(ctx context.Context) {
	fmt.Fprintln(m.out, "\n--- DELETE PRODUCT ---")
	code, ok := m.prompt("Code of the product to delete: ")
	if !ok {
		return
	}

	product, err := m.repo.FindByCode(ctx, code)
	if err != nil {
		fmt.Fprintf(m.out, "Operation failed: %v\n", err)
		return
	}
	if product == nil {
		fmt.Fprintf(m.out, "No product with code %q.\n", code)
		return
	}

	fmt.Fprintf(m.out, "About to delete: %s (code %s)\n", product.Name(), product.Code())
	confirm, ok := m.prompt("Are you sure? (y/N): ")
	if !ok {
		return
	}
	if !strings.EqualFold(confirm, "y") {
		fmt.Fprintln(m.out, "Cancelled.")
		return
	}

	deleted, err := m.repo.Delete(ctx, code)
	if err != nil {
		fmt.Fprintf(m.out, "Operation failed: %v\n", err)
		return
	}
	if !deleted {
		fmt.Fprintf(m.out, "No product with code %q.\n", code)
		return
	}
	fmt.Fprintf(m.out, "Product %q deleted.\n", code)
}

func (m *Menu) searchProducts(ctx context.Context) {
	fmt.Fprintln(m.out, "\n--- FILTERED SEARCH ---")
	name, ok := m.prompt("Filter by name (keyword, enter to skip): ")
	if !ok {
		return
	}
	maxRaw, ok := m.prompt("Maximum net price (enter to skip): ")
	if !ok {
		return
	}

	filter := repository.Filter{Name: name}
	if maxRaw != "" {
		max, err := decimal.NewFromString(maxRaw)
		if err != nil {
			fmt.Fprintln(m.out, "Input error: the maximum price must be a number.")
			return
		}
		filter.MaxNetPrice = &max
	}

	products, err := m.repo.Search(ctx, filter)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(m.out, "Input error: %v\n", verr)
			return
		}
		fmt.Fprintf(m.out, "Search failed: %v\n", err)
		return
	}
	m.printProducts(products)
}

func (m *Menu) listSuppliers(ctx context.Context) {
	suppliers, err := m.repo.ListSuppliers(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "Could not list suppliers: %v\n", err)
		return
	}
	if len(suppliers) == 0 {
		fmt.Fprintln(m.out, "No suppliers found.")
		return
	}
	fmt.Fprintf(m.out, "\n%-6s %s\n", "ID", "Name")
	fmt.Fprintln(m.out, strings.Repeat("-", 30))
	for _, s := range suppliers {
		fmt.Fprintf(m.out, "%-6d %s\n", s.ID(), s.Name())
	}
}
