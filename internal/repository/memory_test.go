package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustProduct(t *testing.T, code, name, net, rate string, supplier *model.Supplier) *model.Product {
	t.Helper()
	p, err := model.NewProduct(code, name, dec(net), dec(rate), supplier)
	require.NoError(t, err)
	return p
}

func TestMemoryStoreCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTripKeepsAllFields", func(t *testing.T) {
		store := NewMemoryStore()
		supplier, err := store.AddSupplier("ACME Srl")
		require.NoError(t, err)

		id, err := store.Create(ctx, mustProduct(t, "LPT-001", "Laptop", "850.00", "22", supplier))
		require.NoError(t, err)
		require.NotZero(t, id)

		got, err := store.FindByCode(ctx, "LPT-001")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, id, got.ID())
		require.Equal(t, "LPT-001", got.Code())
		require.Equal(t, "Laptop", got.Name())
		require.Equal(t, "850.00", got.NetPrice().StringFixed(2))
		require.Equal(t, "22", got.VATRate().String())
		require.Equal(t, "1037.00", got.GrossPrice().StringFixed(2))
		require.Equal(t, supplier.ID(), got.Supplier().ID())
		require.Equal(t, "ACME Srl", got.Supplier().Name())
	})

	t.Run("DuplicateCodeConflictsAndLeavesStoreUnchanged", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Create(ctx, mustProduct(t, "LPT-001", "Laptop", "850.00", "22", nil))
		require.NoError(t, err)

		_, err = store.Create(ctx, mustProduct(t, "LPT-001", "Laptop Duplicate", "1.00", "22", nil))
		require.ErrorIs(t, err, ErrConflict)

		got, err := store.FindByCode(ctx, "LPT-001")
		require.NoError(t, err)
		require.Equal(t, "Laptop", got.Name())
		require.Equal(t, "850.00", got.NetPrice().StringFixed(2))
	})

	t.Run("UnknownSupplierFailsTyped", func(t *testing.T) {
		store := NewMemoryStore()
		ghost, err := model.NewSupplier(99, "Ghost Srl")
		require.NoError(t, err)
		_, err = store.Create(ctx, mustProduct(t, "LPT-001", "Laptop", "850.00", "22", ghost))
		var perr *PersistenceError
		require.ErrorAs(t, err, &perr)
	})
}

func TestMemoryStoreFindAllActive(t *testing.T) {
	ctx := context.Background()

	t.Run("OrdersByName", func(t *testing.T) {
		store := NewMemoryStore()
		for _, p := range []struct{ code, name, net string }{
			{"PHN-001", "Phone", "1000.00"},
			{"LPT-001", "Laptop", "850.00"},
			{"TBL-001", "Tablet", "600.00"},
		} {
			_, err := store.Create(ctx, mustProduct(t, p.code, p.name, p.net, "22", nil))
			require.NoError(t, err)
		}

		products, skipped, err := store.FindAllActive(ctx)
		require.NoError(t, err)
		require.Zero(t, skipped)
		require.Len(t, products, 3)
		require.Equal(t, "Laptop", products[0].Name())
		require.Equal(t, "Phone", products[1].Name())
		require.Equal(t, "Tablet", products[2].Name())
	})

	t.Run("CountsRowsThatFailReconstruction", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Create(ctx, mustProduct(t, "LPT-001", "Laptop", "850.00", "22", nil))
		require.NoError(t, err)
		_, err = store.Create(ctx, mustProduct(t, "TBL-001", "Tablet", "600.00", "22", nil))
		require.NoError(t, err)

		// Corrupt a row behind the constructor's back, as a bad migration or
		// manual SQL edit would.
		store.products["TBL-001"].name = "   "

		products, skipped, err := store.FindAllActive(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, skipped)
		require.Len(t, products, 1)
		require.Equal(t, "LPT-001", products[0].Code())
	})
}

func TestMemoryStoreFindByCode(t *testing.T) {
	ctx := context.Background()

	t.Run("AbsentCodeIsNotAnError", func(t *testing.T) {
		store := NewMemoryStore()
		got, err := store.FindByCode(ctx, "NOPE-001")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("CorruptRowSurfacesAsPersistenceError", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Create(ctx, mustProduct(t, "LPT-001", "Laptop", "850.00", "22", nil))
		require.NoError(t, err)
		store.products["LPT-001"].netPrice = dec("-1")

		_, err = store.FindByCode(ctx, "LPT-001")
		var perr *PersistenceError
		require.ErrorAs(t, err, &perr)
	})
}

func TestMemoryStoreSearch(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *MemoryStore {
		store := NewMemoryStore()
		for _, p := range []struct{ code, name, net string }{
			{"LPT-001", "Laptop", "850.00"},
			{"TBL-001", "Tablet", "600.00"},
			{"PHN-001", "Phone", "1000.00"},
		} {
			_, err := store.Create(ctx, mustProduct(t, p.code, p.name, p.net, "22", nil))
			require.NoError(t, err)
		}
		return store
	}

	t.Run("CombinesNameAndPriceFilters", func(t *testing.T) {
		store := seed(t)
		max := dec("900")
		products, err := store.Search(ctx, Filter{Name: "top", MaxNetPrice: &max})
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "Laptop", products[0].Name())
	})

	t.Run("NameMatchIsCaseInsensitive", func(t *testing.T) {
		store := seed(t)
		products, err := store.Search(ctx, Filter{Name: "LAP"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "Laptop", products[0].Name())
	})

	t.Run("AbsentFiltersReturnEverythingSorted", func(t *testing.T) {
		store := seed(t)
		products, err := store.Search(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, products, 3)
		require.Equal(t, "Laptop", products[0].Name())
		require.Equal(t, "Tablet", products[2].Name())
	})

	t.Run("PriceFilterAlone", func(t *testing.T) {
		store := seed(t)
		max := dec("600")
		products, err := store.Search(ctx, Filter{MaxNetPrice: &max})
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "Tablet", products[0].Name())
	})

	t.Run("NegativeMaxPriceIsRejected", func(t *testing.T) {
		store := seed(t)
		max := dec("-1")
		_, err := store.Search(ctx, Filter{MaxNetPrice: &max})
		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "max_net_price", verr.Field)
	})
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("OverwritesPricesAndName", func(t *testing.T) {
		store := NewMemoryStore()
		p := mustProduct(t, "LPT-001", "Laptop", "850.00", "22", nil)
		_, err := store.Create(ctx, p)
		require.NoError(t, err)

		require.NoError(t, p.SetName("Laptop X1"))
		require.NoError(t, p.SetNetPrice(dec("799.99")))
		ok, err := store.Update(ctx, p)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := store.FindByCode(ctx, "LPT-001")
		require.NoError(t, err)
		require.Equal(t, "Laptop X1", got.Name())
		require.Equal(t, "799.99", got.NetPrice().StringFixed(2))
		require.Equal(t, "975.99", got.GrossPrice().StringFixed(2))
	})

	t.Run("AbsentCodeReturnsFalseAndChangesNothing", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Create(ctx, mustProduct(t, "LPT-001", "Laptop", "850.00", "22", nil))
		require.NoError(t, err)

		ok, err := store.Update(ctx, mustProduct(t, "NOPE-001", "Nothing", "1.00", "22", nil))
		require.NoError(t, err)
		require.False(t, ok)

		got, err := store.FindByCode(ctx, "LPT-001")
		require.NoError(t, err)
		require.Equal(t, "Laptop", got.Name())
	})
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesTheRow", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Create(ctx, mustProduct(t, "LPT-001", "Laptop", "850.00", "22", nil))
		require.NoError(t, err)

		ok, err := store.Delete(ctx, "LPT-001")
		require.NoError(t, err)
		require.True(t, ok)

		got, err := store.FindByCode(ctx, "LPT-001")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("AbsentCodeReturnsFalse", func(t *testing.T) {
		store := NewMemoryStore()
		ok, err := store.Delete(ctx, "NOPE-001")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestMemoryStoreListSuppliers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, name := range []string{"Zeta Forniture", "ACME Srl", "Mondo Ufficio"} {
		_, err := store.AddSupplier(name)
		require.NoError(t, err)
	}

	suppliers, err := store.ListSuppliers(ctx)
	require.NoError(t, err)
	require.Len(t, suppliers, 3)
	require.Equal(t, "ACME Srl", suppliers[0].Name())
	require.Equal(t, "Mondo Ufficio", suppliers[1].Name())
	require.Equal(t, "Zeta Forniture", suppliers[2].Name())
}
