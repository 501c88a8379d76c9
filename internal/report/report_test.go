package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	t.Run("StandardRate", func(t *testing.T) {
		e := Compute(Line{Name: "Laptop", NetPrice: dec("1500.00")}, dec("22"))
		require.Equal(t, "330.00", e.VAT.StringFixed(2))
		require.Equal(t, "1830.00", e.Gross.StringFixed(2))
		require.Equal(t, "0.22", e.Rate.String())
	})

	t.Run("RoundsTaxHalfUp", func(t *testing.T) {
		// 10.25 * 0.22 = 2.255 -> 2.26
		e := Compute(Line{Name: "Cable", NetPrice: dec("10.25")}, dec("22"))
		require.Equal(t, "2.26", e.VAT.StringFixed(2))
		require.Equal(t, "12.51", e.Gross.StringFixed(2))
	})

	t.Run("ZeroRate", func(t *testing.T) {
		e := Compute(Line{Name: "License", NetPrice: dec("1200.00")}, dec("0"))
		require.Equal(t, "0.00", e.VAT.StringFixed(2))
		require.Equal(t, "1200.00", e.Gross.StringFixed(2))
	})
}

func TestWriteCSV(t *testing.T) {
	lines := []Line{
		{Name: "Laptop", NetPrice: dec("1500.00")},
		{Name: "Smartphone", NetPrice: dec("450.00")},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ComputeAll(lines, dec("22"))))

	want := "Nome Prodotto;Prezzo Base;IVA Calcolata;Prezzo Finale;Aliquota\n" +
		"Laptop;1500.00;330.00;1830.00;0.22\n" +
		"Smartphone;450.00;99.00;549.00;0.22\n"
	require.Equal(t, want, buf.String())
}
