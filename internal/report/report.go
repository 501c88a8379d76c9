// Package report produces the IVA (VAT) breakdown report as a
// semicolon-delimited CSV, one row per priced item.
package report

import (
	"encoding/csv"
	"io"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Line is one priced input item.
type Line struct {
	Name     string
	NetPrice decimal.Decimal
}

// Entry is a computed report row.
type Entry struct {
	Name  string
	Net   decimal.Decimal
	VAT   decimal.Decimal
	Gross decimal.Decimal
	// Rate is the applied rate as a fraction (0.22 for 22%).
	Rate decimal.Decimal
}

// Compute applies the VAT rate (in percent) to a line, rounding the tax and
// the gross amount half-up to two decimals.
func Compute(l Line, ratePercent decimal.Decimal) Entry {
	net := l.NetPrice.Round(2)
	fraction := ratePercent.Div(oneHundred)
	vat := net.Mul(fraction).Round(2)
	return Entry{
		Name:  l.Name,
		Net:   net,
		VAT:   vat,
		Gross: net.Add(vat),
		Rate:  fraction,
	}
}

// ComputeAll applies Compute to every line.
func ComputeAll(lines []Line, ratePercent decimal.Decimal) []Entry {
	entries := make([]Entry, 0, len(lines))
	for _, l := range lines {
		entries = append(entries, Compute(l, ratePercent))
	}
	return entries
}

// WriteCSV writes the report with the historical layout: semicolon delimiter,
// header row, amounts with two decimals, rate as a fraction.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write([]string{"Nome Prodotto", "Prezzo Base", "IVA Calcolata", "Prezzo Finale", "Aliquota"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.Name,
			e.Net.StringFixed(2),
			e.VAT.StringFixed(2),
			e.Gross.StringFixed(2),
			e.Rate.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
