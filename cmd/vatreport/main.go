package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"catalog-service/internal/report"
)

// The historical sample basket for the IVA report.
var sampleLines = []report.Line{
	{Name: "Laptop", NetPrice: decimal.NewFromInt(1500)},
	{Name: "Smartphone", NetPrice: decimal.NewFromInt(450)},
	{Name: "Caricabatterie", NetPrice: decimal.NewFromInt(20)},
	{Name: "Cuffie", NetPrice: decimal.NewFromInt(10)},
}

func main() {
	out := flag.String("out", "report_iva.csv", "output CSV path")
	rate := flag.Float64("rate", 22, "VAT rate in percent")
	flag.Parse()

	ratePercent := decimal.NewFromFloat(*rate)
	if ratePercent.IsNegative() {
		fmt.Fprintln(os.Stderr, "the VAT rate must not be negative")
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot create report file:", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := report.WriteCSV(f, report.ComputeAll(sampleLines, ratePercent)); err != nil {
		fmt.Fprintln(os.Stderr, "cannot write report:", err)
		os.Exit(1)
	}

	fmt.Printf("VAT report saved to %s\n", *out)
}
