package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// CSVHeader is the first line of every per-individual export
var CSVHeader = []string{"index", "gross_income", "net_income", "tax_paid"}

// WriteCSV writes one row per individual after the header
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Index),
			strconv.Itoa(row.Gross),
			strconv.Itoa(row.Net),
			strconv.Itoa(row.Tax),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSVFile writes a run's per-individual results to filename
func ExportCSVFile(r *Results, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	defer f.Close()

	if err := WriteCSV(f, ExportRows(r)); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return f.Close()
}
