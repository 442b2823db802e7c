package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	rows := []ExportRow{
		{Index: 1, Gross: 10, Net: 9, Tax: 1},
		{Index: 2, Gross: 40, Net: 34, Tax: 6},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := "index,gross_income,net_income,tax_paid\n1,10,9,1\n2,40,34,6\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != strings.Join(CSVHeader, ",")+"\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestExportCSVFile(t *testing.T) {
	r, err := RunSimulation(denmarkParams(9))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := ExportCSVFile(r, path); err != nil {
		t.Fatalf("ExportCSVFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 201 {
		t.Errorf("expected header + 200 rows, got %d records", len(records))
	}
	if strings.Join(records[0], ",") != "index,gross_income,net_income,tax_paid" {
		t.Errorf("header: got %v", records[0])
	}
	if records[1][0] != "1" || records[200][0] != "200" {
		t.Errorf("rows not 1-indexed: first %v last %v", records[1], records[200])
	}
}

func TestExportCSVFile_BadPath(t *testing.T) {
	r, err := RunSimulation(denmarkParams(9))
	if err != nil {
		t.Fatal(err)
	}
	if err := ExportCSVFile(r, filepath.Join(t.TempDir(), "missing", "export.csv")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
