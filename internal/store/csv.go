package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mauv0809/twse-codes/internal/schema"
)

// WriteCSV writes records in the fixed column layout, short column keys as
// the header row.
func WriteCSV(w io.Writer, records []schema.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.ColumnKeys()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.Row()); err != nil {
			return fmt.Errorf("writing row %s: %w", rec.Symbol, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path, creating parent directories as needed.
// The file appears atomically: a failed write leaves no partial file behind.
func WriteCSVFile(path string, records []schema.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadCSV reads records from a CSV stream in the fixed column layout. Rows
// without a symbol are dropped; an unrecognized category is an error, not a
// silent drop.
func ReadCSV(r io.Reader) ([]schema.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(schema.ColumnKeys())

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) == 0 || header[0] != "sc" {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var records []schema.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if row[0] == "" {
			continue
		}
		rec, err := schema.RecordFromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadCSVFile reads records from a CSV file.
func ReadCSVFile(path string) ([]schema.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
