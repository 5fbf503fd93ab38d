// Package output writes assembled records to their delivery formats.
package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/willfineberg/chi-tif-parser/internal/dar"
)

// WriteCSV writes records to path in the contract column order,
// truncating anything already there. The header row is always first.
func WriteCSV(path string, records []*dar.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := writeRows(f, records, true); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// AppendCSV appends records to path, creating it with a header first
// when absent. Incremental runs build one cumulative file this way.
func AppendCSV(path string, records []*dar.Record) error {
	header := false
	if fi, err := os.Stat(path); os.IsNotExist(err) || (err == nil && fi.Size() == 0) {
		header = true
	} else if err != nil {
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := writeRows(f, records, header); err != nil {
		return fmt.Errorf("appending %s: %w", path, err)
	}
	return f.Close()
}

func writeRows(f *os.File, records []*dar.Record, header bool) error {
	w := csv.NewWriter(f)
	if header {
		if err := w.Write(dar.FieldNames()); err != nil {
			return err
		}
	}
	for _, rec := range records {
		if err := w.Write(rec.CSVRow()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
