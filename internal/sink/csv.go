package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"energy_tracker/internal/reconcile"
)

// CSVSink writes the wide table to a local file. The file is written to a
// temp path and renamed into place so a failed run never leaves a truncated
// artifact behind.
type CSVSink struct {
	Path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

func (s *CSVSink) Name() string {
	return "csv:" + s.Path
}

func (s *CSVSink) Write(table *reconcile.Table) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Header()); err != nil {
		tmp.Close()
		return err
	}

	for i := range table.Rows {
		if err := w.Write(formatRow(table, &table.Rows[i])); err != nil {
			tmp.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.Path)
}

// formatRow renders one row in header order. Nil metric columns become empty
// cells; derived columns always carry two decimals.
func formatRow(table *reconcile.Table, row *reconcile.WideRow) []string {
	fields := make([]string, 0, len(table.Metrics)+5)
	fields = append(fields, row.Timestamp.UTC().Format(time.RFC3339))
	for _, m := range table.Metrics {
		if v := row.Values[m.Name]; v != nil {
			fields = append(fields, strconv.FormatFloat(*v, 'f', -1, 64))
		} else {
			fields = append(fields, "")
		}
	}
	return append(fields,
		strconv.FormatFloat(row.TotalRenewable, 'f', 2, 64),
		strconv.FormatFloat(row.TotalFossil, 'f', 2, 64),
		strconv.FormatFloat(row.RenewablePercent, 'f', 2, 64),
		strconv.FormatFloat(row.FossilPercent, 'f', 2, 64),
	)
}
