package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"inventory-reconciler/core/reconcile"
)

// CSVHeader is the header row of every CSV report.
var CSVHeader = []string{"ComputerName", "MissingFrom"}

// WriteCSV writes the rows of result, header first.
func WriteCSV(w io.Writer, result *reconcile.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, row := range result.Rows() {
		if err := cw.Write([]string{row.ComputerName, row.MissingFrom}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCSV returns the CSV report of result.
func EncodeCSV(result *reconcile.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CSVSink writes the report to a file. The file is replaced atomically.
type CSVSink struct {
	Path string
}

// NewCSVSink creates a sink writing to path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

// Write implements Sink.
func (s *CSVSink) Write(_ context.Context, result *reconcile.Result) error {
	data, err := EncodeCSV(result)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".report-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to move report to %s: %w", s.Path, err)
	}
	return nil
}
