package producer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/torosent/sortbench/internal/batch"
	"github.com/torosent/sortbench/internal/supplier"
)

// CSVOptions configure how a CSV fixture is read.
type CSVOptions struct {
	Header bool // first record holds column names
	Comma  rune // field delimiter, ',' when zero
}

// CSVSupplier streams rows from a CSV file. It reads one record ahead so the
// call that delivers the final row can report eos.
type CSVSupplier struct {
	file    *os.File
	reader  *csv.Reader
	columns []string
	width   int
	pending []string
	line    int // data rows read, header excluded
	done    bool
	closed  bool
}

// NewCSV opens path and positions the supplier at the first data record.
func NewCSV(path string, opt CSVOptions) (*CSVSupplier, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false
	if opt.Comma != 0 {
		reader.Comma = opt.Comma
	}

	s := &CSVSupplier{file: file, reader: reader}

	if opt.Header {
		header, err := s.read()
		if errors.Is(err, io.EOF) {
			file.Close()
			return nil, fmt.Errorf("CSV file is empty")
		}
		if err != nil {
			file.Close()
			return nil, err
		}
		s.columns = header
		s.width = len(header)
	}

	if err := s.advance(); err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

// read returns the next raw record.
func (s *CSVSupplier) read() ([]string, error) {
	record, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return record, nil
}

// advance loads the lookahead record, leaving pending nil at end of file.
func (s *CSVSupplier) advance() error {
	record, err := s.read()
	if errors.Is(err, io.EOF) {
		s.pending = nil
		return nil
	}
	if err != nil {
		return err
	}
	s.line++
	if s.width == 0 {
		s.width = len(record)
	}
	if len(record) != s.width {
		return fmt.Errorf("row %d has %d fields, expected %d", s.line, len(record), s.width)
	}
	s.pending = record
	return nil
}

// Next fills b from the file. Read and parse failures are returned as-is.
func (s *CSVSupplier) Next(ctx context.Context, b *batch.Batch) (bool, error) {
	if s.closed {
		return false, supplier.ErrClosed
	}
	if s.done {
		return true, supplier.ErrCallAfterEOS
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	b.Reset()
	for !b.Full() && s.pending != nil {
		b.Append(recordToRow(s.pending))
		if err := s.advance(); err != nil {
			return false, err
		}
	}
	s.done = s.pending == nil
	return s.done, nil
}

// Columns returns the header names, or nil when the file has no header.
func (s *CSVSupplier) Columns() []string {
	return s.columns
}

// Close closes the underlying file.
func (s *CSVSupplier) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

func recordToRow(record []string) batch.Row {
	row := make(batch.Row, len(record))
	for i, field := range record {
		row[i] = inferValue(field)
	}
	return row
}

// inferValue converts a text field to the narrowest matching value type.
func inferValue(field string) any {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	if i, err := strconv.ParseInt(field, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return f
	}
	switch strings.ToLower(field) {
	case "true":
		return true
	case "false":
		return false
	}
	return field
}
