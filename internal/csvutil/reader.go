// Package csvutil provides the CSV reading conventions shared by the
// import and enrich commands.
package csvutil

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is a single data row of a CSV file.
type Row struct {
	// Number is the 1-based position among data rows; the header row
	// is not counted.
	Number int
	Fields []string
}

// Get returns the field at index i, or an empty string when the row is
// shorter than the header or i is negative (unresolved column).
func (r Row) Get(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Reader streams data rows from a CSV file. It tolerates a UTF-8 byte
// order mark and ragged rows whose field count differs from the
// header, matching the loosely formatted exports it is fed.
type Reader struct {
	file   *os.File
	csv    *csv.Reader
	header []string
	row    int
}

// Open opens the CSV file and reads its header row. A missing,
// unreadable, or empty file is an error; these abort a run before any
// row processing starts.
func Open(filename string) (*Reader, error) {
	csvFile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	// File existence check
	if fi, err := csvFile.Stat(); err != nil || fi.Size() == 0 {
		_ = csvFile.Close()
		return nil, fmt.Errorf("CSV file is empty or cannot be read")
	}

	buffered := bufio.NewReader(csvFile)
	if lead, err := buffered.Peek(len(utf8BOM)); err == nil && bytes.Equal(lead, utf8BOM) {
		_, _ = buffered.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		_ = csvFile.Close()
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	return &Reader{file: csvFile, csv: reader, header: header}, nil
}

// Header returns the header row as read from the file.
func (r *Reader) Header() []string {
	return r.header
}

// Read returns the next data row, or io.EOF after the last one. A
// malformed row is returned as an error carrying its row number; the
// reader stays usable for the rows that follow.
func (r *Reader) Read() (Row, error) {
	fields, err := r.csv.Read()
	if err == io.EOF {
		return Row{}, io.EOF
	}

	r.row++
	if err != nil {
		return Row{Number: r.row}, fmt.Errorf("row %d: %w", r.row, err)
	}

	return Row{Number: r.row, Fields: fields}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
