// Package fileio reads uploaded spreadsheets into raw tables.
//
// CSV files may use a comma or a semicolon as separator and may start with a
// UTF-8 byte order mark. XLSX files are read from their first sheet; cells
// formatted as dates are rendered as ISO dates so they parse the same way
// regardless of the workbook locale.
package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jakechorley/rodizio/pkg/table"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrEmptyFile is returned when a file has no header row
var ErrEmptyFile = errors.New("file has no header row")

// ReadFile reads a .csv or .xlsx file from disk
func ReadFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, filepath.Base(path))
}

// Read parses r as the format implied by name's extension
func Read(r io.Reader, name string) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return readCSV(r, name)
	case ".xlsx", ".xlsm":
		return readXLSX(r, name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(r io.Reader, name string) (*table.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	firstLine, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	cr := csv.NewReader(br)
	cr.Comma = detectSeparator(firstLine)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return fromRows(name, records)
}

// detectSeparator picks the more frequent of ';' and ',' on the header line
func detectSeparator(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

func readXLSX(r io.Reader, name string) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrEmptyFile, name)
	}
	sheet := sheets[0]

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, name, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, name, err)
	}

	for i, row := range formatted {
		if i >= len(raw) {
			break
		}
		for j, cell := range row {
			if j >= len(raw[i]) {
				break
			}
			if iso, ok := dateCell(cell, raw[i][j]); ok {
				row[j] = iso
			}
		}
	}

	return fromRows(name, formatted)
}

// dateCell converts a date-formatted cell to ISO text using its raw serial value
func dateCell(formatted, raw string) (string, bool) {
	if formatted == raw || !strings.ContainsAny(formatted, "/-") {
		return "", false
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial <= 0 {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return "", false
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02"), true
	}
	return t.Format("2006-01-02 15:04:05"), true
}

// fromRows turns the first row into the header and the rest into data,
// dropping fully blank rows
func fromRows(name string, rows [][]string) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	t := table.New(name, header...)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		t.Append(row...)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
