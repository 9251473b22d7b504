// Package ingest loads the OBA export and the ground truth spreadsheet into
// raw tables and enforces their schema contracts before any processing.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/banshee-data/gtmerge/internal/fsutil"
	"github.com/banshee-data/gtmerge/internal/trip"
)

var (
	// ErrInputMissing reports an input path that does not name a readable file.
	ErrInputMissing = errors.New("input file missing")
	// ErrInputMalformed reports an input that cannot be read as a table or
	// lacks required columns.
	ErrInputMalformed = errors.New("input file malformed")
)

const utf8BOM = "\ufeff"

// CheckInputs verifies every path names an existing regular file.
func CheckInputs(fsys fsutil.FileSystem, paths ...string) error {
	for _, p := range paths {
		if p == "" || !fsutil.IsRegularFile(fsys, p) {
			return fmt.Errorf("%w: %q", ErrInputMissing, p)
		}
	}
	return nil
}

// ReadOBAFile reads the OBA travel behavior CSV export.
func ReadOBAFile(fsys fsutil.FileSystem, path string) (trip.Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return trip.Table{}, fmt.Errorf("%w: %v", ErrInputMissing, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return trip.Table{}, fmt.Errorf("%w: reading %s: %v", ErrInputMalformed, path, err)
	}
	return tableFromRecords(records), nil
}

// ReadGTFile reads the first sheet of the ground truth workbook. Cells are
// read raw, so dates and times arrive as spreadsheet serial numbers unless
// they were entered as text.
func ReadGTFile(fsys fsutil.FileSystem, path string) (trip.Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return trip.Table{}, fmt.Errorf("%w: %v", ErrInputMissing, err)
	}
	defer f.Close()

	return readWorkbook(f, path)
}

func readWorkbook(r io.Reader, path string) (trip.Table, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return trip.Table{}, fmt.Errorf("%w: opening %s: %v", ErrInputMalformed, path, err)
	}
	defer xl.Close()

	sheets := xl.GetSheetList()
	if len(sheets) == 0 {
		return trip.Table{}, fmt.Errorf("%w: %s has no sheets", ErrInputMalformed, path)
	}
	rows, err := xl.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return trip.Table{}, fmt.Errorf("%w: reading sheet %q of %s: %v", ErrInputMalformed, sheets[0], path, err)
	}
	return tableFromRecords(rows), nil
}

// tableFromRecords splits off the header and drops blank trailing rows.
func tableFromRecords(records [][]string) trip.Table {
	if len(records) == 0 {
		return trip.Table{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
	}

	rows := records[1:]
	for len(rows) > 0 && blankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return trip.Table{Header: header, Rows: rows}
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ValidateSchema checks t against the required columns of the named input.
func ValidateSchema(name string, t trip.Table, required []string) error {
	if err := t.Validate(required); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInputMalformed, name, err)
	}
	return nil
}

// ReadDeviceList reads a whitelist of device ids separated by commas or
// newlines. Blank entries are ignored and order is preserved.
func ReadDeviceList(fsys fsutil.FileSystem, path string) ([]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputMissing, err)
	}
	fields := strings.FieldsFunc(string(data), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	var out []string
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		id := strings.TrimSpace(f)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: device list %s is empty", ErrInputMalformed, path)
	}
	return out, nil
}

// DeviceSet converts a device list to the lookup form used by the OBA
// normalizer. A nil list means no restriction.
func DeviceSet(devices []string) map[string]struct{} {
	if devices == nil {
		return nil
	}
	set := make(map[string]struct{}, len(devices))
	for _, d := range devices {
		set[d] = struct{}{}
	}
	return set
}
