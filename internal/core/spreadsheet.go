package core

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/buyerleads/internal/buyer"
)

// Format is a spreadsheet file format accepted by import and export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const exportSheet = "Buyers"

// ParseFormat accepts "csv", "xlsx" or "" (csv).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", &buyer.StructuralInputError{Reason: fmt.Sprintf("unsupported format %q", s)}
	}
}

// FormatForFile picks the import format from a file name.
func FormatForFile(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv", ".txt", "":
		return FormatCSV, nil
	default:
		return "", &buyer.StructuralInputError{Reason: fmt.Sprintf("unsupported file type %q", filepath.Ext(name))}
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// readTable returns the header and data rows of an import file.
func readTable(format Format, data []byte) ([]string, [][]string, error) {
	if format == FormatXLSX {
		return readXLSX(data)
	}
	return buyer.ParseCSV(sanitizeText(data))
}

// readXLSX reads the first worksheet. Blank rows are dropped and cells
// trimmed, matching the CSV parser.
func readXLSX(data []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &buyer.StructuralInputError{Reason: "failed to open xlsx", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &buyer.StructuralInputError{Reason: "workbook has no sheets"}
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, &buyer.StructuralInputError{Reason: "failed to read rows from xlsx", Err: err}
	}

	var records [][]string
	for _, row := range raw {
		blank := true
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
			if row[i] != "" {
				blank = false
			}
		}
		if !blank {
			records = append(records, row)
		}
	}
	if len(records) == 0 {
		return nil, nil, &buyer.StructuralInputError{Reason: "empty file"}
	}
	return records[0], records[1:], nil
}

// xlsxExporter streams buyers into a single-sheet workbook.
type xlsxExporter struct {
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

func newXLSXExporter() (*xlsxExporter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open stream writer: %w", err)
	}
	x := &xlsxExporter{file: f, stream: sw}
	if err := x.write(buyer.ExportHeaders); err != nil {
		_ = f.Close()
		return nil, err
	}
	return x, nil
}

func (x *xlsxExporter) write(record []string) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	values := make([]any, len(record))
	for i, v := range record {
		values[i] = v
	}
	if err := x.stream.SetRow(cell, values); err != nil {
		return fmt.Errorf("write row %d: %w", x.row, err)
	}
	return nil
}

func (x *xlsxExporter) WriteBuyer(b buyer.Buyer) error {
	return x.write(buyer.ExportRecord(b))
}

// Finish flushes the sheet and writes the workbook to w.
func (x *xlsxExporter) Finish(w io.Writer) error {
	defer func() { _ = x.file.Close() }()
	if err := x.stream.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := x.file.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
