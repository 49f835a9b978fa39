package buyer

import (
	"strings"
)

// MaxImportRows caps the number of data rows accepted in one import.
const MaxImportRows = 200

// TagSeparator splits the tags cell in CSV files.
const TagSeparator = ";"

// ParseCSV splits text into a trimmed header row and data rows.
//
// The format is deliberately simple: lines are split on newlines, blank
// lines are dropped and cells are split on every comma. Quoted cells are not
// interpreted, so a value containing a comma shifts the remaining columns.
func ParseCSV(text string) (headers []string, rows [][]string, err error) {
	text = strings.TrimPrefix(text, "\ufeff")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, nil, &StructuralInputError{Reason: "empty file"}
	}

	headers = splitLine(lines[0])
	rows = make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, splitLine(line))
	}
	return headers, rows, nil
}

func splitLine(line string) []string {
	cells := strings.Split(line, ",")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// labelled fields are exported as display labels and translated back on import.
var labelled = map[string]Field{
	"timeline": FieldTimeline,
	"source":   FieldSource,
	"status":   FieldStatus,
}

var knownColumns = map[string]bool{
	"fullName": true, "email": true, "phone": true, "city": true,
	"propertyType": true, "bhk": true, "purpose": true,
	"budgetMin": true, "budgetMax": true, "timeline": true,
	"source": true, "notes": true, "tags": true, "status": true,
}

// MapRow turns one CSV data row into validator input by header position.
// Unknown headers are ignored; empty cells and cells beyond the end of a
// short row are left absent.
func MapRow(headers, row []string) Input {
	in := make(Input, len(headers))
	for i, header := range headers {
		if !knownColumns[header] {
			continue
		}
		var cell string
		if i < len(row) {
			cell = row[i]
		}

		if header == "tags" {
			in["tags"] = splitTags(cell)
			continue
		}
		if cell == "" {
			continue
		}
		if field, ok := labelled[header]; ok {
			if code, found := CodeForLabel(field, cell); found {
				cell = code
			}
		}
		in[header] = cell
	}
	return in
}

func splitTags(cell string) []any {
	if cell == "" {
		return []any{}
	}
	parts := strings.Split(cell, TagSeparator)
	tags := make([]any, len(parts))
	for i, p := range parts {
		tags[i] = strings.TrimSpace(p)
	}
	return tags
}

// MapBatch maps and validates every data row. The batch is all-or-nothing:
// it fails with *BatchSizeError before looking at any row when there are too
// many, and with *BatchValidationError listing every failing row otherwise.
func MapBatch(headers []string, rows [][]string) ([]Buyer, error) {
	if len(rows) > MaxImportRows {
		return nil, &BatchSizeError{Rows: len(rows), Max: MaxImportRows}
	}

	valid := make([]Buyer, 0, len(rows))
	var rowErrs []RowError
	for i, row := range rows {
		b, err := Validate(MapRow(headers, row))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 2, Errors: fieldErrors(err)})
			continue
		}
		valid = append(valid, b)
	}

	if len(rowErrs) > 0 {
		return nil, &BatchValidationError{
			Rows:       rowErrs,
			ValidCount: len(valid),
			TotalCount: len(rows),
		}
	}
	return valid, nil
}

func fieldErrors(err error) []FieldError {
	switch e := err.(type) {
	case *FieldValidationError:
		return e.Errors
	default:
		return []FieldError{{Field: "", Message: err.Error()}}
	}
}
