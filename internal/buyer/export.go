package buyer

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ExportHeaders is the column order of exported files. It doubles as the
// import template header.
var ExportHeaders = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk", "purpose",
	"budgetMin", "budgetMax", "timeline", "source", "notes", "tags", "status",
}

// ExportRecord renders b in ExportHeaders order. Timeline, source and status
// are written as display labels; tags are joined with TagSeparator.
func ExportRecord(b Buyer) []string {
	return []string{
		b.FullName,
		b.Email,
		b.Phone,
		string(b.City),
		string(b.PropertyType),
		string(b.BHK),
		string(b.Purpose),
		formatBudget(b.BudgetMin),
		formatBudget(b.BudgetMax),
		b.Timeline.Label(),
		b.Source.Label(),
		b.Notes,
		strings.Join(b.Tags, TagSeparator),
		b.Status.Label(),
	}
}

func formatBudget(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

// QuoteCell wraps s in double quotes when it contains a comma. Embedded
// quotes are left as they are.
func QuoteCell(s string) string {
	if strings.Contains(s, ",") {
		return `"` + s + `"`
	}
	return s
}

// CSVWriter writes export rows using QuoteCell. It is not an RFC 4180
// writer: files are meant to be read back by ParseCSV.
type CSVWriter struct {
	w   *bufio.Writer
	err error
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: bufio.NewWriter(w)}
}

// Write writes one record followed by a newline.
func (cw *CSVWriter) Write(record []string) error {
	if cw.err != nil {
		return cw.err
	}
	for i, cell := range record {
		if i > 0 {
			if cw.err = cw.w.WriteByte(','); cw.err != nil {
				return cw.err
			}
		}
		if _, cw.err = cw.w.WriteString(QuoteCell(cell)); cw.err != nil {
			return cw.err
		}
	}
	cw.err = cw.w.WriteByte('\n')
	return cw.err
}

// WriteHeader writes ExportHeaders.
func (cw *CSVWriter) WriteHeader() error {
	return cw.Write(ExportHeaders)
}

// WriteBuyer writes one buyer row.
func (cw *CSVWriter) WriteBuyer(b Buyer) error {
	return cw.Write(ExportRecord(b))
}

// Flush writes any buffered data to the underlying writer.
func (cw *CSVWriter) Flush() error {
	if cw.err != nil {
		return cw.err
	}
	cw.err = cw.w.Flush()
	return cw.err
}
