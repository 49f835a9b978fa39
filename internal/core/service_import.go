package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/JonMunkholm/buyerleads/internal/buyer"
	"github.com/JonMunkholm/buyerleads/internal/logging"
)

const opImport = "import"

// ImportResult is the response of a successful import.
type ImportResult struct {
	Success    bool `json:"success"`
	Imported   int  `json:"imported"`
	TotalCount int  `json:"totalCount"`
}

// ImportReport is the outcome of a dry-run check of an import file.
type ImportReport struct {
	TotalCount int              `json:"totalCount"`
	ValidCount int              `json:"validCount"`
	Errors     []buyer.RowError `json:"errors"`
}

// parseImport reads, maps and validates an import file.
func parseImport(filename string, data []byte) ([]buyer.Buyer, int, error) {
	format, err := FormatForFile(filename)
	if err != nil {
		return nil, 0, err
	}
	headers, rows, err := readTable(format, data)
	if err != nil {
		return nil, 0, err
	}
	buyers, err := buyer.MapBatch(headers, rows)
	return buyers, len(rows), err
}

// CheckImport validates an import file without writing anything. Row
// failures are reported in the result; the error is reserved for files that
// cannot be read or are over the row cap.
func CheckImport(filename string, data []byte) (ImportReport, error) {
	buyers, total, err := parseImport(filename, data)
	if err == nil {
		return ImportReport{TotalCount: total, ValidCount: len(buyers), Errors: []buyer.RowError{}}, nil
	}
	var batch *buyer.BatchValidationError
	if errors.As(err, &batch) {
		return ImportReport{TotalCount: batch.TotalCount, ValidCount: batch.ValidCount, Errors: batch.Rows}, nil
	}
	return ImportReport{}, err
}

// Import creates every row of the file as a buyer owned by actor, or none
// of them. A file with any invalid row fails with *buyer.BatchValidationError.
func (s *Service) Import(ctx context.Context, actor uuid.UUID, filename string, data []byte) (result ImportResult, err error) {
	ctx, span := s.start(ctx, opImport, actorAttr(actor), attribute.String("file.name", filename))
	defer func(started time.Time) { s.finish(span, opImport, started, err) }(time.Now())

	if err = s.checkRate(ctx, actor); err != nil {
		return ImportResult{}, err
	}

	release, err := s.imports.Acquire(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	s.metrics.SetActiveImports(s.imports.Status().Active)
	defer func() {
		release()
		s.metrics.SetActiveImports(s.imports.Status().Active)
	}()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	log := logging.WithFields(ctx, "user_id", actor, "file", filename)

	buyers, total, err := parseImport(filename, data)
	span.SetAttributes(attribute.Int("rows", total))
	if err != nil {
		log.Info("import rejected", "rows", total, "error", err)
		return ImportResult{}, err
	}

	created, entries, err := s.store.CreateBuyers(ctx, actor, buyers, buyer.SourceCSVImport)
	if err != nil {
		return ImportResult{}, err
	}
	s.publish(ctx, entries...)
	s.metrics.AddImportedRows(len(created))

	log.Info("import completed", "imported", len(created))
	return ImportResult{Success: true, Imported: len(created), TotalCount: total}, nil
}
