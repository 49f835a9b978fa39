package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/JonMunkholm/buyerleads/internal/buyer"
)

const (
	opGet    = "get"
	opList   = "list"
	opExport = "export"
)

// BuyerDetail is a buyer with its most recent history.
type BuyerDetail struct {
	Buyer   buyer.Buyer          `json:"buyer"`
	History []buyer.HistoryEntry `json:"history"`
}

// Get returns buyer id with its latest HistoryLimit history entries.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (detail BuyerDetail, err error) {
	ctx, span := s.start(ctx, opGet, buyerAttr(id))
	defer func(started time.Time) { s.finish(span, opGet, started, err) }(time.Now())

	b, err := s.store.GetBuyer(ctx, id)
	if err != nil {
		return BuyerDetail{}, err
	}
	history, err := s.store.RecentHistory(ctx, id, HistoryLimit)
	if err != nil {
		return BuyerDetail{}, err
	}
	return BuyerDetail{Buyer: b, History: history}, nil
}

// List returns one page of buyers matching f.
func (s *Service) List(ctx context.Context, f buyer.Filter, page int) (result buyer.Page, err error) {
	ctx, span := s.start(ctx, opList, attribute.Int("page", page))
	defer func(started time.Time) { s.finish(span, opList, started, err) }(time.Now())

	return s.store.ListBuyers(ctx, f, page)
}

// ExportFilename is the download name for an export taken at now.
func ExportFilename(format Format, now time.Time) string {
	return fmt.Sprintf("buyers-%s.%s", now.Format(time.DateOnly), format)
}

// Export writes every buyer matching f to w in format.
func (s *Service) Export(ctx context.Context, f buyer.Filter, format Format, w io.Writer) (err error) {
	ctx, span := s.start(ctx, opExport, attribute.String("format", string(format)))
	defer func(started time.Time) { s.finish(span, opExport, started, err) }(time.Now())

	var count int
	if format == FormatXLSX {
		count, err = s.exportXLSX(ctx, f, w)
	} else {
		count, err = s.exportCSV(ctx, f, w)
	}
	span.SetAttributes(attribute.Int("rows", count))
	return err
}

func (s *Service) exportCSV(ctx context.Context, f buyer.Filter, w io.Writer) (int, error) {
	cw := buyer.NewCSVWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return 0, err
	}
	var count int
	err := s.store.StreamBuyers(ctx, f, func(b buyer.Buyer) error {
		count++
		return cw.WriteBuyer(b)
	})
	if err != nil {
		return count, err
	}
	return count, cw.Flush()
}

func (s *Service) exportXLSX(ctx context.Context, f buyer.Filter, w io.Writer) (int, error) {
	x, err := newXLSXExporter()
	if err != nil {
		return 0, err
	}
	var count int
	err = s.store.StreamBuyers(ctx, f, func(b buyer.Buyer) error {
		count++
		return x.WriteBuyer(b)
	})
	if err != nil {
		_ = x.file.Close()
		return count, err
	}
	return count, x.Finish(w)
}
