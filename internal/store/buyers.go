package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/buyerleads/internal/buyer"
)

const buyerColumns = `id, owner_id, full_name, email, phone, city, property_type, bhk, purpose,
	budget_min, budget_max, timeline, source, status, notes, tags, created_at, updated_at`

// scanBuyer reads one row selected with buyerColumns.
func scanBuyer(row pgx.Row) (buyer.Buyer, error) {
	var (
		b                  buyer.Buyer
		email, bhk, notes  *string
		city, propertyType string
		purpose, timeline  string
		source, status     string
	)
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.FullName, &email, &b.Phone, &city, &propertyType, &bhk, &purpose,
		&b.BudgetMin, &b.BudgetMax, &timeline, &source, &status, &notes, &b.Tags, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return buyer.Buyer{}, err
	}

	b.Email = deref(email)
	b.Notes = deref(notes)
	b.BHK = buyer.BHK(deref(bhk))
	b.City = buyer.City(city)
	b.PropertyType = buyer.PropertyType(propertyType)
	b.Purpose = buyer.Purpose(purpose)
	b.Timeline = buyer.Timeline(timeline)
	b.Source = buyer.Source(source)
	b.Status = buyer.Status(status)
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return b, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// GetBuyer loads one buyer. A missing row yields *buyer.NotFoundError.
func (s *Store) GetBuyer(ctx context.Context, id uuid.UUID) (buyer.Buyer, error) {
	b, err := scanBuyer(s.pool.QueryRow(ctx,
		`SELECT `+buyerColumns+` FROM buyers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return buyer.Buyer{}, &buyer.NotFoundError{ID: id.String()}
	}
	if err != nil {
		return buyer.Buyer{}, fmt.Errorf("get buyer %s: %w", id, err)
	}
	return b, nil
}

// filterClause translates a buyer.Filter into a WHERE clause.
func filterClause(f buyer.Filter) *WhereBuilder {
	wb := NewWhereBuilder()
	if f.Search != "" {
		wb.AddOr([]string{"full_name", "email", "phone"}, "ILIKE", "%"+escapeLike(f.Search)+"%")
	}
	wb.Add("city", string(f.City))
	wb.Add("property_type", string(f.PropertyType))
	wb.Add("status", string(f.Status))
	wb.Add("timeline", string(f.Timeline))
	if f.OwnerID != uuid.Nil {
		wb.Add("owner_id", f.OwnerID)
	}
	return wb
}

// ListBuyers returns one page of buyers matching f, newest update first.
// The count and the page are fetched concurrently.
func (s *Store) ListBuyers(ctx context.Context, f buyer.Filter, page int) (buyer.Page, error) {
	if page < 1 {
		page = 1
	}
	wb := filterClause(f)
	where, args := wb.Build()

	var (
		total  int
		buyers []buyer.Buyer
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.pool.QueryRow(gctx, `SELECT count(*) FROM buyers`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("count buyers: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		limitIdx := wb.NextArgIndex()
		query := fmt.Sprintf(`SELECT %s FROM buyers%s ORDER BY updated_at DESC, id LIMIT $%d OFFSET $%d`,
			buyerColumns, where, limitIdx, limitIdx+1)
		pageArgs := append(append([]any{}, args...), buyer.PageSize, buyer.Offset(page))

		rows, err := s.pool.Query(gctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("list buyers: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			b, err := scanBuyer(rows)
			if err != nil {
				return fmt.Errorf("scan buyer: %w", err)
			}
			buyers = append(buyers, b)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return buyer.Page{}, err
	}
	return buyer.NewPage(buyers, total, page), nil
}

// StreamBuyers calls fn for every buyer matching f, newest update first,
// without buffering the result set.
func (s *Store) StreamBuyers(ctx context.Context, f buyer.Filter, fn func(buyer.Buyer) error) error {
	where, args := filterClause(f).Build()
	rows, err := s.pool.Query(ctx,
		`SELECT `+buyerColumns+` FROM buyers`+where+` ORDER BY updated_at DESC, id`, args...)
	if err != nil {
		return fmt.Errorf("stream buyers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBuyer(rows)
		if err != nil {
			return fmt.Errorf("scan buyer: %w", err)
		}
		if err := fn(b); err != nil {
			return err
		}
	}
	return rows.Err()
}

func insertBuyer(ctx context.Context, db DBTX, b buyer.Buyer) error {
	_, err := db.Exec(ctx, `
		INSERT INTO buyers (`+buyerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		b.ID, b.OwnerID, b.FullName, nullable(b.Email), b.Phone, string(b.City), string(b.PropertyType),
		nullable(string(b.BHK)), string(b.Purpose), b.BudgetMin, b.BudgetMax, string(b.Timeline),
		string(b.Source), string(b.Status), nullable(b.Notes), tagsOrEmpty(b.Tags), b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// CreateBuyers inserts every buyer with a creation history entry in one
// transaction. Ids and timestamps are assigned here and the stored values
// are returned. Either all rows are written or none.
func (s *Store) CreateBuyers(ctx context.Context, ownerID uuid.UUID, buyers []buyer.Buyer, source string) ([]buyer.Buyer, []buyer.HistoryEntry, error) {
	now := s.timestamp()
	created := make([]buyer.Buyer, len(buyers))
	entries := make([]buyer.HistoryEntry, len(buyers))

	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		for i, b := range buyers {
			b.ID = uuid.New()
			b.OwnerID = ownerID
			b.CreatedAt, b.UpdatedAt = now, now
			b.Tags = tagsOrEmpty(b.Tags)
			if err := insertBuyer(ctx, tx, b); err != nil {
				return fmt.Errorf("insert buyer %d: %w", i+1, err)
			}

			entry := buyer.HistoryEntry{
				ID:        uuid.New(),
				BuyerID:   b.ID,
				ChangedBy: ownerID,
				ChangedAt: now,
				Diff:      buyer.CreatedDiff(source),
			}
			if err := insertHistory(ctx, tx, entry); err != nil {
				return fmt.Errorf("insert history for buyer %d: %w", i+1, err)
			}
			created[i], entries[i] = b, entry
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return created, entries, nil
}

// lockBuyer selects a buyer row FOR UPDATE inside tx.
func lockBuyer(ctx context.Context, tx pgx.Tx, id uuid.UUID) (buyer.Buyer, error) {
	b, err := scanBuyer(tx.QueryRow(ctx,
		`SELECT `+buyerColumns+` FROM buyers WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return buyer.Buyer{}, &buyer.NotFoundError{ID: id.String()}
	}
	if err != nil {
		return buyer.Buyer{}, fmt.Errorf("lock buyer %s: %w", id, err)
	}
	return b, nil
}

// UpdateParams describes one update of a buyer's canonical fields.
type UpdateParams struct {
	ID      uuid.UUID
	ActorID uuid.UUID
	// ClientUpdatedAt is the updatedAt the client last read.
	ClientUpdatedAt time.Time
	Next            buyer.Buyer
}

// UpdateBuyer applies p under a row lock. In order it fails with
// *buyer.NotFoundError, *buyer.OwnershipError or
// *buyer.ConcurrencyConflictError when the stored row is newer than the
// client's copy. When no field changed the stored buyer is returned as is
// and the history entry is nil.
func (s *Store) UpdateBuyer(ctx context.Context, p UpdateParams) (buyer.Buyer, *buyer.HistoryEntry, error) {
	var (
		result buyer.Buyer
		entry  *buyer.HistoryEntry
	)

	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		old, err := lockBuyer(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if old.OwnerID != p.ActorID {
			return &buyer.OwnershipError{BuyerID: p.ID.String(), UserID: p.ActorID.String()}
		}
		if old.UpdatedAt.After(p.ClientUpdatedAt) {
			return &buyer.ConcurrencyConflictError{
				BuyerID: p.ID.String(),
				Client:  p.ClientUpdatedAt,
				Stored:  old.UpdatedAt,
			}
		}

		next := p.Next
		next.ID, next.OwnerID, next.CreatedAt = old.ID, old.OwnerID, old.CreatedAt
		next.Tags = tagsOrEmpty(next.Tags)

		diff, changed := buyer.UpdateDiff(old, next)
		if !changed {
			result = old
			return nil
		}

		next.UpdatedAt = s.timestamp()
		if !next.UpdatedAt.After(old.UpdatedAt) {
			next.UpdatedAt = old.UpdatedAt.Add(time.Microsecond)
		}

		_, err = tx.Exec(ctx, `
			UPDATE buyers SET
				full_name = $2, email = $3, phone = $4, city = $5, property_type = $6, bhk = $7,
				purpose = $8, budget_min = $9, budget_max = $10, timeline = $11, source = $12,
				status = $13, notes = $14, tags = $15, updated_at = $16
			WHERE id = $1`,
			next.ID, next.FullName, nullable(next.Email), next.Phone, string(next.City),
			string(next.PropertyType), nullable(string(next.BHK)), string(next.Purpose),
			next.BudgetMin, next.BudgetMax, string(next.Timeline), string(next.Source),
			string(next.Status), nullable(next.Notes), next.Tags, next.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update buyer %s: %w", p.ID, err)
		}

		e := buyer.HistoryEntry{
			ID:        uuid.New(),
			BuyerID:   next.ID,
			ChangedBy: p.ActorID,
			ChangedAt: next.UpdatedAt,
			Diff:      diff,
		}
		if err := insertHistory(ctx, tx, e); err != nil {
			return fmt.Errorf("insert history for buyer %s: %w", p.ID, err)
		}

		result, entry = next, &e
		return nil
	})
	if err != nil {
		return buyer.Buyer{}, nil, err
	}
	return result, entry, nil
}

// DeleteBuyer removes a buyer owned by actorID. History rows cascade.
func (s *Store) DeleteBuyer(ctx context.Context, id, actorID uuid.UUID) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		old, err := lockBuyer(ctx, tx, id)
		if err != nil {
			return err
		}
		if old.OwnerID != actorID {
			return &buyer.OwnershipError{BuyerID: id.String(), UserID: actorID.String()}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM buyers WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete buyer %s: %w", id, err)
		}
		return nil
	})
}
