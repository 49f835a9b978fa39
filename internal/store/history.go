package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/buyerleads/internal/buyer"
)

func insertHistory(ctx context.Context, db DBTX, e buyer.HistoryEntry) error {
	diff, err := json.Marshal(e.Diff)
	if err != nil {
		return fmt.Errorf("encode diff: %w", err)
	}
	_, err = db.Exec(ctx, `
		INSERT INTO buyer_history (id, buyer_id, changed_by, changed_at, diff)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.BuyerID, e.ChangedBy, e.ChangedAt, diff,
	)
	return err
}

// RecentHistory returns up to limit entries for buyerID, newest first, with
// the acting user's name and email.
func (s *Store) RecentHistory(ctx context.Context, buyerID uuid.UUID, limit int) ([]buyer.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT h.id, h.buyer_id, h.changed_by, h.changed_at, h.diff,
		       COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM buyer_history h
		LEFT JOIN users u ON u.id = h.changed_by
		WHERE h.buyer_id = $1
		ORDER BY h.changed_at DESC, h.id
		LIMIT $2`, buyerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []buyer.HistoryEntry{}
	for rows.Next() {
		var (
			e   buyer.HistoryEntry
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.BuyerID, &e.ChangedBy, &e.ChangedAt, &raw,
			&e.ChangedByName, &e.ChangedByEmail); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if err := json.Unmarshal(raw, &e.Diff); err != nil {
			return nil, fmt.Errorf("decode diff %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
