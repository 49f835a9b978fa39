package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/buyerleads/internal/buyer"
	"github.com/JonMunkholm/buyerleads/internal/logging"
	"github.com/JonMunkholm/buyerleads/internal/store"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Create validates body and stores a new buyer owned by actor.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, body []byte) (created buyer.Buyer, err error) {
	ctx, span := s.start(ctx, opCreate, actorAttr(actor))
	defer func(started time.Time) { s.finish(span, opCreate, started, err) }(time.Now())

	if err = s.checkRate(ctx, actor); err != nil {
		return buyer.Buyer{}, err
	}

	in, err := buyer.ParseInput(body)
	if err != nil {
		return buyer.Buyer{}, err
	}
	b, err := buyer.Validate(in)
	if err != nil {
		return buyer.Buyer{}, err
	}

	rows, entries, err := s.store.CreateBuyers(ctx, actor, []buyer.Buyer{b}, "")
	if err != nil {
		return buyer.Buyer{}, err
	}
	s.publish(ctx, entries...)

	created = rows[0]
	span.SetAttributes(buyerAttr(created.ID))
	logging.WithFields(ctx, "buyer_id", created.ID, "user_id", actor).Info("buyer created")
	return created, nil
}

// takeUpdatedAt removes the concurrency token from in and parses it.
func takeUpdatedAt(in buyer.Input) (time.Time, error) {
	raw, ok := in["updatedAt"]
	delete(in, "updatedAt")
	if !ok || raw == nil {
		return time.Time{}, &buyer.StructuralInputError{Reason: "updatedAt is required"}
	}
	str, ok := raw.(string)
	if !ok {
		return time.Time{}, &buyer.StructuralInputError{Reason: "updatedAt must be an RFC 3339 timestamp"}
	}
	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return time.Time{}, &buyer.StructuralInputError{Reason: "updatedAt must be an RFC 3339 timestamp", Err: err}
	}
	return t, nil
}

// Update replaces the canonical fields of buyer id. body carries the full
// record plus the updatedAt the client last read. When nothing changed the
// stored buyer is returned untouched.
func (s *Service) Update(ctx context.Context, actor, id uuid.UUID, body []byte) (updated buyer.Buyer, err error) {
	ctx, span := s.start(ctx, opUpdate, actorAttr(actor), buyerAttr(id))
	defer func(started time.Time) { s.finish(span, opUpdate, started, err) }(time.Now())

	if err = s.checkRate(ctx, actor); err != nil {
		return buyer.Buyer{}, err
	}

	in, err := buyer.ParseInput(body)
	if err != nil {
		return buyer.Buyer{}, err
	}
	clientUpdatedAt, err := takeUpdatedAt(in)
	if err != nil {
		return buyer.Buyer{}, err
	}
	next, err := buyer.Validate(in)
	if err != nil {
		return buyer.Buyer{}, err
	}

	updated, entry, err := s.store.UpdateBuyer(ctx, store.UpdateParams{
		ID:              id,
		ActorID:         actor,
		ClientUpdatedAt: clientUpdatedAt,
		Next:            next,
	})
	if err != nil {
		return buyer.Buyer{}, err
	}

	log := logging.WithFields(ctx, "buyer_id", id, "user_id", actor)
	if entry == nil {
		log.Debug("buyer update was a no-op")
		return updated, nil
	}
	s.publish(ctx, *entry)
	log.Info("buyer updated", "changed_fields", len(entry.Diff.Changes))
	return updated, nil
}

// Delete removes buyer id when actor owns it.
func (s *Service) Delete(ctx context.Context, actor, id uuid.UUID) (err error) {
	ctx, span := s.start(ctx, opDelete, actorAttr(actor), buyerAttr(id))
	defer func(started time.Time) { s.finish(span, opDelete, started, err) }(time.Now())

	if err = s.checkRate(ctx, actor); err != nil {
		return err
	}
	if err = s.store.DeleteBuyer(ctx, id, actor); err != nil {
		return err
	}
	logging.WithFields(ctx, "buyer_id", id, "user_id", actor).Info("buyer deleted")
	return nil
}
