package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonMunkholm/buyerleads/internal/buyer"
	"github.com/JonMunkholm/buyerleads/internal/logging"
	"github.com/JonMunkholm/buyerleads/internal/metrics"
	"github.com/JonMunkholm/buyerleads/internal/ratelimit"
	"github.com/JonMunkholm/buyerleads/internal/store"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . BuyerStore,RateLimiter,HistoryPublisher

const tracerName = "github.com/JonMunkholm/buyerleads/internal/core"

// HistoryLimit is how many history entries Get returns.
const HistoryLimit = 5

// DefaultImportTimeout bounds parsing and writing one import.
const DefaultImportTimeout = 2 * time.Minute

// BuyerStore persists buyers and their history.
type BuyerStore interface {
	GetBuyer(ctx context.Context, id uuid.UUID) (buyer.Buyer, error)
	ListBuyers(ctx context.Context, f buyer.Filter, page int) (buyer.Page, error)
	StreamBuyers(ctx context.Context, f buyer.Filter, fn func(buyer.Buyer) error) error
	RecentHistory(ctx context.Context, buyerID uuid.UUID, limit int) ([]buyer.HistoryEntry, error)
	CreateBuyers(ctx context.Context, ownerID uuid.UUID, buyers []buyer.Buyer, source string) ([]buyer.Buyer, []buyer.HistoryEntry, error)
	UpdateBuyer(ctx context.Context, p store.UpdateParams) (buyer.Buyer, *buyer.HistoryEntry, error)
	DeleteBuyer(ctx context.Context, id, actorID uuid.UUID) error
}

// RateLimiter admits or rejects one operation for a key.
type RateLimiter interface {
	TryAcquire(ctx context.Context, key string) (ratelimit.Result, error)
}

// HistoryPublisher receives history entries after they are committed.
type HistoryPublisher interface {
	PublishHistory(ctx context.Context, entries []buyer.HistoryEntry) error
}

// Service implements the buyer operations on top of its collaborators.
type Service struct {
	store     BuyerStore
	limiter   RateLimiter
	publisher HistoryPublisher
	imports   *ImportLimiter
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	importTimeout time.Duration
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithPublisher(p HistoryPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithImportLimiter(l *ImportLimiter) Option {
	return func(s *Service) { s.imports = l }
}

func WithImportTimeout(d time.Duration) Option {
	return func(s *Service) { s.importTimeout = d }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a Service. A nil limiter disables rate limiting.
func NewService(st BuyerStore, limiter RateLimiter, opts ...Option) *Service {
	s := &Service{
		store:         st,
		limiter:       limiter,
		imports:       NewImportLimiter(DefaultMaxConcurrentImports, DefaultImportWait),
		tracer:        otel.Tracer(tracerName),
		importTimeout: DefaultImportTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportStatus reports import slot usage.
func (s *Service) ImportStatus() ImportSlots {
	return s.imports.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.imports.WaitForDrain(ctx)
}

// start opens a span for operation.
func (s *Service) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, requestAttrs(ctx)...)
	return s.tracer.Start(ctx, "buyers."+operation, trace.WithAttributes(attrs...))
}

// finish ends span and records the operation outcome.
func (s *Service) finish(span trace.Span, operation string, started time.Time, err error) {
	outcome := outcomeFor(err)
	span.SetAttributes(attribute.String("outcome", outcome))
	if outcome == metrics.OutcomeError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	s.metrics.ObserveOperation(operation, outcome, time.Since(started))
}

func outcomeFor(err error) string {
	var (
		structural *buyer.StructuralInputError
		validation *buyer.FieldValidationError
		batchSize  *buyer.BatchSizeError
		batchRows  *buyer.BatchValidationError
		notFound   *buyer.NotFoundError
		ownership  *buyer.OwnershipError
		conflict   *buyer.ConcurrencyConflictError
		rateLimit  *buyer.RateLimitError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &rateLimit):
		return metrics.OutcomeRateLimited
	case errors.As(err, &conflict):
		return metrics.OutcomeConflict
	case errors.As(err, &ownership):
		return metrics.OutcomeForbidden
	case errors.As(err, &notFound):
		return metrics.OutcomeNotFound
	case errors.As(err, &structural), errors.As(err, &validation),
		errors.As(err, &batchSize), errors.As(err, &batchRows):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

// checkRate consumes one slot of actor's window. A failing limiter store is
// logged and the operation allowed.
func (s *Service) checkRate(ctx context.Context, actor uuid.UUID) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.TryAcquire(ctx, ratelimit.UserKey(actor.String()))
	if err != nil {
		logging.FromContext(ctx).Warn("rate limiter unavailable, allowing request",
			"user_id", actor, "error", err)
		return nil
	}
	if !res.Allowed {
		return &buyer.RateLimitError{UserID: actor.String(), RetryAfter: res.RetryAfter}
	}
	return nil
}

// publish forwards committed entries. Failures are logged only: the entries
// are already durable in the database.
func (s *Service) publish(ctx context.Context, entries ...buyer.HistoryEntry) {
	if s.publisher == nil || len(entries) == 0 {
		return
	}
	if err := s.publisher.PublishHistory(ctx, entries); err != nil {
		logging.FromContext(ctx).Error("publish history", "count", len(entries), "error", err)
	}
}

func actorAttr(actor uuid.UUID) attribute.KeyValue {
	return attribute.String("user.id", actor.String())
}

func buyerAttr(id uuid.UUID) attribute.KeyValue {
	return attribute.String("buyer.id", id.String())
}
