package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"estate-api/internal/core/cache"
	"estate-api/internal/domain"
	"estate-api/internal/draft"
)

const listingKeyPrefix = "listing:"

type ListingService struct {
	store  domain.ListingStore
	cache  cache.Store
	ttl    time.Duration
	log    *zap.Logger
	tracer trace.Tracer
}

type ListingOption func(*ListingService)

// WithCache serves ReadOne through c. A nil c leaves caching off.
func WithCache(c cache.Store, ttl time.Duration) ListingOption {
	return func(s *ListingService) { s.cache, s.ttl = c, ttl }
}

func WithLogger(l *zap.Logger) ListingOption {
	return func(s *ListingService) { s.log = l }
}

func NewListingService(store domain.ListingStore, opts ...ListingOption) *ListingService {
	s := &ListingService{
		store:  store,
		ttl:    time.Minute,
		log:    zap.NewNop(),
		tracer: otel.Tracer("estate-api/service"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ListingService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "listing."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, op string, err error) {
	observe("listing."+op, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
	}
	span.End()
}

// Create validates d and stores it as a listing owned by ownerID.
func (s *ListingService) Create(ctx context.Context, d draft.Draft, ownerID string) (l *domain.Listing, err error) {
	ctx, span := s.start(ctx, "create", attribute.String("owner", ownerID))
	defer func() { finish(span, "create", err) }()

	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	l = d.Listing(ownerID)
	if err = l.Validate(); err != nil {
		return nil, err
	}
	if err = s.store.Insert(ctx, l); err != nil {
		return nil, err
	}
	s.log.Info("listing created", zap.String("id", l.ID), zap.String("owner", ownerID))
	return l, nil
}

func (s *ListingService) ReadOne(ctx context.Context, id string) (l *domain.Listing, err error) {
	ctx, span := s.start(ctx, "read_one", attribute.String("id", id))
	defer func() { finish(span, "read_one", err) }()

	if s.cache == nil {
		return s.store.FindByID(ctx, id)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, listingKeyPrefix+id, s.ttl, func(ctx context.Context) (*domain.Listing, error) {
		return s.store.FindByID(ctx, id)
	})
}

// ReadMany returns a single-use lazy sequence of at most f.Limit listings.
// The store is queried when the sequence is first ranged.
func (s *ListingService) ReadMany(ctx context.Context, f domain.Filter) domain.ListingSeq {
	f = f.Normalize()
	return domain.Once(func(yield func(*domain.Listing, error) bool) {
		ctx, span := s.start(ctx, "read_many",
			attribute.String("search", f.SearchTerm),
			attribute.Int("limit", f.Limit),
			attribute.Int("offset", f.Offset),
		)
		var err error
		n := 0
		for l, e := range s.store.Find(ctx, f) {
			if e != nil {
				err = e
				yield(nil, e)
				break
			}
			if n >= f.Limit {
				break
			}
			n++
			if !yield(l, nil) {
				break
			}
		}
		span.SetAttributes(attribute.Int("count", n))
		finish(span, "read_many", err)
	})
}

// Update merges patch into the stored listing and re-validates the result.
// acc decides whether the requester may touch it.
func (s *ListingService) Update(ctx context.Context, id string, patch draft.Patch, acc domain.Access) (l *domain.Listing, err error) {
	ctx, span := s.start(ctx, "update", attribute.String("id", id), attribute.Bool("bypass", acc.BypassOwnership))
	defer func() { finish(span, "update", err) }()

	cur, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !acc.Permits(cur.UserRef) {
		return nil, domain.ErrForbidden
	}
	l = draft.Reduce(draft.FromListing(cur), patch).Listing(cur.UserRef)
	l.ID, l.CreatedAt, l.UpdatedAt = cur.ID, cur.CreatedAt, cur.UpdatedAt
	if err = l.Validate(); err != nil {
		return nil, err
	}
	if err = s.store.Replace(ctx, l); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return l, nil
}

func (s *ListingService) Delete(ctx context.Context, id string, acc domain.Access) (err error) {
	ctx, span := s.start(ctx, "delete", attribute.String("id", id), attribute.Bool("bypass", acc.BypassOwnership))
	defer func() { finish(span, "delete", err) }()

	cur, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !acc.Permits(cur.UserRef) {
		return domain.ErrForbidden
	}
	if err = s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.log.Info("listing deleted", zap.String("id", id), zap.Bool("bypass", acc.BypassOwnership))
	return nil
}

func (s *ListingService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), listingKeyPrefix+id); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("cache invalidate", zap.String("id", id), zap.Error(err))
	}
}
