package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"valueconverting/internal/valueconverting/mapping"
	"valueconverting/internal/valueconverting/metrics"
	"valueconverting/internal/valueconverting/models"
	"valueconverting/internal/valueconverting/validation"
	dErrors "valueconverting/pkg/domain-errors"
	"valueconverting/pkg/platform/sentinel"
)

// Store persists ValueConverting records. FindByID returns
// sentinel.ErrNotFound for an unknown id; Save assigns the id.
type Store interface {
	List(ctx context.Context, q models.ListQuery) (models.Page[models.ValueConverting], error)
	FindByID(ctx context.Context, id int64) (*models.ValueConverting, error)
	Save(ctx context.Context, vc *models.ValueConverting) error
}

// Service orchestrates the store and the mapping between wire and stored
// forms. Access decisions are made by callers through the authz gate.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("valueconverting/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindAll returns one page of records regardless of owner.
func (s *Service) FindAll(ctx context.Context, page models.PageRequest, excludeConvertingMap bool) (models.Page[models.ValueConvertingDto], error) {
	return s.list(ctx, models.ListQuery{Page: page, SkipConvertingMaps: excludeConvertingMap})
}

// FindAllByOwners returns one page restricted to records whose
// fromApplicationId is in owners. Page totals describe the filtered set.
func (s *Service) FindAllByOwners(ctx context.Context, page models.PageRequest, excludeConvertingMap bool, owners []int64) (models.Page[models.ValueConvertingDto], error) {
	if owners == nil {
		owners = []int64{}
	}
	return s.list(ctx, models.ListQuery{Page: page, Owners: owners, SkipConvertingMaps: excludeConvertingMap})
}

func (s *Service) list(ctx context.Context, q models.ListQuery) (models.Page[models.ValueConvertingDto], error) {
	ctx, span := s.tracer.Start(ctx, "valueconverting.list", trace.WithAttributes(
		attribute.Int("page", q.Page.Page),
		attribute.Int("size", q.Page.Size),
		attribute.Bool("filtered", q.Filtered()),
	))
	defer span.End()

	if q.Filtered() && len(q.Owners) == 0 {
		return models.NewPage[models.ValueConvertingDto](nil, 0, q.Page), nil
	}

	page, err := s.store.List(ctx, q)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return models.Page[models.ValueConvertingDto]{}, storeFailure(err, "failed to list value convertings")
	}
	exclude := q.SkipConvertingMaps
	return models.MapPage(page, func(vc models.ValueConverting) models.ValueConvertingDto {
		return mapping.ToDto(vc, exclude)
	}), nil
}

// FindRecord returns the stored record for id. A missing record is reported
// through found, not as an error.
func (s *Service) FindRecord(ctx context.Context, id int64) (*models.ValueConverting, bool, error) {
	ctx, span := s.tracer.Start(ctx, "valueconverting.find_by_id", trace.WithAttributes(attribute.Int64("id", id)))
	defer span.End()

	vc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			span.SetAttributes(attribute.Bool("found", false))
			return nil, false, nil
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, false, storeFailure(err, "failed to load value converting")
	}
	span.SetAttributes(attribute.Bool("found", true))
	return vc, true, nil
}

// FindByID returns the wire form of record id, with its full converting map.
func (s *Service) FindByID(ctx context.Context, id int64) (*models.ValueConvertingDto, bool, error) {
	vc, found, err := s.FindRecord(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	dto := mapping.ToDto(*vc, false)
	return &dto, true, nil
}

// Save validates, normalizes and inserts dto. Any id on dto is ignored. The
// response always carries the converting map.
func (s *Service) Save(ctx context.Context, dto models.ValueConvertingDto) (*models.ValueConvertingDto, error) {
	ctx, span := s.tracer.Start(ctx, "valueconverting.save")
	defer span.End()

	if err := validation.Check(dto); err != nil {
		return nil, err
	}
	entity, err := mapping.ToEntity(dto)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, &entity); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, storeFailure(err, "failed to save value converting")
	}
	span.SetAttributes(attribute.Int64("id", entity.ID))
	s.metrics.IncrementSaves()
	s.logger.InfoContext(ctx, "value converting saved",
		"id", entity.ID,
		"from_application_id", entity.FromApplicationID,
	)

	saved := mapping.ToDto(entity, false)
	return &saved, nil
}

func storeFailure(err error, message string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "value converting store is unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}
