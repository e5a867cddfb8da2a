package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"valueconverting/internal/valueconverting/metrics"
	"valueconverting/internal/valueconverting/models"
	dErrors "valueconverting/pkg/domain-errors"
	"valueconverting/pkg/platform/httputil"
	request "valueconverting/pkg/platform/middleware/request"
	"valueconverting/pkg/requestcontext"
)

// BasePath is the internal API prefix of the resource.
const BasePath = "/api/intern/value-convertings"

// Service defines the record operations the handler needs.
type Service interface {
	FindAll(ctx context.Context, page models.PageRequest, excludeConvertingMap bool) (models.Page[models.ValueConvertingDto], error)
	FindAllByOwners(ctx context.Context, page models.PageRequest, excludeConvertingMap bool, owners []int64) (models.Page[models.ValueConvertingDto], error)
	FindByID(ctx context.Context, id int64) (*models.ValueConvertingDto, bool, error)
	Save(ctx context.Context, dto models.ValueConvertingDto) (*models.ValueConvertingDto, error)
}

// AccessGate decides which owners a caller may see or modify.
type AccessGate interface {
	Enabled() bool
	AuthorizedApplicationIDs(p requestcontext.AuthPrincipal) []int64
	CheckAccess(p requestcontext.AuthPrincipal, fromApplicationID int64) error
}

// Handler serves the value converting REST resource.
type Handler struct {
	service Service
	gate    AccessGate
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Handler.
func New(service Service, gate AccessGate, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{service: service, gate: gate, logger: logger, metrics: m}
}

// Register mounts the resource routes on r. Authentication middleware is
// expected to run before these routes.
func (h *Handler) Register(r chi.Router) {
	r.Route(BasePath, func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleSave)
		r.Get("/{id}", h.handleGet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	pageReq, excludeMap, err := parseListQuery(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid list request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	var page models.Page[models.ValueConvertingDto]
	if h.gate.Enabled() {
		page, err = h.service.FindAllByOwners(ctx, pageReq, excludeMap, h.gate.AuthorizedApplicationIDs(principal))
	} else {
		page, err = h.service.FindAll(ctx, pageReq, excludeMap)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list value convertings",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	rawID := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("Failed to convert value '%s' to required type 'Long'", rawID)))
		return
	}

	dto, found, err := h.service.FindByID(ctx, id)
	if err != nil {
		h.metrics.IncrementLookup(metrics.SourceHTTP, metrics.OutcomeError)
		h.logger.ErrorContext(ctx, "failed to load value converting",
			"request_id", requestID,
			"id", id,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	if !found {
		h.metrics.IncrementLookup(metrics.SourceHTTP, metrics.OutcomeMiss)
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("value converting %d not found", id)))
		return
	}
	h.metrics.IncrementLookup(metrics.SourceHTTP, metrics.OutcomeHit)

	if err := h.gate.CheckAccess(principal, *dto.FromApplicationID); err != nil {
		h.logger.WarnContext(ctx, "access to value converting denied",
			"request_id", requestID,
			"id", id,
			"subject", principal.Subject,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto models.ValueConvertingDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.WarnContext(ctx, "invalid value converting body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	dto.ID = nil

	if dto.FromApplicationID != nil {
		if err := h.gate.CheckAccess(principal, *dto.FromApplicationID); err != nil {
			h.logger.WarnContext(ctx, "write to value converting denied",
				"request_id", requestID,
				"from_application_id", *dto.FromApplicationID,
				"subject", principal.Subject,
			)
			httputil.WriteError(w, err)
			return
		}
	}

	saved, err := h.service.Save(ctx, dto)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.WarnContext(ctx, "value converting rejected",
				"request_id", requestID,
				"error", dErrors.Message(err),
			)
		} else {
			h.logger.ErrorContext(ctx, "failed to save value converting",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (requestcontext.AuthPrincipal, bool) {
	principal, ok := requestcontext.Principal(r.Context())
	if !ok {
		// Only reachable when the route is mounted without RequireAuth.
		h.logger.ErrorContext(r.Context(), "principal missing from context despite auth middleware",
			"request_id", request.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return requestcontext.AuthPrincipal{}, false
	}
	return principal, true
}
