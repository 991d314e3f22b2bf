package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/workspace-booking/internal/application"
)

type areaService interface {
	CreateArea(ctx context.Context, params application.CreateAreaParams) (application.Area, error)
	UpdateArea(ctx context.Context, params application.UpdateAreaParams) (application.Area, error)
	DeleteArea(ctx context.Context, principal application.Principal, areaID string) error
	ListAreas(ctx context.Context, principal application.Principal) ([]application.Area, error)
	GetArea(ctx context.Context, principal application.Principal, areaID string) (application.Area, error)
}

type AreaHandler struct {
	service   areaService
	responder responder
	logger    *slog.Logger
}

func NewAreaHandler(service areaService, logger *slog.Logger) *AreaHandler {
	base := defaultLogger(logger)
	return &AreaHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AreaHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AreaHandler", operation, attrs...)
}

func (h *AreaHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode area request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	area, err := h.service.CreateArea(r.Context(), application.CreateAreaParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "area creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("area_id", area.ID).InfoContext(r.Context(), "area created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, areaResponse{Area: toAreaDTO(area)})
}

func (h *AreaHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	areaID, ok := AreaIDFromContext(r.Context())
	if !ok || strings.TrimSpace(areaID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing area id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAreaID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "area_id", areaID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode area update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "area_id", areaID)

	area, err := h.service.UpdateArea(r.Context(), application.UpdateAreaParams{
		Principal: principal,
		AreaID:    areaID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "area update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "area updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, areaResponse{Area: toAreaDTO(area)})
}

func (h *AreaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	areaID, ok := AreaIDFromContext(r.Context())
	if !ok || strings.TrimSpace(areaID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing area id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAreaID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "area_id", areaID)
	if err := h.service.DeleteArea(r.Context(), principal, areaID); err != nil {
		logger.ErrorContext(r.Context(), "area delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "area deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AreaHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok || strings.TrimSpace(principal.UserID) == "" {
		h.log(r.Context(), "List", "error_kind", "unauthorized").ErrorContext(r.Context(), "missing authenticated principal")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	areas, err := h.service.ListAreas(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "area list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(areas)).InfoContext(r.Context(), "areas listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAreasResponse{Areas: toAreaDTOs(areas)})
}

func (h *AreaHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	areaID, ok := AreaIDFromContext(r.Context())
	if !ok || strings.TrimSpace(areaID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing area id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAreaID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "area_id", areaID)

	area, err := h.service.GetArea(r.Context(), principal, areaID)
	if err != nil {
		logger.ErrorContext(r.Context(), "area fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, areaResponse{Area: toAreaDTO(area)})
}

type areaRequest struct {
	Name       string `json:"name"`
	Location   string `json:"location"`
	Category   string `json:"category"`
	Capacity   int    `json:"capacity"`
	FullDay    bool   `json:"is_full_day_reservation"`
	MinMinutes int    `json:"min_reservation_minutes"`
	MaxMinutes int    `json:"max_reservation_minutes"`
}

func (r areaRequest) toInput() application.AreaInput {
	return application.AreaInput{
		Name:       strings.TrimSpace(r.Name),
		Location:   strings.TrimSpace(r.Location),
		Category:   strings.TrimSpace(r.Category),
		Capacity:   r.Capacity,
		FullDay:    r.FullDay,
		MinMinutes: r.MinMinutes,
		MaxMinutes: r.MaxMinutes,
	}
}

type areaResponse struct {
	Area areaDTO `json:"area"`
}

type listAreasResponse struct {
	Areas []areaDTO `json:"areas"`
}

type areaDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location,omitempty"`
	Category   string `json:"category"`
	Capacity   int    `json:"capacity"`
	FullDay    bool   `json:"is_full_day_reservation"`
	MinMinutes int    `json:"min_reservation_minutes"`
	MaxMinutes int    `json:"max_reservation_minutes"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toAreaDTO(area application.Area) areaDTO {
	return areaDTO{
		ID:         area.ID,
		Name:       area.Name,
		Location:   area.Location,
		Category:   string(area.Category),
		Capacity:   area.Capacity,
		FullDay:    area.FullDay,
		MinMinutes: area.MinMinutes,
		MaxMinutes: area.MaxMinutes,
		CreatedAt:  area.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  area.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toAreaDTOs(areas []application.Area) []areaDTO {
	if len(areas) == 0 {
		return nil
	}
	out := make([]areaDTO, 0, len(areas))
	for _, area := range areas {
		out = append(out, toAreaDTO(area))
	}
	return out
}
