package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/workspace-booking/internal/application"
)

type auditService interface {
	RunConflictAudit(ctx context.Context) (application.AuditReport, error)
}

type AuditHandler struct {
	service   auditService
	responder responder
	logger    *slog.Logger
}

func NewAuditHandler(service auditService, logger *slog.Logger) *AuditHandler {
	base := defaultLogger(logger)
	return &AuditHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuditHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuditHandler", operation, attrs...)
}

// Run triggers a conflict audit pass. Administrators only.
func (h *AuditHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if !principal.IsAdmin {
		h.log(r.Context(), "Run", "error_kind", "forbidden").ErrorContext(r.Context(), "non-administrator attempted conflict audit")
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	logger := h.log(r.Context(), "Run", "principal_id", principal.UserID)

	report, err := h.service.RunConflictAudit(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "conflict audit failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With(
		"examined", report.Examined,
		"removed", len(report.Removed),
	).InfoContext(r.Context(), "conflict audit completed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, auditReportResponse{Report: toAuditReportDTO(report)})
}

type auditReportResponse struct {
	Report auditReportDTO `json:"report"`
}

type auditReportDTO struct {
	StartedAt          string            `json:"started_at"`
	FinishedAt         string            `json:"finished_at"`
	Examined           int               `json:"examined"`
	DuplicatesResolved int               `json:"duplicates_resolved"`
	OverlapsResolved   int               `json:"overlaps_resolved"`
	Removed            []removedDTO      `json:"removed,omitempty"`
	Failures           []auditFailureDTO `json:"failures,omitempty"`
	Clean              bool              `json:"clean"`
}

type removedDTO struct {
	ID         string `json:"id"`
	RetainedID string `json:"retained_id"`
	AreaID     string `json:"area_id"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
}

type auditFailureDTO struct {
	ReservationID string `json:"reservation_id"`
	Detail        string `json:"detail"`
}

func toAuditReportDTO(report application.AuditReport) auditReportDTO {
	dto := auditReportDTO{
		StartedAt:          report.StartedAt.UTC().Format(time.RFC3339Nano),
		FinishedAt:         report.FinishedAt.UTC().Format(time.RFC3339Nano),
		Examined:           report.Examined,
		DuplicatesResolved: report.DuplicatesResolved,
		OverlapsResolved:   report.OverlapsResolved,
		Clean:              report.Clean,
	}
	for _, removed := range report.Removed {
		dto.Removed = append(dto.Removed, removedDTO{
			ID:         removed.ID,
			RetainedID: removed.RetainedID,
			AreaID:     removed.AreaID,
			Date:       removed.Date,
			Reason:     removed.Reason,
		})
	}
	for _, failure := range report.Failures {
		dto.Failures = append(dto.Failures, auditFailureDTO{
			ReservationID: failure.ReservationID,
			Detail:        failure.Detail,
		})
	}
	return dto
}
