package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
)

type policyService interface {
	Current(ctx context.Context) (application.Policy, error)
	Replace(ctx context.Context, params application.ReplacePolicyParams) (application.Policy, error)
}

type PolicyHandler struct {
	service   policyService
	responder responder
	logger    *slog.Logger
}

func NewPolicyHandler(service policyService, logger *slog.Logger) *PolicyHandler {
	base := defaultLogger(logger)
	return &PolicyHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PolicyHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PolicyHandler", operation, attrs...)
}

func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	policy, err := h.service.Current(r.Context())
	if err != nil {
		h.log(r.Context(), "Get").ErrorContext(r.Context(), "policy fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, policyResponse{Policy: toPolicyDTO(policy)})
}

func (h *PolicyHandler) Replace(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req policyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Replace", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode policy request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Replace", "principal_id", principal.UserID)

	policy, err := h.service.Replace(r.Context(), application.ReplacePolicyParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "policy replace failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "policy replaced")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, policyResponse{Policy: toPolicyDTO(policy)})
}

type policyRequest struct {
	OfficeDays               []int  `json:"office_days"`
	OfficeHoursStart         string `json:"office_hours_start"`
	OfficeHoursEnd           string `json:"office_hours_end"`
	BusinessHoursStart       string `json:"business_hours_start"`
	BusinessHoursEnd         string `json:"business_hours_end"`
	MaxReservationDaysAhead  int    `json:"max_reservation_days_ahead"`
	AllowSameDayReservations bool   `json:"allow_same_day_reservations"`
	RequireApproval          bool   `json:"require_approval"`
}

func (r policyRequest) toInput() application.PolicyInput {
	var days [7]bool
	for _, day := range r.OfficeDays {
		if day >= 0 && day < 7 {
			days[day] = true
		}
	}
	return application.PolicyInput{
		OfficeDays:               days,
		OfficeHours:              parseHourRange(r.OfficeHoursStart, r.OfficeHoursEnd),
		BusinessHours:            parseHourRange(r.BusinessHoursStart, r.BusinessHoursEnd),
		MaxReservationDaysAhead:  r.MaxReservationDaysAhead,
		AllowSameDayReservations: r.AllowSameDayReservations,
		RequireApproval:          r.RequireApproval,
	}
}

// parseHourRange folds malformed clocks into an invalid range so the
// service-side validation reports them on the right field.
func parseHourRange(start, end string) booking.HourRange {
	startMin, err := booking.ParseClock(start)
	if err != nil {
		return booking.HourRange{Start: -1, End: -1}
	}
	endMin, err := booking.ParseClock(end)
	if err != nil {
		return booking.HourRange{Start: -1, End: -1}
	}
	return booking.HourRange{Start: startMin, End: endMin}
}

type policyResponse struct {
	Policy policyDTO `json:"policy"`
}

type policyDTO struct {
	OfficeDays               []int  `json:"office_days"`
	OfficeHoursStart         string `json:"office_hours_start"`
	OfficeHoursEnd           string `json:"office_hours_end"`
	BusinessHoursStart       string `json:"business_hours_start"`
	BusinessHoursEnd         string `json:"business_hours_end"`
	MaxReservationDaysAhead  int    `json:"max_reservation_days_ahead"`
	AllowSameDayReservations bool   `json:"allow_same_day_reservations"`
	RequireApproval          bool   `json:"require_approval"`
	UpdatedAt                string `json:"updated_at,omitempty"`
}

func toPolicyDTO(policy application.Policy) policyDTO {
	days := make([]int, 0, 7)
	for day, open := range policy.OfficeDays {
		if open {
			days = append(days, day)
		}
	}
	dto := policyDTO{
		OfficeDays:               days,
		OfficeHoursStart:         booking.FormatClock(policy.OfficeHours.Start),
		OfficeHoursEnd:           booking.FormatClock(policy.OfficeHours.End),
		BusinessHoursStart:       booking.FormatClock(policy.BusinessHours.Start),
		BusinessHoursEnd:         booking.FormatClock(policy.BusinessHours.End),
		MaxReservationDaysAhead:  policy.MaxReservationDaysAhead,
		AllowSameDayReservations: policy.AllowSameDayReservations,
		RequireApproval:          policy.RequireApproval,
	}
	if !policy.UpdatedAt.IsZero() {
		dto.UpdatedAt = policy.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}
